package order

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/storage"
)

func makeAppWithOrderHandler(oHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	oHandler.RegisterProtectedRoutes(app)
	return app
}

const checkoutBody = `{
	"firstName": "Jane", "lastName": "Doe", "email": "jane@example.com",
	"address": "1 Main St", "city": "Springfield", "state": "IL", "postalCode": "62701", "country": "US",
	"paymentMethod": "credit", "cardName": "Jane Doe", "cardNumber": "4242 4242 4242 4242",
	"expirationDate": "09/28", "cvv": "123"
}`

func send(t *testing.T, app *fiber.App, method, path, body, userID string, out any) int {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func seedCart(carts *cart.Registry, userID int) *cart.Store {
	s := carts.For(context.Background(), userID)
	s.AddItem(cart.Product{ID: 1, Title: "Hat", Price: decimal.RequireFromString("60")}, 2)
	return s
}

func TestRoutesRegistered(t *testing.T) {
	app := fiber.New()
	NewHandler(NewLedger(storage.NewMemoryStore()), cart.NewRegistry(nil)).RegisterProtectedRoutes(app)

	want := map[string]bool{
		"GET /api/v1/checkout/quote": false,
		"POST /api/v1/orders":        false,
		"GET /api/v1/orders":         false,
		"GET /api/v1/orders/:id":     false,
	}
	for _, routes := range app.Stack() {
		for _, r := range routes {
			if _, ok := want[r.Method+" "+r.Path]; ok {
				want[r.Method+" "+r.Path] = true
			}
		}
	}
	for k, seen := range want {
		assert.True(t, seen, "route %s not registered", k)
	}
}

func TestQuoteRoute(t *testing.T) {
	carts := cart.NewRegistry(nil)
	app := makeAppWithOrderHandler(NewHandler(NewLedger(storage.NewMemoryStore()), carts))
	seedCart(carts, 1)

	var body struct {
		Items []cart.LineItem `json:"items"`
		Quote Quote           `json:"quote"`
	}
	code := send(t, app, "GET", "/api/v1/checkout/quote", "", "1", &body)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, body.Items, 1)
	assert.Equal(t, 2, body.Quote.TotalItems)
	assertMoney(t, "120", body.Quote.Subtotal)
	assertMoney(t, "0", body.Quote.Shipping)
	assertMoney(t, "6", body.Quote.Tax)
	assertMoney(t, "126", body.Quote.Total)
	assert.True(t, body.Quote.FreeShipping)

	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, "GET", "/api/v1/checkout/quote", "", "", nil))
}

func TestCreateOrder_ClearsCartAndRecords(t *testing.T) {
	carts := cart.NewRegistry(nil)
	ledger := NewLedger(storage.NewMemoryStore())
	app := makeAppWithOrderHandler(NewHandler(ledger, carts))
	s := seedCart(carts, 1)

	var o Order
	code := send(t, app, "POST", "/api/v1/orders", checkoutBody, "1", &o)
	require.Equal(t, fiber.StatusCreated, code)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Equal(t, "Jane Doe", o.ShippingAddress.Name)
	assert.Equal(t, "62701", o.ShippingAddress.PostalCode)
	assert.Equal(t, "4242", o.Payment.CardLast4)
	assertMoney(t, "126", o.Total)
	assert.True(t, s.IsEmpty())

	var history []Order
	require.Equal(t, fiber.StatusOK, send(t, app, "GET", "/api/v1/orders", "", "1", &history))
	require.Len(t, history, 1)
	assert.Equal(t, o.ID, history[0].ID)

	var got Order
	require.Equal(t, fiber.StatusOK, send(t, app, "GET", "/api/v1/orders/"+o.ID, "", "1", &got))
	assertMoney(t, "126", got.Total)

	assert.Equal(t, fiber.StatusNotFound, send(t, app, "GET", "/api/v1/orders/"+o.ID, "", "2", nil))
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	kv := storage.NewMemoryStore()
	app := makeAppWithOrderHandler(NewHandler(NewLedger(kv), cart.NewRegistry(nil)))

	assert.Equal(t, fiber.StatusConflict, send(t, app, "POST", "/api/v1/orders", checkoutBody, "1", nil))
	_, err := kv.Get(context.Background(), storage.OrdersKey(1))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateOrder_InvalidForm(t *testing.T) {
	carts := cart.NewRegistry(nil)
	app := makeAppWithOrderHandler(NewHandler(NewLedger(storage.NewMemoryStore()), carts))
	s := seedCart(carts, 1)

	body := strings.Replace(checkoutBody, `"jane@example.com"`, `"not-an-email"`, 1)
	body = strings.Replace(body, `"09/28"`, `"9/28"`, 1)
	body = strings.Replace(body, `"postalCode": "62701"`, `"postalCode": ""`, 1)

	var res struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	code := send(t, app, "POST", "/api/v1/orders", body, "1", &res)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, res.Errors, "email")
	assert.Contains(t, res.Errors, "expirationDate")
	assert.Contains(t, res.Errors, "postalCode")
	assert.NotContains(t, res.Errors, "name")
	assert.Equal(t, 2, s.Totals().TotalItems)
}

func TestCreateOrder_PersistenceFailureKeepsCart(t *testing.T) {
	carts := cart.NewRegistry(nil)
	kv := &failingStore{Store: storage.NewMemoryStore(), failPut: true}
	app := makeAppWithOrderHandler(NewHandler(NewLedger(kv), carts))
	s := seedCart(carts, 1)

	assert.Equal(t, fiber.StatusServiceUnavailable, send(t, app, "POST", "/api/v1/orders", checkoutBody, "1", nil))
	assert.Equal(t, 2, s.Totals().TotalItems)

	kv.failGet = true
	assert.Equal(t, fiber.StatusServiceUnavailable, send(t, app, "GET", "/api/v1/orders", "", "1", nil))
}

func TestOrderRoutes_Unauthorized(t *testing.T) {
	app := makeAppWithOrderHandler(NewHandler(NewLedger(storage.NewMemoryStore()), cart.NewRegistry(nil)))
	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, "POST", "/api/v1/orders", checkoutBody, "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, "GET", "/api/v1/orders", "", "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, "GET", "/api/v1/orders/x", "", "", nil))
}
