package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAppWithCatalogHandler(c *Client) *fiber.App {
	app := fiber.New()
	NewHandler(c).RegisterPublicRoutes(app)
	return app
}

func get(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	res, err := app.Test(httptest.NewRequest("GET", path, nil), 5000)
	require.NoError(t, err)
	if out != nil && res.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestCatalogRoutes(t *testing.T) {
	app := makeAppWithCatalogHandler(NewClient(Config{BaseURL: fakeRemote(t).URL}))

	var products []Product
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/products", &products))
	assert.Len(t, products, 2)

	products = nil
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/products?price_min=100", &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Lamp", products[0].Title)

	products = nil
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/products?categories=1,3", &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Hat", products[0].Title)

	assert.Equal(t, fiber.StatusBadRequest, get(t, app, "/api/v1/products?price_max=cheap", nil))
	assert.Equal(t, fiber.StatusBadRequest, get(t, app, "/api/v1/products?categories=a", nil))

	var p Product
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/products/1", &p))
	assert.Equal(t, "Hat", p.Title)
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/api/v1/products/404", nil))
	assert.Equal(t, fiber.StatusBadRequest, get(t, app, "/api/v1/products/abc", nil))

	var cats []Category
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/categories", &cats))
	assert.Len(t, cats, 2)

	var cat Category
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/categories/2", &cat))
	assert.Equal(t, "Home", cat.Name)
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/api/v1/categories/99", nil))

	products = nil
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/categories/2/products", &products))
	assert.Len(t, products, 1)

	products = nil
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/search?title=hat", &products))
	assert.Len(t, products, 1)

	products = nil
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/search", &products))
	assert.Empty(t, products)
}

func TestCatalogRoutes_RemoteDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	app := makeAppWithCatalogHandler(NewClient(Config{BaseURL: srv.URL, MaxFailures: 1, OpenTimeout: time.Minute}))
	assert.Equal(t, fiber.StatusBadGateway, get(t, app, "/api/v1/categories", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, get(t, app, "/api/v1/categories", nil))
}
