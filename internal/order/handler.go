package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/session"
)

var errEmptyCart = fmt.Errorf("%w: cart is empty", ErrInvalidState)

// Handler runs checkout against the session cart and serves order history.
type Handler struct {
	ledger *Ledger
	carts  *cart.Registry
}

func NewHandler(ledger *Ledger, carts *cart.Registry) *Handler {
	return &Handler{ledger: ledger, carts: carts}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout/quote", h.quote)
	app.Post("/api/v1/orders", h.createOrder)
	app.Get("/api/v1/orders", h.getOrders)
	app.Get("/api/v1/orders/:id", h.getOrder)
}

// CheckoutForm is the combined shipping and payment form.
type CheckoutForm struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	PaymentInput
}

func (f CheckoutForm) ShippingAddress() ShippingAddress {
	return ShippingAddress{
		Name:       strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName)),
		Address:    f.Address,
		City:       f.City,
		State:      f.State,
		PostalCode: f.PostalCode,
		Country:    f.Country,
	}
}

// Validate reports every invalid field of the form at once.
func (f CheckoutForm) Validate() *ValidationError {
	v := &ValidationError{}
	required(v, "firstName", f.FirstName)
	required(v, "lastName", f.LastName)
	required(v, "email", f.Email)
	if f.Email != "" && !validEmail(f.Email) {
		v.add("email", "Please enter a valid email address")
	}
	required(v, "address", f.Address)
	required(v, "city", f.City)
	required(v, "state", f.State)
	required(v, "postalCode", f.PostalCode)
	required(v, "country", f.Country)

	// name is reported as firstName/lastName on the form
	rest := Validate(f.ShippingAddress(), f.PaymentInput)
	if rest != nil {
		delete(rest.Fields, "name")
		v.merge(rest)
	}
	return v.orNil()
}

func (h *Handler) quote(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	items := h.carts.For(c.UserContext(), userID).Items()
	return c.JSON(fiber.Map{"items": items, "quote": QuoteFor(items)})
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	form := new(CheckoutForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// the ordered items leave the cart only once the order is saved
	var o Order
	s := h.carts.For(c.UserContext(), userID)
	err = s.Checkout(func(items []cart.LineItem) error {
		if len(items) == 0 {
			return errEmptyCart
		}
		if verr := form.Validate(); verr != nil {
			return verr
		}
		var err error
		o, err = h.ledger.PlaceOrder(c.UserContext(), userID, items, form.ShippingAddress(), form.PaymentInput)
		return err
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, errEmptyCart):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Your cart is empty"})
		case errors.As(err, &verr):
			return invalidInput(c, verr)
		case errors.Is(err, ErrInvalidState):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrPersistence):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Order could not be saved, please try again"})
		default:
			log.Errorf("place order for user %d: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(o)
}

func invalidInput(c *fiber.Ctx, verr *ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Please correct the highlighted fields",
		"errors":  verr.Fields,
	})
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	history, err := h.ledger.History(c.UserContext(), userID)
	if err != nil {
		log.Errorf("order history for user %d: %v", userID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "order history unavailable"})
	}
	return c.JSON(history)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	o, err := h.ledger.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}
		log.Errorf("order %s for user %d: %v", c.Params("id"), userID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "order history unavailable"})
	}
	return c.JSON(o)
}
