package cart

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/session"
)

var ErrProductNotFound = errors.New("product not found")

// ProductSource resolves a product id to the shape AddItem accepts.
type ProductSource interface {
	GetProduct(ctx context.Context, id int) (Product, error)
}

// Handler exposes the session cart of the signed-in user.
type Handler struct {
	carts    *Registry
	products ProductSource
}

func NewHandler(carts *Registry, products ProductSource) *Handler {
	return &Handler{carts: carts, products: products}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Patch("/api/v1/cart/items/:id", h.updateQuantity)
	app.Delete("/api/v1/cart/items/:id", h.removeItem)
}

type addItemRequest struct {
	ProductID int `json:"productID"`
	Quantity  int `json:"quantity,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items []LineItem `json:"items"`
	Totals
}

func respond(c *fiber.Ctx, s *Store) error {
	items, totals := s.Snapshot()
	return c.JSON(cartResponse{Items: items, Totals: totals})
}

func (h *Handler) cartFor(c *fiber.Ctx) (*Store, error) {
	userID, err := session.GetUserIDFromCtx(c)
	if err != nil {
		return nil, err
	}
	return h.carts.For(c.UserContext(), userID), nil
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	s, err := h.cartFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return respond(c, s)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productID"})
	}
	if payload.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity must be positive"})
	}
	s, err := h.cartFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	p, err := h.products.GetProduct(c.UserContext(), payload.ProductID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		log.Errorf("product lookup %d failed: %v", payload.ProductID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
	}

	// omitted quantity means one
	s.AddItem(p, payload.Quantity)
	return respond(c, s)
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	payload := new(updateQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	s, err := h.cartFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	s.UpdateQuantity(productID, payload.Quantity)
	return respond(c, s)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	s, err := h.cartFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	s.RemoveItem(productID)
	return respond(c, s)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	s, err := h.cartFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	s.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}
