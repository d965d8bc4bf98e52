package catalog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// Handler proxies the public catalog endpoints.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
	app.Get("/api/v1/categories", h.getCategories)
	app.Get("/api/v1/categories/:id", h.getCategory)
	app.Get("/api/v1/categories/:id/products", h.getCategoryProducts)
	app.Get("/api/v1/search", h.search)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	case errors.Is(err, ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "catalog unavailable"})
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < fiber.StatusInternalServerError {
		return c.Status(apiErr.Status).JSON(fiber.Map{"message": apiErr.Error()})
	}
	log.Errorf("catalog request %s failed: %v", c.OriginalURL(), err)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
}

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("limit", DefaultLimit), c.QueryInt("offset", 0)
}

func idParam(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	return id, err == nil && id > 0
}

// filterParams reads ?categories=1,2&price_min=..&price_max=..
func filterParams(c *fiber.Ctx) (Filter, error) {
	var f Filter
	if raw := c.Query("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return f, errors.New("invalid categories")
			}
			f.Categories = append(f.Categories, id)
		}
	}
	for key, dst := range map[string]**decimal.Decimal{"price_min": &f.MinPrice, "price_max": &f.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, errors.New("invalid " + key)
		}
		*dst = &d
	}
	return f, nil
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	filter, err := filterParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	limit, offset := pageParams(c)
	products, err := h.client.ListProducts(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(filter.Apply(products))
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	p, err := h.client.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items, err := h.client.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category id"})
	}
	cat, err := h.client.GetCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cat)
}

func (h *Handler) getCategoryProducts(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category id"})
	}
	filter, err := filterParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	limit, offset := pageParams(c)
	products, err := h.client.ProductsByCategory(c.UserContext(), id, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(filter.Apply(products))
}

func (h *Handler) search(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		return c.JSON([]Product{})
	}
	products, err := h.client.SearchProducts(c.UserContext(), title)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}
