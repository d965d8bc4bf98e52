package catalog

import (
	"context"
	"errors"

	"github.com/wichananm65/storefront/internal/cart"
)

// ToCartProduct keeps the fields a cart line needs.
func ToCartProduct(p Product) cart.Product {
	out := cart.Product{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Images: append([]string(nil), p.Images...),
	}
	if p.Category != nil {
		out.Category = &cart.Category{ID: p.Category.ID, Name: p.Category.Name}
	}
	return out
}

// CartProducts resolves cart additions against the remote catalog.
type CartProducts struct {
	client *Client
}

func NewCartProducts(client *Client) *CartProducts {
	return &CartProducts{client: client}
}

func (s *CartProducts) GetProduct(ctx context.Context, id int) (cart.Product, error) {
	p, err := s.client.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return cart.Product{}, cart.ErrProductNotFound
	}
	if err != nil {
		return cart.Product{}, err
	}
	return ToCartProduct(p), nil
}
