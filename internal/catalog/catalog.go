package catalog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("catalog: not found")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("catalog: unavailable")
)

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: remote status %d", e.Status)
	}
	return fmt.Sprintf("catalog: remote status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image,omitempty"`
}

type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    *Category       `json:"category,omitempty"`
	Images      []string        `json:"images"`
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	Categories []int
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

func (f Filter) Match(p Product) bool {
	if len(f.Categories) > 0 {
		if p.Category == nil {
			return false
		}
		found := false
		for _, id := range f.Categories {
			if id == p.Category.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
