package order

import (
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/cart"
)

var (
	// FreeShippingThreshold must be exceeded, not reached, for free shipping.
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.05")
)

// Quote is the price breakdown of a cart.
type Quote struct {
	TotalItems   int             `json:"totalItems"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping bool            `json:"freeShipping"`
}

// Price derives shipping, tax and total from a subtotal.
func Price(subtotal decimal.Decimal) Quote {
	q := Quote{Subtotal: subtotal, Shipping: FlatShipping}
	if subtotal.GreaterThan(FreeShippingThreshold) {
		q.Shipping = decimal.Zero
		q.FreeShipping = true
	}
	q.Tax = subtotal.Mul(TaxRate)
	q.Total = subtotal.Add(q.Shipping).Add(q.Tax)
	return q
}

func QuoteFor(items []cart.LineItem) Quote {
	t := cart.TotalsOf(items)
	q := Price(t.Subtotal)
	q.TotalItems = t.TotalItems
	return q
}
