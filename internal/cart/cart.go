package cart

import "github.com/shopspring/decimal"

// Category is the optional category a product is listed under.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is what callers hand to AddItem. Only ID, Title and Price are
// required; the rest only feeds display fields of the line item.
type Product struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Images   []string        `json:"images,omitempty"`
	Category *Category       `json:"category,omitempty"`
}

// LineItem is one product and its quantity in a cart. UnitPrice is the
// price captured when the product was first added.
type LineItem struct {
	ProductID     int             `json:"productID"`
	Title         string          `json:"title"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	CategoryLabel string          `json:"categoryLabel,omitempty"`
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals is derived from the line items on every read.
type Totals struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// TotalsOf sums quantities and line totals of items.
func TotalsOf(items []LineItem) Totals {
	t := Totals{Subtotal: decimal.Zero}
	for _, it := range items {
		t.TotalItems += it.Quantity
		t.Subtotal = t.Subtotal.Add(it.LineTotal())
	}
	return t
}

func newLineItem(p Product, quantity int) LineItem {
	price := p.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	item := LineItem{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: price,
		Quantity:  quantity,
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0]
	}
	if p.Category != nil {
		item.CategoryLabel = p.Category.Name
	}
	return item
}
