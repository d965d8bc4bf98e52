package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/cart"
)

type Status string

// StatusCompleted is the only status an order ever has.
const StatusCompleted Status = "Completed"

const PaymentMethodCreditCard = "Credit Card"

type ShippingAddress struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentSummary is all that is kept of the payment input.
type PaymentSummary struct {
	Method    string `json:"method"`
	CardLast4 string `json:"cardLast4"`
}

// Order is an immutable checkout record. Items keep the unit price they
// had at checkout and Total always equals Subtotal + Shipping + Tax.
type Order struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"createdAt"`
	Status          Status          `json:"status"`
	UserID          int             `json:"userId"`
	Items           []cart.LineItem `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Payment         PaymentSummary  `json:"paymentDetails"`
}

// History lists a user's orders, newest first.
type History []Order
