package order

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Shape checks only. Nothing here talks to a payment processor and the
// card number and CVV never leave PlaceOrder.
var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expirationPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	emailPattern      = regexp.MustCompile(`\S+@\S+\.\S+`)
	whitespace        = regexp.MustCompile(`\s`)
)

const (
	DefaultPaymentMethod = "credit"
	msgRequired          = "This field is required"
)

// PaymentInput is the card form as submitted.
type PaymentInput struct {
	Method     string `json:"paymentMethod"`
	CardName   string `json:"cardName"`
	CardNumber string `json:"cardNumber"`
	Expiration string `json:"expirationDate"`
	CVV        string `json:"cvv"`
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid checkout input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	for k, v := range other.Fields {
		e.add(k, v)
	}
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func required(v *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, msgRequired)
	}
}

// Validate checks the shipping address and the card form. It returns nil
// when everything has the expected shape.
func Validate(addr ShippingAddress, pay PaymentInput) *ValidationError {
	v := &ValidationError{}
	required(v, "name", addr.Name)
	required(v, "address", addr.Address)
	required(v, "city", addr.City)
	required(v, "state", addr.State)
	required(v, "postalCode", addr.PostalCode)
	required(v, "country", addr.Country)
	required(v, "cardName", pay.CardName)
	required(v, "cardNumber", pay.CardNumber)
	required(v, "expirationDate", pay.Expiration)
	required(v, "cvv", pay.CVV)

	if pay.CardNumber != "" && !cardNumberPattern.MatchString(normalizeCardNumber(pay.CardNumber)) {
		v.add("cardNumber", "Please enter a valid 16-digit card number")
	}
	if pay.Expiration != "" && !expirationPattern.MatchString(pay.Expiration) {
		v.add("expirationDate", "Please use MM/YY format")
	}
	if pay.CVV != "" && !cvvPattern.MatchString(pay.CVV) {
		v.add("cvv", "Please enter a valid CVV")
	}
	return v.orNil()
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func normalizeCardNumber(n string) string {
	return whitespace.ReplaceAllString(n, "")
}

// summarize keeps only the method and the last four card digits.
func summarize(pay PaymentInput) PaymentSummary {
	method := strings.TrimSpace(pay.Method)
	if method == "" {
		method = DefaultPaymentMethod
	}
	digits := normalizeCardNumber(pay.CardNumber)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return PaymentSummary{Method: method, CardLast4: digits}
}
