package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/storage"
)

// Ledger records placed orders as a per-user history under
// storage.OrdersKey. Appends are read-modify-write; mu serializes them
// within this process.
type Ledger struct {
	mu    sync.Mutex
	kv    storage.Store
	now   func() time.Time
	newID func() (string, error)
}

type LedgerOption func(*Ledger)

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(gen func() (string, error)) LedgerOption {
	return func(l *Ledger) { l.newID = gen }
}

func NewLedger(kv storage.Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{kv: kv, now: time.Now, newID: newOrderID}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// PlaceOrder snapshots items into a new Completed order and prepends it to
// the user's history. Only the last four card digits are kept. Clearing
// the cart is left to the caller, and only after a nil error.
func (l *Ledger) PlaceOrder(ctx context.Context, userID int, items []cart.LineItem, addr ShippingAddress, pay PaymentInput) (Order, error) {
	if userID <= 0 {
		return Order{}, fmt.Errorf("%w: user %d", ErrInvalidInput, userID)
	}
	snapshot := cart.NewStore(cart.WithItems(items)).Items()
	if len(snapshot) == 0 {
		return Order{}, fmt.Errorf("%w: cart is empty", ErrInvalidState)
	}
	if verr := Validate(addr, pay); verr != nil {
		return Order{}, verr
	}

	id, err := l.newID()
	if err != nil {
		return Order{}, fmt.Errorf("generate order id: %w", err)
	}
	q := QuoteFor(snapshot)
	o := Order{
		ID:              id,
		CreatedAt:       l.now().UTC(),
		Status:          StatusCompleted,
		UserID:          userID,
		Items:           snapshot,
		Subtotal:        q.Subtotal,
		Shipping:        q.Shipping,
		Tax:             q.Tax,
		Total:           q.Total,
		ShippingAddress: trimAddress(addr),
		PaymentMethod:   PaymentMethodCreditCard,
		Payment:         summarize(pay),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history, err := l.load(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	history = append(History{o}, history...)
	if err := storage.PutJSON(ctx, l.kv, storage.OrdersKey(userID), history); err != nil {
		log.Errorf("order %s for user %d not saved: %v", o.ID, userID, err)
		return Order{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Infof("order %s placed for user %d, total %s", o.ID, userID, o.Total.StringFixed(2))
	return o, nil
}

// History returns the orders of userID, newest first. A user without
// orders gets an empty history.
func (l *Ledger) History(ctx context.Context, userID int) (History, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, userID)
}

func (l *Ledger) Get(ctx context.Context, userID int, orderID string) (Order, error) {
	history, err := l.History(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	for _, o := range history {
		if o.ID == orderID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (l *Ledger) load(ctx context.Context, userID int) (History, error) {
	var history History
	_, err := storage.GetJSON(ctx, l.kv, storage.OrdersKey(userID), &history)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if history == nil {
		history = History{}
	}
	return history, nil
}

func trimAddress(a ShippingAddress) ShippingAddress {
	return ShippingAddress{
		Name:       strings.TrimSpace(a.Name),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
