package cart

import (
	"strings"
	"sync"
)

// SyncHook receives a copy of the line items after a mutation. It runs
// after the store is unlocked; calls are serialized and a state already
// superseded by a newer one is not sent.
type SyncHook func(items []LineItem)

type Option func(*Store)

// WithSync mirrors every mutation through h.
func WithSync(h SyncHook) Option {
	return func(s *Store) { s.onChange = h }
}

// WithItems seeds the store, e.g. from a persisted mirror. Duplicate
// product ids are merged and entries with quantity below one are dropped.
func WithItems(items []LineItem) Option {
	return func(s *Store) {
		for _, it := range items {
			if it.Quantity < 1 || it.ProductID <= 0 {
				continue
			}
			if i := s.indexOf(it.ProductID); i >= 0 {
				s.items[i].Quantity += it.Quantity
				continue
			}
			s.items = append(s.items, it)
		}
	}
}

// Store holds the line items of one session cart in insertion order.
// There is at most one item per product id and every quantity is >= 1.
type Store struct {
	mu      sync.RWMutex
	items   []LineItem
	version uint64

	syncMu   sync.Mutex
	synced   uint64
	onChange SyncHook

	// held from snapshot to removal of the ordered items
	checkoutMu sync.Mutex
}

func NewStore(opts ...Option) *Store {
	s := &Store{items: make([]LineItem, 0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem increments the quantity of an existing item or appends a new one.
// Quantities below one count as one. Products without id or title are ignored.
func (s *Store) AddItem(p Product, quantity int) {
	if p.ID <= 0 || strings.TrimSpace(p.Title) == "" {
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mutate(func() bool {
		if i := s.indexOf(p.ID); i >= 0 {
			s.items[i].Quantity += quantity
			return true
		}
		s.items = append(s.items, newLineItem(p, quantity))
		return true
	})
}

// UpdateQuantity sets the quantity of an item; zero or less removes it.
// Unknown product ids are ignored.
func (s *Store) UpdateQuantity(productID int, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 || s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

func (s *Store) RemoveItem(productID int) {
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 {
			return false
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	})
}

func (s *Store) Clear() {
	s.mutate(func() bool {
		s.items = make([]LineItem, 0)
		return true
	})
}

// RemoveOrdered subtracts the quantities of ordered from the cart. Items
// added or increased after ordered was taken stay in the cart.
func (s *Store) RemoveOrdered(ordered []LineItem) {
	s.mutate(func() bool {
		changed := false
		for _, o := range ordered {
			i := s.indexOf(o.ProductID)
			if i < 0 || o.Quantity < 1 {
				continue
			}
			changed = true
			if s.items[i].Quantity > o.Quantity {
				s.items[i].Quantity -= o.Quantity
				continue
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return changed
	})
}

// Checkout hands a snapshot of the items to place and, when place returns
// nil, removes exactly those items. Checkouts of one cart run one at a
// time; other mutations are not blocked while place runs.
func (s *Store) Checkout(place func(items []LineItem) error) error {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	items := s.Items()
	if err := place(items); err != nil {
		return err
	}
	s.RemoveOrdered(items)
	return nil
}

// Snapshot returns the items and their totals from one consistent state.
func (s *Store) Snapshot() ([]LineItem, Totals) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), TotalsOf(s.items)
}

// Items returns a copy of the line items.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalsOf(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	version, items := s.version, s.snapshot()
	s.mu.Unlock()

	s.publish(version, items)
}

func (s *Store) publish(version uint64, items []LineItem) {
	if s.onChange == nil {
		return
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if version <= s.synced {
		return
	}
	s.synced = version
	s.onChange(items)
}

func (s *Store) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(productID int) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
