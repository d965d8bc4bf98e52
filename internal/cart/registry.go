package cart

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/storage"
)

// Registry keeps one session cart per signed-in user. With a storage
// backend each cart is mirrored so it survives a restart.
type Registry struct {
	mu    sync.Mutex
	carts map[int]*Store
	kv    storage.Store
}

// NewRegistry builds a registry; kv may be nil for purely in-memory carts.
func NewRegistry(kv storage.Store) *Registry {
	return &Registry{carts: make(map[int]*Store), kv: kv}
}

// For returns the cart of userID, creating (and restoring) it on first use.
// The mirror is read without holding the registry lock.
func (r *Registry) For(ctx context.Context, userID int) *Store {
	r.mu.Lock()
	s, ok := r.carts[userID]
	r.mu.Unlock()
	if ok {
		return s
	}

	if r.kv == nil {
		s = NewStore()
	} else {
		key := storage.CartKey(userID)
		items, err := Restore(ctx, r.kv, key)
		if err != nil {
			log.Warnf("cart restore %s failed, starting empty: %v", key, err)
			items = nil
		}
		s = NewStore(WithItems(items), WithSync(NewStorageSync(r.kv, key)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.carts[userID]; ok {
		return existing
	}
	r.carts[userID] = s
	return s
}

// Drop forgets the session cart of userID. The mirror is left alone.
func (r *Registry) Drop(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
}
