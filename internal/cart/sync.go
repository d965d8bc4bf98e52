package cart

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/storage"
)

const syncTimeout = 2 * time.Second

// NewStorageSync mirrors cart contents as JSON under key. An empty cart
// removes the key. Failures are logged only; cart mutations never fail.
func NewStorageSync(kv storage.Store, key string) SyncHook {
	return func(items []LineItem) {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		var err error
		if len(items) == 0 {
			err = kv.Remove(ctx, key)
		} else {
			err = storage.PutJSON(ctx, kv, key, items)
		}
		if err != nil {
			log.Warnf("cart sync %s failed: %v", key, err)
		}
	}
}

// Restore reads a mirrored cart. A missing mirror is an empty cart.
func Restore(ctx context.Context, kv storage.Store, key string) ([]LineItem, error) {
	var items []LineItem
	if _, err := storage.GetJSON(ctx, kv, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}
