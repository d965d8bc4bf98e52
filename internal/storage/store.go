package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

var (
	ErrNotFound = errors.New("key not found")
)

// Store is the persisted key-value store backing session tokens, cart
// mirrors and order histories. Values are opaque bytes (JSON in practice).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Remove deletes every given key. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

func OrdersKey(userID int) string {
	return "orders_" + strconv.Itoa(userID)
}

func CartKey(userID int) string {
	return "cart_" + strconv.Itoa(userID)
}

func TokenKey(userID int) string {
	return "authToken_" + strconv.Itoa(userID)
}

// MemoryStore is used for tests and local runs without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
