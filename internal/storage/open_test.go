package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	s, closeFn, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStore{}, s)
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, closeFn, err := Open(context.Background(), Options{Driver: DriverRedis, RedisAddr: mr.Addr(), RedisPrefix: "t:"})
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, s.Put(context.Background(), "k", []byte("v")))
	assert.True(t, mr.Exists("t:k"))
}

func TestOpen_PostgresNeedsURL(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Driver: DriverPostgres})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Driver: "bolt"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
