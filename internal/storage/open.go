package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Options selects and configures a storage driver.
type Options struct {
	Driver        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open connects the configured driver. The returned close func releases
// the underlying connection and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), func() error { return nil }, nil

	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres storage: DATABASE_URL is not set")
		}
		db, err := sql.Open("pgx", opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		s := NewPostgresStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return NewRedisStore(client, opts.RedisPrefix), client.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}
