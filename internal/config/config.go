package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/wichananm65/storefront/internal/catalog"
	"github.com/wichananm65/storefront/internal/storage"
)

type Config struct {
	Addr           string
	JWTSecret      string
	CatalogURL     string
	CatalogTimeout time.Duration
	StorageDriver  string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string
	CORSOrigins    string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Addr:          env("STOREFRONT_ADDR", ":8080"),
		JWTSecret:     getenv("JWT_SECRET"),
		CatalogURL:    env("CATALOG_API_URL", catalog.DefaultBaseURL),
		StorageDriver: strings.ToLower(env("STORAGE_DRIVER", storage.DriverMemory)),
		DatabaseURL:   getenv("DATABASE_URL"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisPrefix:   env("REDIS_PREFIX", "storefront:"),
		CORSOrigins:   env("CORS_ORIGINS", "*"),
	}

	timeout, err := time.ParseDuration(env("CATALOG_TIMEOUT", catalog.DefaultTimeout.String()))
	if err != nil {
		return Config{}, fmt.Errorf("CATALOG_TIMEOUT: %w", err)
	}
	cfg.CatalogTimeout = timeout

	if v := getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:        c.StorageDriver,
		DatabaseURL:   c.DatabaseURL,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

func (c Config) CatalogConfig() catalog.Config {
	return catalog.Config{BaseURL: c.CatalogURL, Timeout: c.CatalogTimeout}
}
