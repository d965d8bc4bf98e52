package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/catalog"
	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/session"
	"github.com/wichananm65/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()
	log.Infof("storage driver %q ready", cfg.StorageDriver)

	app := newApp(cfg, kv)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("starting server on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newApp(cfg config.Config, kv storage.Store) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	setupCORS(app, cfg.CORSOrigins)

	remote := catalog.NewClient(cfg.CatalogConfig())
	carts := cart.NewRegistry(kv)
	secret := []byte(cfg.JWTSecret)

	catalogHandler := catalog.NewHandler(remote)
	sessionHandler := session.NewHandler(session.NewService(remote, kv, carts, secret))
	cartHandler := cart.NewHandler(carts, catalog.NewCartProducts(remote))
	orderHandler := order.NewHandler(order.NewLedger(kv), carts)

	catalogHandler.RegisterPublicRoutes(app)
	sessionHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: secret,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	sessionHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}
