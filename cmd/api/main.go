package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/LuisSisCode/sistema-clinica/internal/application/inventory"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/postgres"
	httpRouter "github.com/LuisSisCode/sistema-clinica/internal/interfaces/http"
	"github.com/LuisSisCode/sistema-clinica/pkg/config"
	"github.com/LuisSisCode/sistema-clinica/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Una sola caché por proceso, inyectada en la fachada.
	queryCache := cache.New(cache.Config{
		DefaultTTL: time.Duration(cfg.Cache.DefaultTTLSeconds) * time.Second,
		SweepEvery: cfg.Cache.SweepEvery,
	})

	facade := inventory.NewFacade(
		txRunner, productRepo, lotRepo, saleRepo, purchaseRepo, queryCache,
		inventory.Config{
			ExpiryHorizon: time.Duration(cfg.Inventory.ExpiryHorizonDays) * 24 * time.Hour,
			AllowExpired:  cfg.Inventory.AllowExpiredSale,
			AnulWindow:    time.Duration(cfg.Inventory.AnulWindowHours) * time.Hour,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sistema Clínica API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Facade:    facade,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
