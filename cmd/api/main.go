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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Supermercado-api/internal/application/activity"
	appanalytics "github.com/jhoicas/Supermercado-api/internal/application/analytics"
	"github.com/jhoicas/Supermercado-api/internal/application/auth"
	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
	"github.com/jhoicas/Supermercado-api/internal/application/inventory"
	"github.com/jhoicas/Supermercado-api/internal/application/usecase"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Supermercado-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/realtime"
	infraredis "github.com/jhoicas/Supermercado-api/internal/infrastructure/redis"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/Supermercado-api/internal/interfaces/http"
	"github.com/jhoicas/Supermercado-api/pkg/config"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
)

// txRunner lo implementan postgres.TxRunner y memory.TxRunner.
type txRunner interface {
	checkout.TxRunner
	inventory.TxRunner
	usecase.TxRunner
}

// storage repositorios de la app sobre PostgreSQL o en memoria.
type storage struct {
	tx         txRunner
	products   repository.ProductRepository
	orders     repository.OrderRepository
	activities repository.ActivityRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	users      repository.UserRepository
	analytics  repository.AnalyticsRepository
	ping       func(ctx context.Context) error
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tp, err := telemetry.Setup(ctx, cfg.App, cfg.OTel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	store, err := openStorage(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer store.close()

	// Idempotencia: Redis si está configurado; si no, en memoria del proceso.
	// La restricción UNIQUE de orders.request_id aplica en ambos casos.
	var idem checkout.IdempotencyStore = memory.NewIdempotencyStore()
	health := store.ping
	if cfg.Redis.Enabled() {
		client := infraredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		redisIdem := infraredis.NewIdempotencyStore(client)
		if err := redisIdem.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; se reintenta en cada solicitud")
		}
		idem = redisIdem
		health = func(ctx context.Context) error {
			if err := store.ping(ctx); err != nil {
				return err
			}
			return redisIdem.Ping(ctx)
		}
	}

	// Feed en vivo de actividad
	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	receipts := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	limiter := httpRouter.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(telemetry.Middleware())
	app.Use(logger.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Supermercado API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(store.users),
		ProductUC:   usecase.NewProductUseCase(store.tx, store.products, store.orders, store.categories, store.suppliers, hub),
		CatalogUC:   usecase.NewCatalogUseCase(store.categories, store.suppliers),
		CreateOrder: checkout.NewCreateOrderUseCase(store.tx, store.orders, idem, hub, cfg.Redis.IdempotencyTTL, log),
		Refund:      checkout.NewRefundUseCase(store.tx, hub, cfg.Checkout.RefundRestockDefault, log),
		Orders:      checkout.NewOrderQueryUseCase(store.orders, receipts),
		AdjustStock: inventory.NewAdjustStockUseCase(store.tx, hub, log),
		LowStock:    inventory.NewLowStockUseCase(store.products),
		ActivityUC:  activity.NewUseCase(store.activities),
		DashboardUC: appanalytics.NewDashboardUseCase(store.analytics, store.products),
		LiveFeed:    hub.Handler(),
		RateLimiter: limiter,
		HealthCheck: health,
		AppName:     cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
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
	stop() // detiene el hub y cierra los websockets
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg config.DBConfig) (*storage, error) {
	if cfg.InMemory() {
		s := memory.NewStore()
		return &storage{
			tx:         memory.NewTxRunner(s),
			products:   memory.NewProductRepository(s),
			orders:     memory.NewOrderRepository(s),
			activities: memory.NewActivityRepository(s),
			categories: memory.NewCategoryRepository(s),
			suppliers:  memory.NewSupplierRepository(s),
			users:      memory.NewUserRepository(s),
			analytics:  memory.NewAnalyticsRepository(s),
			ping:       func(context.Context) error { return nil },
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:         postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		orders:     postgres.NewOrderRepository(pool),
		activities: postgres.NewActivityRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool),
		users:      postgres.NewUserRepository(pool),
		analytics:  postgres.NewAnalyticsRepository(pool),
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}
