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

	"github.com/ricazo/pos-engine/docs"
	"github.com/ricazo/pos-engine/internal/application/inventory"
	"github.com/ricazo/pos-engine/internal/application/order"
	"github.com/ricazo/pos-engine/internal/application/payment"
	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/application/shift"
	"github.com/ricazo/pos-engine/internal/domain/repository"
	"github.com/ricazo/pos-engine/internal/infrastructure/cache"
	"github.com/ricazo/pos-engine/internal/infrastructure/memory"
	infrapdf "github.com/ricazo/pos-engine/internal/infrastructure/pdf"
	"github.com/ricazo/pos-engine/internal/infrastructure/postgres"
	httpRouter "github.com/ricazo/pos-engine/internal/interfaces/http"
	"github.com/ricazo/pos-engine/pkg/config"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// backend repositorios que comparten los casos de uso, sea cual sea el driver.
type backend struct {
	tx        ports.TxRunner
	shifts    repository.ShiftRepository
	tickets   repository.TicketRepository
	methods   repository.PaymentMethodRepository
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	catalog   repository.CatalogSnapshot
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer be.close()

	inventoryUC := inventory.NewUseCase(be.tx, be.stock, be.movements, be.catalog, log)
	shiftUC := shift.NewUseCase(be.tx, be.shifts, infrapdf.NewZReportGenerator(""), cfg.POS.CashTenderLabel, log)
	orderUC := order.NewUseCase(be.tx, be.tickets, be.catalog, order.Config{
		TableServiceChargePercent: cfg.POS.TableServiceChargePercent,
		MaxServiceChargePercent:   cfg.POS.MaxServiceChargePercent,
	}, log)
	paymentUC := payment.NewUseCase(be.tx, be.tickets, be.methods, be.catalog, inventoryUC, cfg.POS.CashTenderLabel, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Ricazo POS API",
		}))
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(docs.ReadDoc())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ShiftUC:     shiftUC,
		OrderUC:     orderUC,
		PaymentUC:   paymentUC,
		InventoryUC: inventoryUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,
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

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewSeeded()
		return &backend{
			tx:        s,
			shifts:    s.Shifts(),
			tickets:   s.Tickets(),
			methods:   s.PaymentMethods(),
			stock:     s.Stock(),
			movements: s.Movements(),
			catalog:   s,
			close:     func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		v, err := postgres.Migrate(cfg.DB.ConnectionString(), postgres.MigrateUp)
		if err != nil {
			return nil, err
		}
		log.Info().Uint("version", v).Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, err
	}
	be := &backend{
		tx:        postgres.NewTxRunner(pool),
		shifts:    postgres.NewShiftRepository(pool),
		tickets:   postgres.NewTicketRepository(pool),
		methods:   postgres.NewPaymentMethodRepository(pool),
		stock:     postgres.NewStockRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		catalog:   postgres.NewCatalogRepository(pool),
		close:     pool.Close,
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// sin caché el catálogo se lee de PostgreSQL; no impide operar
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, catálogo sin caché")
		} else {
			be.catalog = cache.NewCatalogCache(client, be.catalog, cfg.Redis.CatalogCacheTTL, log)
			be.close = func() {
				_ = client.Close()
				pool.Close()
			}
		}
	}
	return be, nil
}
