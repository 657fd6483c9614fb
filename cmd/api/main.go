package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-sync/docs"
	"github.com/jhoicas/Inventario-sync/internal/application/inventory"
	"github.com/jhoicas/Inventario-sync/internal/application/report"
	"github.com/jhoicas/Inventario-sync/internal/application/session"
	"github.com/jhoicas/Inventario-sync/internal/application/validation"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/auth"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/memstore"
	infrapdf "github.com/jhoicas/Inventario-sync/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Inventario-sync/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Inventario-sync/internal/interfaces/http"
	"github.com/jhoicas/Inventario-sync/pkg/config"
	"github.com/jhoicas/Inventario-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("configuración inválida: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	products, users, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar store")
	}
	defer closeStores()

	provider := auth.NewLocalProvider(users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	val := validation.New(cfg.Catalog.Categories)
	ctrl := inventory.NewController(
		session.NewManager(provider, log.Component("session")),
		products,
		provider,
		val,
		inventory.Config{QueueSize: cfg.Sync.QueueSize},
		log,
	)
	reportUC := report.NewUseCase(ctrl, infrapdf.NewMarotoPDFGenerator())

	// Sin WriteTimeout: /api/events mantiene la respuesta abierta.
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Inventario API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	// Documento OpenAPI embebido en el binario (swag).
	app.Get("/swagger.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		st := ctrl.State()
		return c.JSON(fiber.Map{
			"status":      "ok",
			"service":     cfg.App.Name,
			"loading":     st.Loading,
			"sync_status": st.Status,
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Controller: ctrl,
		Validator:  val,
		Reports:    reportUC,
		JWTSecret:  cfg.JWT.Secret,

		StreamHeartbeat: time.Duration(cfg.HTTP.StreamHeartbeatSeconds) * time.Second,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(gctx)
	})
	g.Go(func() error {
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("apagando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("aplicación finalizada con error")
		closeStores()
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}

// openStores arma el store de productos y el repo de usuarios según STORE_DRIVER.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.DocumentStore, repository.UserRepository, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		return memstore.NewProductStore(), memstore.NewUserRepository(), func() {}, nil
	}

	dsn := cfg.DB.ConnectionString()
	if cfg.Store.Migrate {
		if err := postgres.Migrate(dsn); err != nil {
			return nil, nil, nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info().Str("dsn", postgres.RedactDSN(dsn)).Msg("conectado a PostgreSQL")

	var (
		feed    repository.ChangeFeed
		closers = []func(){pool.Close}
	)
	switch cfg.Store.Notifier {
	case config.NotifierRedis:
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		feed = infraredis.NewNotifier(client, log.Component("redis"))
	default:
		feed = postgres.NewNotifier(pool, log.Component("notifier"))
	}

	var closed bool
	closeAll := func() {
		if closed {
			return
		}
		closed = true
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	store := postgres.NewProductStore(pool, feed, log.Component("postgres"))
	return store, postgres.NewUserRepository(pool), closeAll, nil
}
