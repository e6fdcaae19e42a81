package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	migrate "github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	appsync "github.com/jhoicas/ventas-sync/internal/application/sync"
	"github.com/jhoicas/ventas-sync/internal/infrastructure/legacy"
	"github.com/jhoicas/ventas-sync/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-sync/internal/infrastructure/velneo"
	httpRouter "github.com/jhoicas/ventas-sync/internal/interfaces/http"
	"github.com/jhoicas/ventas-sync/pkg/config"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:      cfg.App.Env,
		Level:    cfg.App.LogLevel,
		FilePath: cfg.App.LogFile,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("tipo_doc", cfg.Sync.TipoDoc).
		Msg("iniciando sincronizador de ventas")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	log.Info().Msg("esquema de base de datos al día")

	cabecerasRepo := postgres.NewInvoiceTrackingRepository(pool)
	partidasRepo := postgres.NewLineItemRepository(pool)
	recibosRepo := postgres.NewReceiptRepository(pool)
	retriesRepo := postgres.NewRetryRepository(pool)
	errorLogRepo := postgres.NewErrorLogRepository(pool, log)

	tracker := appsync.NewTracker(cabecerasRepo, partidasRepo, recibosRepo, cfg.Sync.TipoDoc, cfg.Velneo.Serie, log)
	submitter := velneo.NewSubmitClient(cfg.Velneo, log)
	poller := velneo.NewPendingClient(cfg.Velneo, log)
	orch := appsync.NewOrchestrator(submitter, poller, tracker, retriesRepo, errorLogRepo, appsync.Options{
		WaitInterval: cfg.Sync.WaitInterval(),
		PendingLimit: cfg.Sync.PendingLimit,
	}, log)

	src := legacy.NewJSONSource(cfg.Sync.SourceDir, log)
	service := appsync.NewService(src, orch, log)

	// Modo cron: un ciclo y terminar. El código de salida refleja el desenlace.
	if cfg.Sync.RunOnce {
		report, err := service.RunCycle(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("ciclo de sincronización fallido")
		}
		log.Info().
			Str("run_id", report.RunID).
			Int("enviados", report.Enviados).
			Int("consultados", report.Consultados).
			Msg("ciclo único terminado")
		return
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Service: service,
		Tracker: tracker,
		DB:      pool,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	// Ciclo programado en segundo plano. El disparo manual vía POST /sync/run
	// comparte el guard del servicio, así que nunca corren dos a la vez.
	loopCtx, cancelLoop := context.WithCancel(ctx)
	go runLoop(loopCtx, service, cfg.Sync.Interval(), log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando...")
	cancelLoop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("sincronizador detenido")
}

// runLoop ejecuta un ciclo inmediatamente y después uno por intervalo hasta
// que el contexto se cancele.
func runLoop(ctx context.Context, service *appsync.Service, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := service.RunCycle(ctx)
		switch {
		case errors.Is(err, appsync.ErrCicloEnCurso):
			log.Warn().Msg("ciclo programado saltado: otro ciclo en curso")
		case err != nil:
			log.Error().Err(err).Msg("ciclo de sincronización fallido")
		default:
			log.Info().
				Str("run_id", report.RunID).
				Int("enviados", report.Enviados).
				Int("consultados", report.Consultados).
				Msg("ciclo programado terminado")
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// runMigrations aplica las migraciones pendientes con una conexión stdlib
// separada del pool de la aplicación.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
