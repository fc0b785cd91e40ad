package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	_ "github.com/jhoicas/estoque-vet/docs"
	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/application/auth"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/application/report"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/cache"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/docstore"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/kafka"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/estoque-vet/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-vet/internal/interfaces/http"
	"github.com/jhoicas/estoque-vet/internal/jobs"
	"github.com/jhoicas/estoque-vet/pkg/config"
	"github.com/jhoicas/estoque-vet/pkg/logger"
	"github.com/jhoicas/estoque-vet/pkg/tracing"
)

// @title						Estoque Vet API
// @version					1.0
// @description				Inventario de la clínica veterinaria: lotes por local, transferencias, registros y reportes.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	var (
		store repository.RecordStore
		tx    inventory.TxRunner
	)
	switch cfg.Store.Driver {
	case "memory":
		mem := memory.NewDocumentStore()
		store, tx = mem, memory.NewTxRunner(mem)
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("crear esquema")
		}
		store, tx = postgres.NewDocumentStore(pool), postgres.NewTxRunner(pool)
	}

	m := metrics.New()
	catalog := inv.DefaultCatalog()
	loc := cfg.App.Location()

	writerOpts := []activity.Option{activity.WithRecorder(m)}
	if cfg.Kafka.Enabled() {
		publisher, err := kafka.NewActivityPublisher(cfg.Kafka.Brokers, cfg.Kafka.ActivityTopic, log)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("productor Kafka")
		}
		defer publisher.Close()
		writerOpts = append(writerOpts, activity.WithPublisher(publisher))
	}
	writer := activity.NewWriter(store, loc, log, writerOpts...)

	productUC := inventory.NewProductUseCase(catalog, store, writer, cfg.App.LowStockThreshold)
	transferUC := inventory.NewTransferUseCase(catalog, tx, writer, m, log)
	importUC := inventory.NewImportUseCase(productUC, m, log)
	authUC := auth.NewUseCase(docstore.NewUserRepository(store), writer, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	var reportOpts []report.Option
	var worker *jobs.Worker
	var jobClient *jobs.Client
	if cfg.Redis.Enabled() {
		rdb, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer func(c *redis.Client) { _ = c.Close() }(rdb)
		reportOpts = append(reportOpts, report.WithCache(cache.NewRedisReportCache(rdb, cfg.Redis.ReportCacheTTL)))
	}
	reportUC := report.NewUseCase(catalog, store, writer, loc, log, reportOpts...)

	if cfg.Redis.Enabled() {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
		worker, err = jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts:         redisOpts,
			Logger:            log,
			ReportRefresh:     jobs.NewReportRefreshJob(reportUC, m, log),
			ReportRefreshCron: cfg.Jobs.ReportRefreshCron,
			Location:          loc,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("worker asynq")
		}
		jobClient = jobs.NewClient(redisOpts)
		defer jobClient.Close()
	}

	app := httpRouter.NewApp(cfg.App.Name)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Estoque Vet API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:        catalog,
		ProductUC:      productUC,
		TransferUC:     transferUC,
		ImportUC:       importUC,
		AuthUC:         authUC,
		ReportUC:       reportUC,
		ReportPDF:      infrapdf.NewReportGenerator(catalog),
		Activity:       writer,
		JWTSecret:      cfg.JWT.Secret,
		StoreDriver:    cfg.Store.Driver,
		Logger:         log,
		Metrics:        m,
		LoginRateLimit: cfg.HTTP.LoginRateLimit,
	})

	workerDone := make(chan struct{})
	if worker != nil {
		go func() {
			defer close(workerDone)
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("worker finalizado")
			}
		}()
		if _, err := jobClient.EnqueueReportRefresh(ctx, "startup"); err != nil {
			log.Warn().Err(err).Msg("encolar refresco inicial del reporte")
		}
	} else {
		close(workerDone)
	}

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
	stop()
	<-workerDone

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de tracing")
	}

	log.Info().Msg("aplicación detenida")
}
