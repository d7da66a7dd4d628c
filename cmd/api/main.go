package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", true).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBooking(reg)

	// ======================================================
	// STORAGE
	// ======================================================
	var (
		ledger  domain.Ledger
		catalog domain.Catalog
		sink    audit.Sink
		reader  audit.Reader
	)

	switch cfg.Storage {
	case config.StorageMemory:
		store := repository.NewMemoryStore()
		demo := repository.SeedDemo(store)
		mem := audit.NewMemorySink()
		ledger, catalog, sink, reader = store, store, mem, mem

		ev := log.Warn().Str("salon", demo.Salon.Slug).Uint("provider_id", demo.Provider.ID)
		if !cfg.IsProduction() {
			if token, err := middleware.SignToken(cfg.JWTSecret, demo.Provider.ID, demo.Salon.ID, 24*time.Hour); err == nil {
				ev = ev.Str("provider_token", token)
			}
		}
		ev.Msg("using in-memory storage with demo data")

	default:
		db, err := dbpkg.NewDB(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		gs := audit.NewGormSink(db)
		ledger = repository.NewAppointmentGormRepository(db)
		catalog = repository.NewCatalogGormRepository(db)
		sink, reader = gs, gs
	}

	// ======================================================
	// CACHE / IDEMPOTENCY
	// ======================================================
	var (
		slots cache.SlotCache   = cache.Noop{}
		idem  idempotency.Store = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
		rdb   *redis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		slots = cache.NewRedisSlotCache(rdb, cfg.SlotCacheTTL)
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
		log.Info().Msg("redis slot cache and idempotency store enabled")
	}

	dispatcher := audit.NewDispatcher(sink, 256, log, m)

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if err := routes.RegisterRoutes(r, routes.Deps{
		Config:      cfg,
		Ledger:      ledger,
		Catalog:     catalog,
		Auditor:     dispatcher,
		AuditReader: reader,
		Slots:       slots,
		Idempotency: idem,
		Metrics:     m,
		Gatherer:    reg,
		Clock:       timezone.SystemClock,
		Log:         log,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register routes")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// ======================================================
	// WORKERS
	// ======================================================
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		if cfg.CompletionSweepInterval <= 0 {
			return
		}
		worker.NewCompletionWorker(ledger, dispatcher, m, log, cfg.CompletionSweepInterval, cfg.CompletionGrace).Start(ctx)
	}()

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("storage", cfg.Storage).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	<-workersDone
	dispatcher.Close()
	closeRedis(rdb, log)

	log.Info().Msg("server exited properly")
}

func closeRedis(rdb *redis.Client, log zerolog.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("closing redis")
	}
}
