package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight_board/internal/auth"
	"flight_board/internal/cache"
	"flight_board/internal/config"
	"flight_board/internal/handlers"
	"flight_board/internal/kafka"
	"flight_board/internal/logger"
	"flight_board/internal/metrics"
	"flight_board/internal/repository"
	"flight_board/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	dbCollectInterval    = 30 * time.Second
	redisCollectInterval = 30 * time.Second
	shutdownTimeout      = 10 * time.Second
)

func main() {
	// ---------- config ----------
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	// ---------- db ----------
	pool, err := repository.NewPool(ctx, cfg.DBDSN, cfg.DBPool)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer pool.Close()

	flightRepo := repository.NewFlightRepository(pool)
	metrics.StartDBCollectors(ctx, flightRepo, dbCollectInterval, log)

	// ---------- cache ----------
	var flightCache cache.Cache
	if cfg.CacheEnabled() {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, continuing without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rc.Close()
		} else {
			defer rc.Close()
			flightCache = rc
			cache.StartRedisSizeCollector(ctx, rc.RawClient(), redisCollectInterval, log)
			log.Info("all_flights cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	// ---------- credentials ----------
	var authenticator auth.Authenticator = auth.EmptyStore()
	if cfg.CredentialsFile != "" {
		store, err := auth.LoadFileStore(cfg.CredentialsFile)
		if err != nil {
			log.Fatal("credentials", zap.String("file", cfg.CredentialsFile), zap.Error(err))
		}
		log.Info("credentials loaded", zap.Int("users", store.Len()))
		authenticator = store
	} else {
		log.Warn("CREDENTIALS_FILE is not set, every login will be rejected")
	}

	// ---------- kafka consumer ----------
	if cfg.IngestEnabled() {
		ingest := service.NewIngestService(flightRepo, cfg.Location, log)
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, ingest, flightCache, log)
		if err != nil {
			log.Fatal("kafka consumer", zap.Error(err))
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error("kafka consumer stopped", zap.Error(err))
			}
		}()
		log.Info("ingest consumer started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// ---------- services / handlers ----------
	boardService := service.NewBoardService(flightRepo, service.BoardConfig{
		Location:     cfg.Location,
		TrailingCap:  cfg.TrailingCap,
		LeadingCap:   cfg.LeadingCap,
		QueryTimeout: cfg.QueryTimeout,
	}, log)

	flightHandler := handlers.NewFlightHandler(boardService, flightCache, cfg.CacheTTL, log, cfg.ExposeErrors)
	authHandler := handlers.NewAuthHandler(authenticator, log, cfg.ExposeErrors)

	// ---------- router ----------
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware(log))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", metrics.Handler())

	handlers.RegisterFlightRoutes(r, flightHandler)
	handlers.RegisterAuthRoutes(r, authHandler)

	// ---------- start server ----------
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("display_tz", cfg.DisplayTZ),
			zap.Int("trailing_cap", cfg.TrailingCap),
			zap.Int("leading_cap", cfg.LeadingCap),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
