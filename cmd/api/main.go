package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Siddarth2230/flowcode/internal/config"
	"github.com/Siddarth2230/flowcode/internal/handler"
	"github.com/Siddarth2230/flowcode/internal/middleware"
	"github.com/Siddarth2230/flowcode/internal/repository"
	"github.com/Siddarth2230/flowcode/internal/service"
	"github.com/Siddarth2230/flowcode/pkg/cache"
	"github.com/Siddarth2230/flowcode/pkg/idgen"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	formatter, err := cfg.Formatter()
	if err != nil {
		return err
	}
	slog.Info("formatter configured",
		"radix", formatter.Radix(), "alphabet", formatter.Alphabet(),
		"length", cfg.CodeLength, "capacity", formatter.Capacity(cfg.CodeLength))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	// fail fast if the database is down
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	repo := repository.NewCodeRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	defer func() {
		_ = redisClient.Close()
	}()

	var seq idgen.Sequence
	switch cfg.SequenceBackend {
	case config.BackendPostgres:
		pg := idgen.NewPostgresSequence(db)
		if err := pg.Init(ctx); err != nil {
			return err
		}
		seq = pg
	case config.BackendSnowflake:
		sf, err := idgen.NewSnowflakeSequence(uint64(cfg.NodeID), time.Time{})
		if err != nil {
			return err
		}
		seq = sf
	case config.BackendMemory:
		slog.Warn("memory sequences do not survive restarts", "SEQUENCE_BACKEND", cfg.SequenceBackend)
		seq = idgen.NewMemorySequence()
	default:
		seq = idgen.NewRedisSequence(redisClient, "flowcode:seq")
	}

	svc := service.NewCodeService(repo, idgen.NewCodeGenerator(seq, formatter), formatter, service.Options{
		DefaultLength: cfg.CodeLength,
		MinLength:     cfg.MinLength(formatter),
		MaxLength:     cfg.MaxLength,
		CacheSize:     cfg.CacheSize,
		L2:            cache.NewRedisCache(redisClient, "flowcode:code", cfg.CacheTTL),
	})

	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	handler.NewCodeHandler(svc).Register(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr, "sequence_backend", cfg.SequenceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
