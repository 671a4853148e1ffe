// Command authservice serves the authentication API.
//
// Users live in Postgres when DATABASE_URL is set; pending challenges and
// revoked tokens live in Redis when REDIS_ADDR is set. Everything else falls
// back to process memory.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/internal/config"
	"github.com/MrEthical07/authservice/internal/httpapi"
	"github.com/MrEthical07/authservice/internal/logging"
	otelexport "github.com/MrEthical07/authservice/metrics/export/otel"
	"github.com/MrEthical07/authservice/metrics/export/prometheus"
	"github.com/MrEthical07/authservice/secret"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(logging.NewContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	log := logging.NewSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := authservice.New().WithConfig(cfg.Engine()).WithLogger(logger)

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := credential.Migrate(ctx, db); err != nil {
			return err
		}
		builder.WithDatabase(db)
		log.Info(ctx, "credential store: postgres")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		builder.WithRedis(rdb)
		log.Info(ctx, "challenge store and ledger: redis", "addr", cfg.RedisAddr)
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	if seed := cfg.SeedUser; seed != nil {
		err := engine.Signup(ctx, authservice.SignupRequest{
			Email:       seed.Email,
			Password:    secret.New(seed.Password),
			Requires2FA: seed.Requires2FA,
		})
		if err != nil && !errors.Is(err, authservice.ErrConflict) {
			return fmt.Errorf("seed user: %w", err)
		}
	}

	var metrics http.Handler
	if cfg.Metrics {
		metrics = prometheus.NewPrometheusExporter(engine).Handler()

		exp, err := otelexport.NewOTelExporter(otel.Meter("github.com/MrEthical07/authservice"), engine)
		if err != nil {
			return fmt.Errorf("otel exporter: %w", err)
		}
		defer exp.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(engine, httpapi.Options{Logger: log, Metrics: metrics}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
