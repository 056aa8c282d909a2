package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carebyte/carebot/internal/api"
	"github.com/carebyte/carebot/internal/config"
	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/observability"
	"github.com/carebyte/carebot/internal/session"
)

// parseTrustProxy reads CAREBOT_TRUST_PROXY from the environment.
// Returns false (direct exposure) if unset or invalid.
func parseTrustProxy() bool {
	v := os.Getenv("CAREBOT_TRUST_PROXY")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // SSE streaming needs longer timeout
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

// runServe initializes and starts the HTTP API server.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr, err := parseServeAddr()
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting HTTP API server", "version", AppVersion)

	if cfg.Tracing.Enabled {
		shutdown, setupErr := observability.Setup(ctx, observability.Config{
			Endpoint:    cfg.Tracing.Endpoint,
			Environment: cfg.Tracing.Environment,
			ServiceName: cfg.Tracing.ServiceName,
		}, logger)
		if setupErr != nil {
			return fmt.Errorf("setting up tracing: %w", setupErr)
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer flushCancel()
			if flushErr := shutdown(flushCtx); flushErr != nil {
				logger.Warn("tracing shutdown error", "error", flushErr)
			}
		}()
	}

	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("session store close error", "error", closeErr)
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = store.Ping(pingCtx)
	pingCancel()
	if err != nil {
		return fmt.Errorf("session store unreachable: %w", err)
	}

	runner, err := newRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:     logger,
		Store:      store,
		Runner:     runner,
		Seed:       cfg.AttributeSeed(),
		RateRPS:    cfg.RateRPS,
		RateBurst:  cfg.RateBurst,
		TrustProxy: parseTrustProxy(),
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", addr,
		"api", "/api/v1/*",
		"health", "/health, /ready",
		"session_backend", cfg.SessionBackend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}

// newStore builds the session store named by the configuration.
func newStore(cfg *config.Config, logger log.Logger) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return session.NewStore(session.BackendMemory,
			session.WithTTL(cfg.SessionTTL),
			session.WithLogger(logger),
		)
	case config.SessionBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return session.NewStore(session.BackendRedis,
			session.WithRedisClient(redis.NewClient(opts)),
			session.WithTTL(cfg.SessionTTL),
			session.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.SessionBackend)
	}
}
