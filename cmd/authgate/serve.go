package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jamesprial/authgate/internal/abuse"
	"github.com/jamesprial/authgate/internal/auth"
	"github.com/jamesprial/authgate/internal/config"
	"github.com/jamesprial/authgate/internal/identity"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := telemetry.NewLogger(telemetry.LogConfig{
		Env:     cfg.Log.Env,
		Level:   cfg.Log.Level,
		Service: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	logger.Info("configuration loaded", zap.Stringer("config", cfg))

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
	})
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	metrics := telemetry.NewMetrics()

	// Wire auth components
	keys, _, authenticator, err := auth.NewAuthServices(&auth.Config{
		IdentityURL:     cfg.IdP.URL,
		KeyTTL:          cfg.IdP.JWKSCacheTTL,
		FetchTimeout:    cfg.IdP.JWKSFetchTimeout,
		RetryUnknownKey: cfg.IdP.JWKSRetryUnknownKID,
		Audience:        cfg.Token.Audience,
		Algorithms:      cfg.Token.Algorithms,
		Leeway:          cfg.Token.Leeway,
		CookieName:      cfg.Cookie.Name,
		Logger:          logger.Named("auth"),
		Observer:        metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth services: %w", err)
	}

	// A cold key cache is not fatal; the first request fetches again.
	if _, err := keys.Refresh(ctx); err != nil {
		logger.Warn("initial key fetch failed", zap.Error(err))
	}

	// Wire abuse guards
	abuseCfg := &abuse.Config{
		Backend:          cfg.Limiter.Backend,
		RedisPrefix:      cfg.Limiter.RedisPrefix,
		LockoutThreshold: cfg.Lockout.Threshold,
		LockoutWindow:    cfg.Lockout.Window,
		LockoutDuration:  cfg.Lockout.Duration,
		SweepInterval:    cfg.Limiter.SweepInterval,
		Logger:           logger.Named("abuse"),
	}
	if cfg.Limiter.Backend == abuse.BackendRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Limiter.RedisAddr,
			Password: cfg.Limiter.RedisPassword,
			DB:       cfg.Limiter.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, limited routes will answer 503 until it recovers",
				zap.String("addr", cfg.Limiter.RedisAddr), zap.Error(err))
		}
		abuseCfg.Redis = rdb
	}
	guards, err := abuse.NewAbuseServices(abuseCfg)
	if err != nil {
		return fmt.Errorf("failed to create abuse guards: %w", err)
	}

	// Wire the identity provider client
	provider, err := identity.NewGoTrue(identity.GoTrueConfig{
		BaseURL:    cfg.IdP.URL,
		AnonKey:    cfg.IdP.AnonKey,
		ServiceKey: cfg.IdP.ServiceKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create identity provider client: %w", err)
	}

	// Wire transport layer
	server, _, err := transport.NewTransportServices(&transport.Config{
		Settings:      cfg,
		Authenticator: authenticator,
		Limiter:       guards.Limiter,
		Lockout:       guards.Lockout,
		Provider:      provider,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create transport services: %w", err)
	}

	guards.Sweeper.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("version", version))
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := guards.Sweeper.Stop(sctx); err != nil {
			logger.Warn("sweeper stop failed", zap.Error(err))
		}
		return server.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped successfully")
	return nil
}
