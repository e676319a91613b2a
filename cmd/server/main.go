package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Chat/internal/adapters/http"
	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/ratelimit"
	"github.com/dkeye/Chat/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chat-server",
		Short:         "Real-time room chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := ossignal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Initialize zerolog global logger early so config.Load can use it.
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			zerolog.SetGlobalLevel(zerolog.InfoLevel)

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				return err
			}
			setupLogger(cfg)

			if err := run(ctx, cfg); err != nil {
				log.Error().Err(err).Msg("server failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "path to config file (default config/config.$CONFIG_ENV.yaml)")
	cmd.Flags().Int("port", 8080, "HTTP listen port")
	return cmd
}

func setupLogger(cfg *config.Config) {
	if cfg.Release() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newLimiter(ctx context.Context, g *errgroup.Group, cfg *config.Config) (ratelimit.Limiter, func() error) {
	rlCfg := ratelimit.Config{Limit: cfg.RateLimit.Messages, Interval: cfg.RateLimit.Interval}
	switch cfg.RateLimit.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
		return ratelimit.NewRedisLimiter(client, rlCfg, "chat:ratelimit:"), client.Close
	case "off":
		return ratelimit.Unlimited{}, nil
	default:
		limiter := ratelimit.NewMemoryLimiter(rlCfg)
		g.Go(func() error {
			limiter.RunSweeper(ctx, time.Minute)
			return nil
		})
		return limiter, nil
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Secret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate cookie secret: %w", err)
		}
		cfg.Secret = string(secret)
		log.Warn().Msg("no secret configured, login sessions will not survive a restart")
	}

	stores, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if stores.Close != nil {
		defer func() {
			if err := stores.Close(); err != nil {
				log.Error().Err(err).Msg("close store")
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)

	limiter, closeLimiter := newLimiter(ctx, g, cfg)
	if closeLimiter != nil {
		defer func() { _ = closeLimiter() }()
	}

	rooms := app.NewRoomManager(ctx, app.RoomManagerOptions{
		Messages:     stores.Messages,
		Policy:       app.SimplePolicy{},
		HistoryLimit: cfg.HistoryLimit,
	})
	coord := orch.New(app.NewRegistry(), rooms)

	r := router.SetupRouter(ctx, cfg, router.Services{
		Signal: signal.NewSignalWSController(coord, limiter, signal.Options{
			ReadLimit:  cfg.ReadLimit,
			PingPeriod: cfg.PingPeriod,
		}),
		Accounts:  app.NewAccounts(stores.Accounts, app.NewPasswordHasher(app.DefaultBcryptCost)),
		History:   app.NewHistory(stores.Messages),
		Favorites: app.NewFavorites(stores.Favorites),
		Rooms:     rooms,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Chat server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
