package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/layer-3/addrauth/adapters/events"
	"github.com/layer-3/addrauth/adapters/store"
	"github.com/layer-3/addrauth/adapters/verifier"
	"github.com/layer-3/addrauth/config"
	"github.com/layer-3/addrauth/ports"
	"github.com/layer-3/addrauth/service"
	transport "github.com/layer-3/addrauth/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "addrauth"))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var challengeStore ports.ChallengeStore
	var eventPub ports.EventPublisher

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return err
		}
		defer publisher.Close()

		eventPub = events.NewWatermillPublisher(publisher, cfg.EventsTopic)
		if cfg.SingleUse {
			challengeStore = store.NewRedisStore(redisClient)
		}
	} else if cfg.SingleUse {
		logger.Warn("REDIS_URL not set, single-use challenges are tracked in memory")
		challengeStore = store.NewMemoryStore()
	}

	authService, err := service.New(service.Config{
		VerifySignature:    verifier.NewEthVerifier(),
		JWTSecret:          cfg.JWTSecret,
		ChallengeExpiresIn: cfg.ChallengeExpiresIn,
		JWTExpiresIn:       cfg.JWTExpiresIn,
		Store:              challengeStore,
		Events:             eventPub,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	router := transport.SetupRouter(authService, logger)

	var handler http.Handler = router
	if len(cfg.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}).Handler(router)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr, "single_use", challengeStore != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
