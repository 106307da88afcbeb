package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/cryptobot/internal/analysis"
	"github.com/Proton-105/cryptobot/internal/bot"
	apperrors "github.com/Proton-105/cryptobot/internal/errors"
	"github.com/Proton-105/cryptobot/internal/health"
	"github.com/Proton-105/cryptobot/internal/i18n"
	"github.com/Proton-105/cryptobot/internal/idempotency"
	"github.com/Proton-105/cryptobot/internal/lifecycle"
	"github.com/Proton-105/cryptobot/internal/middleware"
	"github.com/Proton-105/cryptobot/internal/price"
	"github.com/Proton-105/cryptobot/pkg/config"
	"github.com/Proton-105/cryptobot/pkg/graceful"
	"github.com/Proton-105/cryptobot/pkg/logger"
	"github.com/Proton-105/cryptobot/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cryptobot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Sentry.Enabled() {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	appLog := logger.New(cfg.Log, cfg.Sentry.Enabled())
	defer func() { _ = appLog.Close() }()
	log := appLog.Logger

	log.Info("starting crypto bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Telegram.Mode),
		slog.String("language", cfg.Bot.Language),
		slog.Bool("redis", cfg.Redis.Enabled()),
	)

	if config.Watch(v, log, func(next *config.Config) {
		appLog.SetLevel(next.Log.Level)
	}) {
		log.Info("watching config file for log level changes", slog.String("file", v.ConfigFileUsed()))
	}

	catalog, err := i18n.Load(cfg.Bot.Language)
	if err != nil {
		return err
	}
	translator := catalog.Translator(cfg.Bot.Language)

	probes := lifecycle.NewProbes()
	shutdown := lifecycle.NewShutdown(log, probes)
	checker := health.NewChecker(log)

	var guard *idempotency.Guard
	if cfg.Redis.Enabled() {
		rc, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		client := redis.NewMetricsClient(rc)
		shutdown.Register("redis", func(context.Context) error { return client.Close() })

		guard = idempotency.NewGuard(idempotency.NewRedisStore(client, log), cfg.Redis.UpdateTTL, log)
		checker.AddCheck("redis", health.NewRedisChecker(client))
	}

	b, err := bot.New(cfg.Telegram, log, bot.Deps{
		Prices: price.NewClient(price.Config{
			BaseURL: cfg.CoinGecko.BaseURL,
			Timeout: cfg.CoinGecko.Timeout,
		}, log),
		Analyst: analysis.NewClient(analysis.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		}, log),
		Translator: translator,
		ErrHandler: apperrors.NewHandler(log, translator, cfg.Sentry.Enabled()),
		Guard:      guard,
	})
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		b.Start()
	}()
	shutdown.Register("telegram", func(ctx context.Context) error {
		b.Stop()
		select {
		case <-botDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	httpErr := make(chan error, 1)
	httpCtx, stopHTTP := context.WithCancel(context.Background())
	defer stopHTTP()
	if cfg.Metrics.Enabled {
		srv := graceful.NewServer(log, cfg.Metrics.Addr, newMux(log, checker, probes), cfg.Metrics.ShutdownTimeout)
		go func() { httpErr <- srv.ListenAndServe(httpCtx) }()
		shutdown.Register("http", func(context.Context) error {
			stopHTTP()
			return nil
		})
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-httpErr:
		if err != nil {
			log.Error("metrics server stopped", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Metrics.ShutdownTimeout+5*time.Second)
	defer cancel()

	err = shutdown.Execute(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn("shutdown timed out")
	}
	return err
}

func newMux(log *slog.Logger, checker *health.Checker, probes *lifecycle.Probes) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.Handler())
	mux.Handle("/livez", probes.LivenessHandler())
	mux.Handle("/readyz", probes.ReadinessHandler())

	return logger.Middleware(middleware.New(log)(mux))
}
