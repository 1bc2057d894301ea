package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playwatch/platform/internal/infra"
	"github.com/playwatch/platform/internal/monitor"
	"github.com/playwatch/platform/internal/notify"
	"github.com/playwatch/platform/internal/provider"
	"github.com/playwatch/platform/internal/repository"
	"github.com/playwatch/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("sweeper failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	interval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("parse sweep interval: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("sweeper connected to postgres")

	events := infra.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer events.Close()

	steamClient := provider.NewSteamClientWithBaseURL(cfg.SteamBaseURL, cfg.SteamAPIKey, logger)
	dispatchers := []notify.Dispatcher{
		notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom),
		notify.NewDiscordWebhook(),
	}

	roster := service.NewRosterStore(pool,
		repository.NewChildRepository(), repository.NewUserRepository())
	evaluator := monitor.NewEvaluator(steamClient, dispatchers, roster, events, logger)
	sweeper := monitor.NewSweeper(roster, evaluator, interval, logger)

	sweeper.Start(ctx)

	logger.Info("sweeper shutting down")
	return nil
}
