package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"anybot/internal/anybot"
	"anybot/internal/config"
	"anybot/internal/health"
	"anybot/internal/replies"
	"anybot/internal/tools"
	"anybot/internal/version"
)

type runner struct {
	name string
	bot  *anybot.Bot
}

func newRunCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start every enabled bot and serve health endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", *configPath, err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func run(parent context.Context, cfg config.Config) error {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("starting service", "app", version.AppName, "version", version.Version)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runners, err := buildRunners(cfg, logger)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	if len(runners) == 0 {
		logger.Warn("no bot enabled; set telegram.enabled or vk.enabled in the config")
	}

	responder := replies.NewResponder()
	for _, r := range runners {
		responder.Register(r.bot)
	}

	tracker := newStatusTracker(version.AppName, version.Version, runners, responder)

	var wg sync.WaitGroup

	if cfg.Health.Enabled {
		healthServer := health.NewServer(
			cfg.Health.Host,
			cfg.Health.Port,
			tracker,
			logger.With("component", "health"),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := healthServer.Start(ctx); err != nil {
				logger.Error("health server stopped with error", "error", err)
			}
		}()
	}

	for _, r := range runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.markRunning(r.name)

			err := r.bot.Start(ctx)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			tracker.markStopped(r.name, err)
			if err != nil {
				logger.Error("bot stopped with error", "bot", r.name, "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received", "app", version.AppName)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	for _, r := range runners {
		if err := r.bot.Stop(stopCtx); err != nil {
			logger.Warn("bot stop failed", "bot", r.name, "error", err)
		}
	}

	wg.Wait()
	logger.Info("service stopped", "app", version.AppName)
	return nil
}

func buildRunners(cfg config.Config, logger *slog.Logger) ([]runner, error) {
	runners := make([]runner, 0, 2)

	if cfg.Telegram.Enabled {
		bot, err := anybot.NewTelegram(cfg.Telegram.Token,
			anybot.WithLogger(logger.With("gateway", "telegram")),
		)
		if err != nil {
			return nil, err
		}
		runners = append(runners, runner{name: "telegram", bot: bot})
	}

	if cfg.VK.Enabled {
		vkLogger := logger.With("gateway", "vk")
		photos := tools.NewPhotoFetcher(
			vkLogger.With("component", "photo_fetch"),
			time.Duration(cfg.Photos.TimeoutSeconds)*time.Second,
			cfg.Photos.MaxBytes,
		)
		bot, err := anybot.NewVK(cfg.VK.Token,
			anybot.WithLogger(vkLogger),
			anybot.WithGroupID(cfg.VK.GroupID),
			anybot.WithPhotoFetcher(photos),
		)
		if err != nil {
			return nil, err
		}
		runners = append(runners, runner{name: "vk", bot: bot})
	}

	return runners, nil
}

func newLogger(level string, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "WARN", "WARNING":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
