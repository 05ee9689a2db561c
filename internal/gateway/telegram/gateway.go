package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"anybot/internal/core"
)

type Gateway struct {
	bot    *bot.Bot
	api    api
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates the native client without any network call; the token is
// checked by getMe in Start. Extra options (server URL, HTTP client) go
// straight to bot.New.
func New(token string, logger *slog.Logger, opts ...bot.Option) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gateway := &Gateway{
		logger: logger,
	}

	options := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithErrorsHandler(func(err error) {
			gateway.logger.Error("telegram polling error", "error", err)
		}),
	}
	options = append(options, opts...)

	telegramBot, err := bot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	gateway.bot = telegramBot
	gateway.api = telegramBot

	return gateway, nil
}

func (g *Gateway) Source() core.Source {
	return core.SourceTelegram
}

// Hear hands the pattern to the SDK's own regexp matcher for message text.
func (g *Gateway) Hear(pattern *regexp.Regexp, handler core.Handler) {
	g.bot.RegisterHandlerRegexp(bot.HandlerTypeMessageText, pattern, g.wrap(handler))
}

// Start checks the token with getMe and then long-polls until ctx is done or
// Stop is called.
func (g *Gateway) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.mu.Lock()
	g.cancel = cancel
	g.mu.Unlock()

	me, err := g.bot.GetMe(runCtx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}

	g.logger.Info("telegram gateway started", "username", me.Username)
	g.bot.Start(runCtx)
	g.logger.Info("telegram gateway stopped")
	return nil
}

func (g *Gateway) Stop(_ context.Context) error {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

func (g *Gateway) wrap(handler core.Handler) bot.HandlerFunc {
	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		core.Invoke(ctx, g.logger, handler, newContext(update, g.api))
	}
}
