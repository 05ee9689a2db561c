// Package anybot exposes one bot type over either the Telegram or the VK
// client. Handlers registered with Hear receive a core.Context no matter which
// platform delivered the message.
package anybot

import (
	"context"
	"log/slog"
	"regexp"

	"anybot/internal/core"
	"anybot/internal/gateway/telegram"
	"anybot/internal/gateway/vk"
	"anybot/internal/tools"
)

// Platform is implemented by each gateway. A new platform only has to
// satisfy it to be usable through Bot.
type Platform interface {
	Source() core.Source
	Hear(pattern *regexp.Regexp, handler core.Handler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var (
	_ Platform = (*telegram.Gateway)(nil)
	_ Platform = (*vk.Gateway)(nil)
)

type Bot struct {
	platform Platform
}

func New(platform Platform) *Bot {
	if platform == nil {
		panic("anybot: nil platform")
	}
	return &Bot{platform: platform}
}

func NewTelegram(token string, opts ...Option) (*Bot, error) {
	o := buildOptions(opts)
	gateway, err := telegram.New(token, o.logger, o.telegram...)
	if err != nil {
		return nil, err
	}
	return New(gateway), nil
}

func NewVK(token string, opts ...Option) (*Bot, error) {
	o := buildOptions(opts)
	photos := o.photos
	if photos == nil {
		photos = tools.NewPhotoFetcher(o.logger.With("component", "photo_fetch"), 0, 0)
	}
	return New(vk.New(token, o.groupID, photos, o.logger)), nil
}

func (b *Bot) Source() core.Source {
	return b.platform.Source()
}

// Hear runs handler for every incoming text message matching pattern.
// Matching is partial, as with regexp.MatchString.
func (b *Bot) Hear(pattern *regexp.Regexp, handler core.Handler) {
	if pattern == nil {
		panic("anybot: Hear with nil pattern")
	}
	if handler == nil {
		panic("anybot: Hear with nil handler")
	}
	b.platform.Hear(pattern, handler)
}

// Start blocks until ctx is cancelled, Stop is called, or the platform fails.
func (b *Bot) Start(ctx context.Context) error {
	return b.platform.Start(ctx)
}

func (b *Bot) Stop(ctx context.Context) error {
	return b.platform.Stop(ctx)
}

// Platform returns the gateway behind the bot.
func (b *Bot) Platform() Platform {
	return b.platform
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
