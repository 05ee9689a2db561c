package anybot

import (
	"log/slog"

	"github.com/go-telegram/bot"

	"anybot/internal/gateway/vk"
)

type options struct {
	logger   *slog.Logger
	groupID  int
	photos   vk.PhotoFetcher
	telegram []bot.Option
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGroupID sets the VK community id so Start skips the groups.getById lookup.
func WithGroupID(groupID int) Option {
	return func(o *options) {
		o.groupID = groupID
	}
}

// WithPhotoFetcher replaces the fetcher VK uses for photo URLs and paths.
func WithPhotoFetcher(f vk.PhotoFetcher) Option {
	return func(o *options) {
		o.photos = f
	}
}

// WithTelegramOptions passes options through to bot.New.
func WithTelegramOptions(opts ...bot.Option) Option {
	return func(o *options) {
		o.telegram = append(o.telegram, opts...)
	}
}
