package vk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sync"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"

	"anybot/internal/core"
)

// poller is the part of *longpoll.LongPoll the gateway drives.
type poller interface {
	MessageNew(f func(context.Context, events.MessageNewObject))
	RunWithContext(ctx context.Context) error
}

type route struct {
	pattern *regexp.Regexp
	handler core.Handler
}

type Gateway struct {
	api       messenger
	photos    PhotoFetcher
	logger    *slog.Logger
	newPoller func() (poller, error)

	mu     sync.Mutex
	routes []route
	cancel context.CancelFunc
}

// New builds the VK client without touching the network. A zero groupID makes
// Start look the community up from the token.
func New(token string, groupID int, photos PhotoFetcher, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	vk := api.NewVK(token)
	return &Gateway{
		api:    vk,
		photos: photos,
		logger: logger,
		newPoller: func() (poller, error) {
			var (
				lp  *longpoll.LongPoll
				err error
			)
			if groupID != 0 {
				lp, err = longpoll.NewLongPoll(vk, groupID)
			} else {
				lp, err = longpoll.NewLongPollCommunity(vk)
			}
			if err != nil {
				return nil, err
			}
			return lp, nil
		},
	}
}

func (g *Gateway) Source() core.Source {
	return core.SourceVK
}

// Hear adds a route tested against every new message. Routes run in the
// order they were added; messages without text never match.
func (g *Gateway) Hear(pattern *regexp.Regexp, handler core.Handler) {
	g.mu.Lock()
	g.routes = append(g.routes, route{pattern: pattern, handler: handler})
	g.mu.Unlock()
}

// Start polls until ctx is done or Stop is called; both end it with a nil
// error. Failures to reach the long poll server are returned.
func (g *Gateway) Start(ctx context.Context) error {
	lp, err := g.newPoller()
	if err != nil {
		return fmt.Errorf("init vk longpoll: %w", err)
	}
	lp.MessageNew(g.dispatch)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.mu.Lock()
	g.cancel = cancel
	g.mu.Unlock()

	g.logger.Info("vk gateway started")
	err = lp.RunWithContext(runCtx)

	g.mu.Lock()
	g.cancel = nil
	g.mu.Unlock()

	if err != nil && !(errors.Is(err, context.Canceled) && runCtx.Err() != nil) {
		return fmt.Errorf("vk longpoll: %w", err)
	}
	g.logger.Info("vk gateway stopped")
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

func (g *Gateway) dispatch(ctx context.Context, event events.MessageNewObject) {
	text := event.Message.Text
	if text == "" {
		return
	}

	g.mu.Lock()
	routes := slices.Clone(g.routes)
	g.mu.Unlock()

	for _, r := range routes {
		if !r.pattern.MatchString(text) {
			continue
		}
		core.Invoke(ctx, g.logger, r.handler, newContext(event, g.api, g.photos))
	}
}
