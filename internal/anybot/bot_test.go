package anybot

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anybot/internal/core"
	"anybot/internal/gateway/telegram"
	"anybot/internal/gateway/vk"
)

type fakePlatform struct {
	patterns []string
	started  int
	stopped  int
	startErr error
}

func (f *fakePlatform) Source() core.Source { return core.SourceVK }

func (f *fakePlatform) Hear(pattern *regexp.Regexp, _ core.Handler) {
	f.patterns = append(f.patterns, pattern.String())
}

func (f *fakePlatform) Start(context.Context) error {
	f.started++
	return f.startErr
}

func (f *fakePlatform) Stop(context.Context) error {
	f.stopped++
	return nil
}

func noop(context.Context, *core.Context) error { return nil }

func TestBotDelegatesToPlatform(t *testing.T) {
	p := &fakePlatform{startErr: errors.New("auth failed")}
	b := New(p)

	b.Hear(regexp.MustCompile(`(?i)hello`), noop)
	assert.Equal(t, []string{`(?i)hello`}, p.patterns)

	err := b.Start(context.Background())
	require.EqualError(t, err, "auth failed")
	require.NoError(t, b.Stop(context.Background()))

	assert.Equal(t, 1, p.started)
	assert.Equal(t, 1, p.stopped)
	assert.Equal(t, core.SourceVK, b.Source())
	assert.Same(t, p, b.Platform())
}

func TestHearRejectsNil(t *testing.T) {
	b := New(&fakePlatform{})
	assert.Panics(t, func() { b.Hear(nil, noop) })
	assert.Panics(t, func() { b.Hear(regexp.MustCompile(`x`), nil) })
	assert.Panics(t, func() { New(nil) })
}

func TestConstructors(t *testing.T) {
	tg, err := NewTelegram("123456:TEST")
	require.NoError(t, err)
	assert.Equal(t, core.SourceTelegram, tg.Source())
	assert.IsType(t, &telegram.Gateway{}, tg.Platform())

	_, err = NewTelegram("123456:TEST", WithTelegramOptions(bot.WithServerURL("http://127.0.0.1:1")))
	require.NoError(t, err)

	v, err := NewVK("vk-token", WithGroupID(42))
	require.NoError(t, err)
	assert.Equal(t, core.SourceVK, v.Source())
	assert.IsType(t, &vk.Gateway{}, v.Platform())
}
