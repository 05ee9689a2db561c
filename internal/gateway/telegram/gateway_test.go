package telegram

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anybot/internal/core"
)

func newTestGateway(t *testing.T, api *fakeAPI) *Gateway {
	t.Helper()
	g, err := New("123456:TEST", nil)
	require.NoError(t, err)
	g.api = api
	return g
}

func TestHearRoutesMatchingText(t *testing.T) {
	api := &fakeAPI{}
	g := newTestGateway(t, api)

	got := make(chan *core.Context, 4)
	g.Hear(regexp.MustCompile(`(?i)hello`), func(ctx context.Context, c *core.Context) error {
		_, err := c.Reply(ctx, "Hello!")
		got <- c
		return err
	})

	g.bot.ProcessUpdate(context.Background(), helloUpdate())

	select {
	case c := <-got:
		assert.Equal(t, core.SourceTelegram, c.Source)
		assert.Equal(t, "hello world", c.Text)
		assert.Equal(t, int64(42), c.From.ID)
		assert.Equal(t, int64(100), c.ChatID)
		assert.True(t, c.Date.Equal(time.Unix(1700000000, 0)))
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	require.Len(t, api.messages, 1)
	assert.Equal(t, int64(100), api.messages[0].ChatID)
	assert.Equal(t, 7, api.messages[0].ReplyParameters.MessageID)
}

func TestHearIgnoresOtherText(t *testing.T) {
	g := newTestGateway(t, &fakeAPI{})

	got := make(chan *core.Context, 1)
	g.Hear(regexp.MustCompile(`(?i)hello`), func(_ context.Context, c *core.Context) error {
		got <- c
		return nil
	})

	g.bot.ProcessUpdate(context.Background(), &models.Update{
		Message: &models.Message{ID: 1, Text: "goodbye", Chat: models.Chat{ID: 1}},
	})

	select {
	case <-got:
		t.Fatal("handler invoked for non-matching text")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopWithoutStart(t *testing.T) {
	g := newTestGateway(t, &fakeAPI{})
	assert.NoError(t, g.Stop(context.Background()))
	assert.Equal(t, core.SourceTelegram, g.Source())
}
