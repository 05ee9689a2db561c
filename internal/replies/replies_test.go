package replies

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anybot/internal/core"
)

type replyRecorder struct {
	replies []string
	err     error
}

func (r *replyRecorder) Send(context.Context, int64, string) (core.Response, error) {
	return core.Response{}, nil
}

func (r *replyRecorder) Reply(_ context.Context, text string) (core.Response, error) {
	r.replies = append(r.replies, text)
	return core.Response{MessageID: 1}, r.err
}

func (r *replyRecorder) SendPhoto(context.Context, int64, string, string) (core.Response, error) {
	return core.Response{}, nil
}

func (r *replyRecorder) ReplyPhoto(context.Context, string, string) (core.Response, error) {
	return core.Response{}, nil
}

type hearRecorder struct {
	patterns []*regexp.Regexp
}

func (h *hearRecorder) Hear(p *regexp.Regexp, _ core.Handler) {
	h.patterns = append(h.patterns, p)
}

func TestHelloReplies(t *testing.T) {
	r := NewResponder()
	out := &replyRecorder{}

	idle, err := json.Marshal(r.Stats())
	require.NoError(t, err)
	assert.NotContains(t, string(idle), "last_seen")

	require.NoError(t, r.Hello(context.Background(), core.NewContext(core.SourceTelegram, out)))
	require.NoError(t, r.Hello(context.Background(), core.NewContext(core.SourceVK, out)))

	assert.Equal(t, []string{"Hello!", "Hello!"}, out.replies)
	stats := r.Stats()
	assert.Equal(t, 1, stats.Handled[core.SourceTelegram])
	assert.Equal(t, 1, stats.Handled[core.SourceVK])
	require.NotNil(t, stats.LastSeen)
	assert.False(t, stats.LastSeen.IsZero())

	busy, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(busy), `"last_seen":`)
}

func TestStatusReportsCounts(t *testing.T) {
	r := NewResponder()
	out := &replyRecorder{}

	require.NoError(t, r.Hello(context.Background(), core.NewContext(core.SourceVK, out)))
	require.NoError(t, r.Status(context.Background(), core.NewContext(core.SourceTelegram, out)))

	require.Len(t, out.replies, 2)
	assert.Contains(t, out.replies[1], "source=telegram")
	assert.Contains(t, out.replies[1], "telegram=1 vk=1 failed=0")
}

func TestFailuresAreCountedAndReturned(t *testing.T) {
	r := NewResponder()
	out := &replyRecorder{err: errors.New("blocked")}

	err := r.Hello(context.Background(), core.NewContext(core.SourceVK, out))
	require.EqualError(t, err, "blocked")
	assert.Equal(t, 1, r.Stats().Failed)
}

func TestRegisterAndPatterns(t *testing.T) {
	a, b := &hearRecorder{}, &hearRecorder{}
	NewResponder().Register(a, b)
	assert.Len(t, a.patterns, 2)
	assert.Len(t, b.patterns, 2)

	assert.True(t, HelloPattern.MatchString("say HELLO now"))
	assert.False(t, HelloPattern.MatchString("goodbye"))
	assert.True(t, StatusPattern.MatchString("/status"))
	assert.True(t, StatusPattern.MatchString("/STATUS please"))
	assert.False(t, StatusPattern.MatchString("what is /status"))
}
