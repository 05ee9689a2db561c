package replies

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"anybot/internal/core"
)

var (
	HelloPattern  = regexp.MustCompile(`(?i)hello`)
	StatusPattern = regexp.MustCompile(`(?i)^/status\b`)
)

// Registrar is satisfied by *anybot.Bot.
type Registrar interface {
	Hear(pattern *regexp.Regexp, handler core.Handler)
}

type Stats struct {
	Handled  map[core.Source]int `json:"handled"`
	Failed   int                 `json:"failed"`
	LastSeen *time.Time          `json:"last_seen,omitempty"`
}

// Responder holds the demo handlers and counts what they answer.
type Responder struct {
	mu       sync.Mutex
	started  time.Time
	handled  map[core.Source]int
	failed   int
	lastSeen time.Time
}

func NewResponder() *Responder {
	return &Responder{
		started: time.Now(),
		handled: make(map[core.Source]int, 2),
	}
}

func (r *Responder) Register(bots ...Registrar) {
	for _, b := range bots {
		b.Hear(HelloPattern, r.Hello)
		b.Hear(StatusPattern, r.Status)
	}
}

func (r *Responder) Hello(ctx context.Context, c *core.Context) error {
	r.record(c)
	_, err := c.Reply(ctx, "Hello!")
	return r.result(err)
}

func (r *Responder) Status(ctx context.Context, c *core.Context) error {
	r.record(c)
	stats := r.Stats()
	text := fmt.Sprintf("anybot status: source=%s uptime=%s telegram=%d vk=%d failed=%d",
		c.Source,
		time.Since(r.started).Truncate(time.Second),
		stats.Handled[core.SourceTelegram],
		stats.Handled[core.SourceVK],
		stats.Failed,
	)
	_, err := c.Reply(ctx, text)
	return r.result(err)
}

func (r *Responder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		Handled: make(map[core.Source]int, len(r.handled)),
		Failed:  r.failed,
	}
	for k, v := range r.handled {
		stats.Handled[k] = v
	}
	if !r.lastSeen.IsZero() {
		seen := r.lastSeen
		stats.LastSeen = &seen
	}
	return stats
}

func (r *Responder) record(c *core.Context) {
	r.mu.Lock()
	r.handled[c.Source]++
	r.lastSeen = time.Now()
	r.mu.Unlock()
}

func (r *Responder) result(err error) error {
	if err == nil {
		return nil
	}
	r.mu.Lock()
	r.failed++
	r.mu.Unlock()
	return err
}
