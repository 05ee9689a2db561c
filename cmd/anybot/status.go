package main

import (
	"sync"
	"time"

	"anybot/internal/core"
	"anybot/internal/health"
	"anybot/internal/replies"
)

// statusTracker follows each runner's lifecycle and serves it to the health
// endpoints, joined with the responder's per-platform counters.
type statusTracker struct {
	app       string
	version   string
	since     time.Time
	responder *replies.Responder

	mu   sync.RWMutex
	bots map[string]health.BotState
}

var _ health.Reporter = (*statusTracker)(nil)

func newStatusTracker(app string, appVersion string, runners []runner, responder *replies.Responder) *statusTracker {
	now := time.Now()
	bots := make(map[string]health.BotState, len(runners))
	for _, r := range runners {
		bots[r.name] = health.BotState{Since: now}
	}
	return &statusTracker{
		app:       app,
		version:   appVersion,
		since:     now,
		responder: responder,
		bots:      bots,
	}
}

func (s *statusTracker) markRunning(name string) {
	s.mu.Lock()
	s.bots[name] = health.BotState{Running: true, Since: time.Now()}
	s.mu.Unlock()
}

// markStopped keeps the previous error when the runner ends cleanly.
func (s *statusTracker) markStopped(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.bots[name]
	state.Running = false
	state.Since = time.Now()
	if err != nil {
		state.LastError = err.Error()
	}
	s.bots[name] = state
}

// Ready holds once any bot runs, or when none is configured.
func (s *statusTracker) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.bots) == 0 {
		return true
	}
	for _, state := range s.bots {
		if state.Running {
			return true
		}
	}
	return false
}

func (s *statusTracker) Status() health.Status {
	var stats *replies.Stats
	if s.responder != nil {
		st := s.responder.Stats()
		stats = &st
	}

	s.mu.RLock()
	bots := make(map[string]health.BotState, len(s.bots))
	for name, state := range s.bots {
		if stats != nil {
			state.Handled = stats.Handled[core.Source(name)]
		}
		bots[name] = state
	}
	s.mu.RUnlock()

	status := health.Status{
		App:       s.app,
		Version:   s.version,
		Ready:     s.Ready(),
		StartedAt: s.since,
		Uptime:    int(time.Since(s.since).Seconds()),
		Bots:      bots,
	}
	if stats != nil {
		status.Replies = stats
	}
	return status
}
