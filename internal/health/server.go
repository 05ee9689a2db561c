package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// BotState is what the service knows about one running platform.
type BotState struct {
	Running   bool      `json:"running"`
	Handled   int       `json:"handled"`
	LastError string    `json:"last_error,omitempty"`
	Since     time.Time `json:"since"`
}

type Status struct {
	App       string              `json:"app"`
	Version   string              `json:"version"`
	Ready     bool                `json:"ready"`
	StartedAt time.Time           `json:"started_at"`
	Uptime    int                 `json:"uptime_seconds"`
	Bots      map[string]BotState `json:"bots"`
	Replies   any                 `json:"replies,omitempty"`
}

// Reporter feeds the endpoints. A nil Reporter reads as ready with no bots.
type Reporter interface {
	Ready() bool
	Status() Status
}

type Server struct {
	addr     string
	logger   *slog.Logger
	reporter Reporter
	router   chi.Router
}

func NewServer(host string, port int, reporter Reporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:     net.JoinHostPort(host, fmt.Sprint(port)),
		logger:   logger,
		reporter: reporter,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", s.handleReady)
	r.Get("/status", s.handleStatus)
	r.Get("/bots/{name}", s.handleBot)
	s.router = r
	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is done, then drains for up to five seconds.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("health server listen: %w", err)
	}

	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})
	defer stop()

	s.logger.Info("health server started", "addr", ln.Addr().String())
	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	s.logger.Info("health server stopped", "addr", ln.Addr().String())
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.reporter != nil && !s.reporter.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleBot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	state, ok := s.status().Bots[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown bot " + name})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) status() Status {
	if s.reporter == nil {
		return Status{Ready: true, Bots: map[string]BotState{}}
	}
	return s.reporter.Status()
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
