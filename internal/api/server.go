// Package api is the HTTP surface: one generation endpoint per section,
// idea CRUD, whole-pipeline runs with optional SSE progress, exports, and
// the active-idea session.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/workspace"
)

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// errBadRequest marks request errors the client can correct.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// Server serves the HTTP API.
type Server struct {
	gen      generate.Generator
	orch     *orchestrator.Orchestrator
	ideas    *workspace.Manager
	session  *workspace.Session
	log      *slog.Logger
	now      func() time.Time
	defaults plan.Settings
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithClock overrides the time source for new ideas and exports.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithDefaults sets the generation settings of newly created ideas.
func WithDefaults(settings plan.Settings) Option {
	return func(s *Server) {
		s.defaults = settings.WithDefaults()
	}
}

// NewServer creates a Server. gen backs the per-section endpoints; orch
// runs whole-idea generation against handles from m.
func NewServer(gen generate.Generator, orch *orchestrator.Orchestrator, m *workspace.Manager, opts ...Option) *Server {
	s := &Server{
		gen:      gen,
		orch:     orch,
		ideas:    m,
		session:  workspace.NewSession(m),
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		defaults: plan.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the active-idea session.
func (s *Server) Session() *workspace.Session {
	return s.session
}

// Handler registers every route on a new mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /generate/{slug}", s.handleGenerate)
	mux.HandleFunc("GET /templates", s.handleTemplates)

	mux.HandleFunc("GET /ideas", s.handleListIdeas)
	mux.HandleFunc("POST /ideas", s.handleCreateIdea)
	mux.HandleFunc("GET /ideas/{id}", s.handleGetIdea)
	mux.HandleFunc("PATCH /ideas/{id}", s.handleUpdateIdea)
	mux.HandleFunc("DELETE /ideas/{id}", s.handleDeleteIdea)
	mux.HandleFunc("GET /ideas/{id}/status", s.handleIdeaStatus)
	mux.HandleFunc("GET /ideas/{id}/export", s.handleExport)
	mux.HandleFunc("POST /ideas/{id}/generate", s.handleGenerateAll)
	mux.HandleFunc("PUT /ideas/{id}/sections/{key}", s.handleEditSection)
	mux.HandleFunc("POST /ideas/{id}/sections/{key}/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /ideas/{id}/sections/{key}/lock", s.handleLock)

	mux.HandleFunc("GET /session", s.handleGetSession)
	mux.HandleFunc("PUT /session", s.handleSwitchSession)

	return mux
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

// Envelope is the body of every response. Kind names the generation
// failure kind when one applies.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Kind    string          `json:"kind,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		writeError(w, fmt.Errorf("api: encode response: %w", err))
		return
	}
	writeEnvelope(w, status, Envelope{Success: true, Data: raw})
}

func writeError(w http.ResponseWriter, err error) {
	env := Envelope{Error: err.Error()}
	if kind := generate.KindOf(err); kind != nil {
		env.Kind = kind.Error()
	}
	writeEnvelope(w, statusFor(err), env)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, generate.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ideas.ErrNotFound), errors.Is(err, errNoSession):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrBusy), errors.Is(err, orchestrator.ErrSectionLocked), errors.Is(err, errRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}
