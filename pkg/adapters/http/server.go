// Package http exposes the engine over a JSON API so browser and
// remote frontends can drive playback without embedding the library.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sawane/shiori"
	"github.com/sawane/shiori/internal/logging"
	"github.com/sawane/shiori/pkg/ports"
	"github.com/sawane/shiori/pkg/session"
	"github.com/sawane/shiori/pkg/state"
)

// Server hosts playback sessions over HTTP. Each session owns one
// engine; access to a session is serialized so concurrent requests
// cannot interleave frames.
type Server struct {
	loader     ports.DocumentLoader
	saves      *session.Manager
	logger     *slog.Logger
	engineOpts []shiori.Option

	mu       sync.Mutex
	sessions map[string]*playSession

	metrics *metrics
}

type playSession struct {
	mu  sync.Mutex
	eng *shiori.Engine
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSaves enables save and restore endpoints backed by the manager.
func WithSaves(m *session.Manager) Option {
	return func(s *Server) {
		s.saves = m
	}
}

// WithEngineOptions forwards options to every engine the server creates.
func WithEngineOptions(opts ...shiori.Option) Option {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// NewServer creates a Server that starts sessions from the loader's
// document.
func NewServer(loader ports.DocumentLoader, opts ...Option) *Server {
	s := &Server{
		loader:   loader,
		sessions: make(map[string]*playSession),
		logger:   logging.NewNop(),
		metrics:  newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/advance", s.advance)
			r.Post("/choice", s.choose)
			r.Get("/history", s.getHistory)
			r.Post("/save", s.save)
			r.Post("/restore", s.restore)
		})
	})

	if s.saves != nil {
		r.Get("/saves", s.listSaves)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type metrics struct {
	registry       *prometheus.Registry
	sessionsActive prometheus.Gauge
	framesTotal    prometheus.Counter
	choicesTotal   prometheus.Counter
	savesTotal     prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shiori_sessions_active",
			Help: "Number of playback sessions currently held in memory.",
		}),
		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shiori_frames_total",
			Help: "Total advance frames processed across all sessions.",
		}),
		choicesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shiori_choices_total",
			Help: "Total choice selections across all sessions.",
		}),
		savesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shiori_saves_total",
			Help: "Total snapshots persisted through the save endpoint.",
		}),
	}
}

// -- Handlers --

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createSessionResponse struct {
	SessionID string      `json:"session_id"`
	Document  string      `json:"document"`
	Event     state.Event `json:"event"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	eng, err := shiori.Load(r.Context(), s.loader, s.engineOpts...)
	if err != nil {
		var verr *shiori.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.Error("failed to start session", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := eng.Start(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &playSession{eng: eng}
	s.mu.Unlock()
	s.metrics.sessionsActive.Inc()

	s.logger.Info("session created", "session_id", id, "document", eng.Document().ID)
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: id,
		Document:  eng.Document().ID,
		Event:     eng.CurrentState(),
	})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *playSession {
	id := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	ps := s.sessions[id]
	s.mu.Unlock()
	if ps == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session %q", id))
		return nil
	}
	return ps
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ps := s.lookup(w, r)
	if ps == nil {
		return
	}
	ps.mu.Lock()
	ev := ps.eng.CurrentState()
	ps.mu.Unlock()
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session %q", id))
		return
	}
	s.metrics.sessionsActive.Dec()
	w.WriteHeader(http.StatusNoContent)
}

type advanceRequest struct {
	DT    float64 `json:"dt"`
	Input bool    `json:"input"`
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	ps := s.lookup(w, r)
	if ps == nil {
		return
	}

	var body advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if body.DT < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("dt cannot be negative"))
		return
	}

	ps.mu.Lock()
	ev, err := ps.eng.Advance(body.DT, body.Input)
	ps.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.metrics.framesTotal.Inc()
	writeJSON(w, http.StatusOK, ev)
}

type choiceRequest struct {
	Index int `json:"index"`
}

func (s *Server) choose(w http.ResponseWriter, r *http.Request) {
	ps := s.lookup(w, r)
	if ps == nil {
		return
	}

	var body choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	ps.mu.Lock()
	ev, err := ps.eng.SelectChoice(body.Index)
	ps.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.metrics.choicesTotal.Inc()
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	ps := s.lookup(w, r)
	if ps == nil {
		return
	}
	ps.mu.Lock()
	entries := ps.eng.History()
	ps.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]state.HistoryEntry{"history": entries})
}

type saveRequest struct {
	Slot      string `json:"slot"`
	Thumbnail string `json:"thumbnail"`
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	if s.saves == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("no save store configured"))
		return
	}
	ps := s.lookup(w, r)
	if ps == nil {
		return
	}

	var body saveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if body.Slot == "" {
		body.Slot = session.NewSlotID()
	}

	ps.mu.Lock()
	snap := ps.eng.Snapshot(body.Thumbnail)
	ps.mu.Unlock()

	if err := s.saves.Save(r.Context(), body.Slot, snap); err != nil {
		s.logger.Error("save failed", "slot", body.Slot, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.savesTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"slot": body.Slot})
}

type restoreRequest struct {
	Slot string `json:"slot"`
}

func (s *Server) restore(w http.ResponseWriter, r *http.Request) {
	if s.saves == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("no save store configured"))
		return
	}
	ps := s.lookup(w, r)
	if ps == nil {
		return
	}

	var body restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	snap, err := s.saves.Load(r.Context(), body.Slot)
	if err != nil {
		if errors.Is(err, state.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	ps.mu.Lock()
	ev, err := ps.eng.Restore(snap)
	ps.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) listSaves(w http.ResponseWriter, r *http.Request) {
	infos, err := s.saves.Slots(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]session.SlotInfo{"saves": infos})
}

// -- Helpers --

// writeEngineError maps engine contract errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrNotStarted),
		errors.Is(err, state.ErrNoPendingChoice):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, state.ErrChoiceIndex):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, state.ErrDocumentMismatch),
		errors.Is(err, state.ErrSnapshotFormat):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
