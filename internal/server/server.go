package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"woodland/internal/dispatch"
	"woodland/internal/engine"
	"woodland/internal/game"
	"woodland/internal/session"
	"woodland/internal/storage"
)

// Server is the HTTP server.
type Server struct {
	mux      *http.ServeMux
	dispatch *dispatch.Dispatcher
	manager  *session.Manager
	log      logrus.FieldLogger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a server with all routes.
func New(d *dispatch.Dispatcher, manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		dispatch: d,
		manager:  manager,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/factions", s.handleListFactions)
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/actions", s.handleAction)
	s.mux.HandleFunc("GET /api/games/{id}/ws", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleListFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dispatch.Engine().Rules().List())
}

type createGameRequest struct {
	Players  []game.Seat   `json:"players"`
	Settings game.Settings `json:"settings"`
}

type createGameResponse struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	for i := range req.Players {
		req.Players[i].ID = strings.TrimSpace(req.Players[i].ID)
	}
	st, err := s.dispatch.CreateGame(r.Context(), req.Players, req.Settings)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createGameResponse{ID: st.ID, Version: st.Version})
}

type viewResponse struct {
	State        *game.State       `json:"state"`
	ValidActions []game.ActionKind `json:"validActions"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	view, kinds, err := s.dispatch.View(r.Context(), r.PathValue("id"), r.URL.Query().Get("player"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{State: view, ValidActions: kinds})
}

type actionRequest struct {
	PlayerID string      `json:"playerId"`
	Action   game.Action `json:"action"`
}

type actionResponse struct {
	State        *game.State       `json:"state"`
	ValidActions []game.ActionKind `json:"validActions"`
	Result       *engine.Result    `json:"result,omitempty"`
	Duplicate    bool              `json:"duplicate,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	out, err := s.dispatch.Handle(r.Context(), r.PathValue("id"), req.PlayerID, req.Action)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.actionResponse(out, req.PlayerID))
}

func (s *Server) actionResponse(out *dispatch.Outcome, playerID string) actionResponse {
	view := out.Views[playerID]
	resp := actionResponse{
		State:        view,
		ValidActions: s.dispatch.Engine().ValidActions(view, playerID),
		Duplicate:    out.Duplicate,
	}
	if !out.Duplicate {
		resp.Result = &out.Result
	}
	return resp
}

// statusFor maps engine and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case game.IsValidation(err):
		return http.StatusBadRequest
	case game.IsTerminal(err):
		return http.StatusGone
	case game.IsRuleViolation(err):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
		msg = "internal error"
	}
	if status == http.StatusNotFound {
		msg = "game not found"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
