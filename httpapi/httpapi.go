// Package httpapi exposes the interview engine over a small JSON API. It is a
// thin adapter: all session semantics live in the Manager, and engine error
// codes map one-to-one onto HTTP statuses.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	careerframe "github.com/goksnair/careerframe"
	"github.com/goksnair/careerframe/core"
)

// Server handles HTTP traffic for the engine.
type Server struct {
	mgr *careerframe.Manager
	log *slog.Logger
}

// New constructs a Server.
func New(mgr *careerframe.Manager, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{mgr: mgr, log: log}
}

// Router builds the chi router for the API.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/messages", s.handleSend)
			r.Get("/analysis", s.handleAnalysis)
			r.Delete("/", s.handleEnd)
		})
	})
	return r
}

type startRequest struct {
	UserID      string `json:"user_id"`
	SessionType string `json:"session_type,omitempty"`
}

type sendRequest struct {
	Text string `json:"text"`
}

type sendResponse struct {
	Session *core.Session `json:"session"`
	Turn    *core.Turn    `json:"turn"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	session, err := s.mgr.Start(r.Context(), req.UserID, req.SessionType)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	session, turn, err := s.mgr.Send(r.Context(), sessionID, req.Text)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sendResponse{Session: session, Turn: turn})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.mgr.RequestAnalysis(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	summary, err := s.mgr.End(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// statusFor maps engine error codes onto HTTP statuses.
func statusFor(code core.ErrorCode) int {
	switch code {
	case core.ErrInvalidUser, core.ErrEmptyInput:
		return http.StatusBadRequest
	case core.ErrNoActiveSession:
		return http.StatusNotFound
	case core.ErrSessionBusy:
		return http.StatusConflict
	case core.ErrInsufficientData:
		return http.StatusUnprocessableEntity
	case core.ErrServiceTimeout:
		return http.StatusGatewayTimeout
	case core.ErrServiceUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	code := core.CodeOf(err)
	status := statusFor(code)
	if status >= 500 {
		s.log.Error("engine error", "code", code, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(code)})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "err", err)
	}
}
