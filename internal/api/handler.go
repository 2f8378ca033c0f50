// Package api provides HTTP handlers for the OfferTalk API.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/offertalk/internal/domain"
	"github.com/ashureev/offertalk/internal/negotiation"
	"github.com/ashureev/offertalk/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Handler handles session creation and retrieval.
type Handler struct {
	repo store.Repository
}

// NewHandler creates a new Handler.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers the session REST endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/start-negotiation", h.StartNegotiation)
	r.Get("/api/session/{sessionID}", h.GetSession)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// startNegotiationRequest mirrors the client's session-creation payload.
// yearsExperience is accepted for forward compatibility but unused.
type startNegotiationRequest struct {
	Role            string   `json:"role"`
	JobTitle        string   `json:"jobTitle"`
	SeekerMin       *float64 `json:"seekerMin"`
	SeekerTarget    *float64 `json:"seekerTarget"`
	SeekerMax       *float64 `json:"seekerMax"`
	RecruiterMin    *float64 `json:"recruiterMin"`
	RecruiterMax    *float64 `json:"recruiterMax"`
	YearsExperience *float64 `json:"yearsExperience"`
}

// StartNegotiation creates a new negotiation session with derived ranges,
// an empty fact ledger, and an empty transcript.
func (h *Handler) StartNegotiation(w http.ResponseWriter, r *http.Request) {
	var req startNegotiationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := domain.Role(req.Role)
	if !role.Valid() {
		Error(w, http.StatusBadRequest, "role must be job_seeker or recruiter")
		return
	}

	seekerRange, recruiterRange, err := negotiation.DeriveRanges(role, negotiation.RangeInput{
		SeekerMin:    req.SeekerMin,
		SeekerTarget: req.SeekerTarget,
		SeekerMax:    req.SeekerMax,
		RecruiterMin: req.RecruiterMin,
		RecruiterMax: req.RecruiterMax,
	})
	if err != nil {
		var verr *negotiation.ValidationError
		if errors.As(err, &verr) {
			Error(w, http.StatusBadRequest, verr.Reason)
			return
		}
		Error(w, http.StatusInternalServerError, "failed to derive ranges")
		return
	}

	session := &domain.Session{
		ID:             uuid.NewString(),
		Role:           role,
		JobTitle:       req.JobTitle,
		SeekerRange:    seekerRange,
		RecruiterRange: recruiterRange,
		Facts:          domain.NewFactLedger(),
		Messages:       []domain.Message{},
	}

	if err := h.repo.Save(r.Context(), session); err != nil {
		slog.Error("Failed to persist new session", "session_id", session.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	slog.Info("Negotiation session created", "session_id", session.ID, "role", role, "job_title", req.JobTitle)
	JSON(w, http.StatusOK, map[string]string{"session_id": session.ID})
}

// GetSession returns the full session record.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.repo.Get(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to load session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		Error(w, http.StatusNotFound, "Session not found")
		return
	}

	JSON(w, http.StatusOK, session)
}
