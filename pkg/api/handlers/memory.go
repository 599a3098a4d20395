// Package handlers contains HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rahilsk203/islamicai-sub002/pkg/api/middleware"
	"github.com/rahilsk203/islamicai-sub002/pkg/api/response"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
	"github.com/rahilsk203/islamicai-sub002/pkg/memory"
)

// MemoryHandler handles memory engine requests.
type MemoryHandler struct {
	engine *memory.Engine
	log    logger.Logger
}

// NewMemoryHandler creates a new memory handler.
func NewMemoryHandler(engine *memory.Engine, log logger.Logger) *MemoryHandler {
	return &MemoryHandler{
		engine: engine,
		log:    log,
	}
}

// LinkOwnerRequest is the request body for linking a session to a user.
type LinkOwnerRequest struct {
	UserID string `json:"userId"`
}

// SessionOwnerResponse reports the durable owner of a session.
type SessionOwnerResponse struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// TurnRequest is the request body for recording a conversation turn.
type TurnRequest struct {
	UserID  string `json:"userId,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecordCreatedResponse reports the ID of a newly created record. The ID
// is empty when the write was skipped (guest identity, opt-out, duplicate).
type RecordCreatedResponse struct {
	ID     string `json:"id,omitempty"`
	Stored bool   `json:"stored"`
}

// FactRequest is the request body for saving a user fact.
type FactRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SummaryRequest is the request body for adding an episodic summary.
type SummaryRequest struct {
	Summary string `json:"summary"`
}

// OptOutRequest is the request body for changing the opt-out flag.
type OptOutRequest struct {
	OptOut bool `json:"optOut"`
}

// RecallRequest is the request body for hybrid recall.
type RecallRequest struct {
	Query   string        `json:"query"`
	History []memory.Turn `json:"history,omitempty"`
}

// ForgetResponse reports whether a record was removed.
type ForgetResponse struct {
	Forgotten bool `json:"forgotten"`
}

// LinkOwner handles PUT /api/v1/sessions/{sessionID}/owner
func (h *MemoryHandler) LinkOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var req LinkOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if err := h.engine.LinkSessionToUser(ctx, sessionID, req.UserID); err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusOK, SessionOwnerResponse{
		SessionID: sessionID,
		UserID:    req.UserID,
	})
}

// GetOwner handles GET /api/v1/sessions/{sessionID}/owner
func (h *MemoryHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	userID := h.engine.UserIDForSession(ctx, sessionID)
	if userID == "" {
		response.Error(w, http.StatusNotFound, response.ErrCodeNotFound,
			"Session has no durable owner", getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, SessionOwnerResponse{
		SessionID: sessionID,
		UserID:    userID,
	})
}

// RecordTurn handles POST /api/v1/sessions/{sessionID}/turns
func (h *MemoryHandler) RecordTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if req.Role == "" || req.Content == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			"Fields 'role' and 'content' are required", getRequestID(ctx))
		return
	}

	id, err := h.engine.RecordTurn(ctx, sessionID, req.UserID, req.Role, req.Content)
	if err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusCreated, RecordCreatedResponse{ID: id, Stored: id != ""})
}

// SessionHistory handles GET /api/v1/sessions/{sessionID}/turns
func (h *MemoryHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	turns := h.engine.SessionTurns(ctx, sessionID)
	if turns == nil {
		turns = []memory.Turn{}
	}

	response.JSON(w, http.StatusOK, turns)
}

// GetProfile handles GET /api/v1/users/{userID}/profile
func (h *MemoryHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	profile := h.engine.GetUserProfile(ctx, userID)
	response.JSON(w, http.StatusOK, profile)
}

// PutProfile handles PUT /api/v1/users/{userID}/profile
func (h *MemoryHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	var profile memory.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if err := h.engine.SaveUserProfile(ctx, userID, &profile); err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusOK, &profile)
}

// SetOptOut handles PUT /api/v1/users/{userID}/opt-out
func (h *MemoryHandler) SetOptOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	var req OptOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if err := h.engine.SetOptOut(ctx, userID, req.OptOut); err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"optOut": req.OptOut})
}

// SaveFact handles POST /api/v1/users/{userID}/facts
func (h *MemoryHandler) SaveFact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	var req FactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if req.Type == "" || req.Value == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			"Fields 'type' and 'value' are required", getRequestID(ctx))
		return
	}

	id, err := h.engine.SaveUserFact(ctx, userID, req.Type, req.Value)
	if err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusCreated, RecordCreatedResponse{ID: id, Stored: id != ""})
}

// SearchFacts handles GET /api/v1/users/{userID}/facts?query=...
func (h *MemoryHandler) SearchFacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	query := r.URL.Query().Get("query")

	if query == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			"Query parameter 'query' is required", getRequestID(ctx))
		return
	}

	results := h.engine.SearchFacts(ctx, userID, query)
	if results == nil {
		results = []*memory.ScoredRecord{}
	}

	response.JSON(w, http.StatusOK, results)
}

// AddSummary handles POST /api/v1/users/{userID}/summaries
func (h *MemoryHandler) AddSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if req.Summary == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			"Field 'summary' is required", getRequestID(ctx))
		return
	}

	id, err := h.engine.AddEpisodicSummary(ctx, userID, req.Summary)
	if err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusCreated, RecordCreatedResponse{ID: id, Stored: id != ""})
}

// Recall handles POST /api/v1/users/{userID}/recall
func (h *MemoryHandler) Recall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	var req RecallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), getRequestID(ctx))
		return
	}

	if req.Query == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			"Field 'query' is required", getRequestID(ctx))
		return
	}

	result := h.engine.Recall(ctx, userID, req.History, req.Query)
	response.JSON(w, http.StatusOK, result)
}

// ForgetLast handles DELETE /api/v1/users/{userID}/memories/last
func (h *MemoryHandler) ForgetLast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	forgotten, err := h.engine.ForgetLast(ctx, userID)
	if err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusOK, ForgetResponse{Forgotten: forgotten})
}

// DeleteAll handles DELETE /api/v1/users/{userID}/memories
func (h *MemoryHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if err := h.engine.DeleteAllUserMemories(ctx, userID); err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusNoContent, nil)
}

// Maintain handles POST /api/v1/users/{userID}/maintenance
func (h *MemoryHandler) Maintain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	report, err := h.engine.Maintain(ctx, userID)
	if err != nil {
		h.writeEngineError(w, ctx, err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}

func (h *MemoryHandler) writeEngineError(w http.ResponseWriter, ctx context.Context, err error) {
	if errors.Is(err, memory.ErrInvalidIdentity) {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			err.Error(), getRequestID(ctx))
		return
	}

	h.log.Error("Request failed", "error", err)
	response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer,
		"Internal server error", getRequestID(ctx))
}

func getRequestID(ctx context.Context) string {
	return middleware.GetRequestID(ctx)
}
