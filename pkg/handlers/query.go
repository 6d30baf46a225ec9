package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/audit"
	"github.com/aiquery-dev/aiquery-engine/pkg/cache"
	"github.com/aiquery-dev/aiquery-engine/pkg/memory"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// QueryPipeline processes one question end to end and always returns a
// response, never an error.
type QueryPipeline interface {
	Process(ctx context.Context, question models.Question) models.QueryResponse
}

// QueryRequest is the POST /api/query body.
type QueryRequest struct {
	Question  string `json:"question"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// HistoryResponse wraps a session's turns.
type HistoryResponse struct {
	Turns []memory.Turn `json:"turns"`
}

// StatsResponse aggregates cache and feedback statistics.
type StatsResponse struct {
	Cache    *cache.Stats         `json:"cache,omitempty"`
	Feedback models.FeedbackStats `json:"feedback"`
}

// FeedbackReader is the read side of the feedback service the stats
// endpoint needs.
type FeedbackReader interface {
	Stats() models.FeedbackStats
}

// QueryHandler handles question submission, history, and session management.
type QueryHandler struct {
	pipeline QueryPipeline
	memory   *memory.Store
	cache    cache.ResultCache
	feedback FeedbackReader
	auditor  *audit.SecurityAuditor
	logger   *zap.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(pipeline QueryPipeline, store *memory.Store, resultCache cache.ResultCache, feedback FeedbackReader, auditor *audit.SecurityAuditor, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		pipeline: pipeline,
		memory:   store,
		cache:    resultCache,
		feedback: feedback,
		auditor:  auditor,
		logger:   logger,
	}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Query)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("GET /api/stats", h.Stats)
	mux.HandleFunc("DELETE /api/sessions", h.ClearSession)
}

// Query handles POST /api/query: one question in, one QueryResponse out.
// The pipeline reports its own failures inside the response body, so this
// handler returns 200 for anything that parsed.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	// Screening is advisory: a flagged question is logged for alerting but
	// still goes through the pipeline, where the validator is the hard gate.
	if finding := audit.ScreenQuestion(req.Question); finding != nil && h.auditor != nil {
		h.auditor.LogInjectionAttempt(req.UserID, req.SessionID, clientIP(r), *finding)
	}

	resp := h.pipeline.Process(r.Context(), models.Question{
		Text:      req.Question,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		ClientIP:  clientIP(r),
	})

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}

// History handles GET /api/history?user_id=&session_id=
func (h *QueryHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	turns := h.memory.History(userID, r.URL.Query().Get("session_id"))
	if turns == nil {
		turns = []memory.Turn{}
	}

	if err := WriteJSON(w, http.StatusOK, HistoryResponse{Turns: turns}); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}

// Stats handles GET /api/stats. Cache statistics are included when the
// configured backend exposes them (the in-memory cache does, Redis does not).
func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Feedback: h.feedback.Stats()}
	if counted, ok := h.cache.(interface{ Stats() cache.Stats }); ok {
		stats := counted.Stats()
		resp.Cache = &stats
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode stats response", zap.Error(err))
	}
}

// ClearSession handles DELETE /api/sessions?user_id=&session_id=
func (h *QueryHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	h.memory.ClearSession(userID, r.URL.Query().Get("session_id"))
	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode clear response", zap.Error(err))
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "user_id query parameter is required")
		return "", false
	}
	return userID, true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	return r.RemoteAddr
}
