package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/apperrors"
	"github.com/aiquery-dev/aiquery-engine/pkg/feedback"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
	"github.com/aiquery-dev/aiquery-engine/pkg/sql"
)

// CorrectionRequest is the POST /api/feedback/correction body.
type CorrectionRequest struct {
	Question     string `json:"question"`
	CorrectedSQL string `json:"corrected_sql"`
	UserID       string `json:"user_id"`
}

// RatingRequest is the POST /api/feedback/rating body.
type RatingRequest struct {
	Question string `json:"question"`
	Rating   int    `json:"rating"`
	UserID   string `json:"user_id"`
	Feedback string `json:"feedback,omitempty"`
}

// ExamplesResponse wraps high-rated examples for prompt inspection.
type ExamplesResponse struct {
	Examples []models.FewShotExample `json:"examples"`
}

// FeedbackHandler handles correction and rating submission.
type FeedbackHandler struct {
	service *feedback.Service
	logger  *zap.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service *feedback.Service, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, logger: logger}
}

// RegisterRoutes registers the feedback handler's routes on the given mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/feedback/correction", h.Correction)
	mux.HandleFunc("POST /api/feedback/rating", h.Rating)
	mux.HandleFunc("GET /api/feedback/examples", h.Examples)
}

// Correction handles POST /api/feedback/correction. The corrected SQL goes
// through the same validator as generated SQL; a mutation submitted as a
// "correction" is rejected outright.
func (h *FeedbackHandler) Correction(w http.ResponseWriter, r *http.Request) {
	var req CorrectionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	req.CorrectedSQL = strings.TrimSpace(req.CorrectedSQL)
	if req.Question == "" || req.CorrectedSQL == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question and corrected_sql are required")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	outcome := sql.Validate(req.CorrectedSQL)
	if !outcome.Valid {
		h.logger.Warn("correction rejected by validator",
			zap.String("user_id", req.UserID),
			zap.Strings("errors", outcome.Errors))
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_sql", strings.Join(outcome.Errors, "; "))
		return
	}

	h.service.AddCorrection(req.Question, outcome.SQL, req.UserID)
	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode correction response", zap.Error(err))
	}
}

// Rating handles POST /api/feedback/rating.
func (h *FeedbackHandler) Rating(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "rating must be between 1 and 5")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	if err := h.service.AddRating(req.Question, req.Rating, req.UserID, req.Feedback); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "no matching query found for this question")
			return
		}
		h.logger.Error("Failed to store rating", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to store rating")
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode rating response", zap.Error(err))
	}
}

// Examples handles GET /api/feedback/examples?limit=N, exposing the
// high-rated pairs that feed generation prompts.
func (h *FeedbackHandler) Examples(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	examples := h.service.HighRatedExamples(4, limit)
	if examples == nil {
		examples = []models.FewShotExample{}
	}

	if err := WriteJSON(w, http.StatusOK, ExamplesResponse{Examples: examples}); err != nil {
		h.logger.Error("Failed to encode examples response", zap.Error(err))
	}
}
