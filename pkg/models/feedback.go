package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackRecord is the outcome audit trail for one processed question.
// Records are appended once per request and only mutated by explicit
// correction/rating calls.
type FeedbackRecord struct {
	ID               uuid.UUID `json:"id"`
	Question         string    `json:"question"`
	SQL              string    `json:"sql"`
	CorrectedSQL     string    `json:"corrected_sql,omitempty"`
	Rating           int       `json:"rating"` // 1-5, 0 = not rated
	FeedbackText     string    `json:"feedback_text,omitempty"`
	WasExecuted      bool      `json:"was_executed"`
	ExecutionSuccess bool      `json:"execution_success"`
	UserID           string    `json:"user_id"`
	Timestamp        time.Time `json:"timestamp"`
}

// FeedbackStats aggregates quality metrics over recorded feedback.
type FeedbackStats struct {
	TotalQueries   int     `json:"total_queries"`
	RatedQueries   int     `json:"rated_queries"`
	AverageRating  float64 `json:"average_rating"`
	CorrectionRate float64 `json:"correction_rate"`
	ExecutionRate  float64 `json:"execution_rate"`
	SuccessRate    float64 `json:"success_rate"`
}

// FewShotExample pairs a question with known-good SQL for prompt enrichment.
type FewShotExample struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}
