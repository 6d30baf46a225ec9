// Package feedback records every processed question as an append-only audit
// trail and lets users attach corrections and ratings afterward. High-rated
// examples feed back into generation prompts as few-shot material.
package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/apperrors"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

const feedbackFileName = "feedback.json"

// Service stores feedback records in memory with JSON persistence to disk.
// Persistence is best-effort: a failed write is logged, never surfaced.
type Service struct {
	mu          sync.Mutex
	records     []models.FeedbackRecord
	corrections map[string]string // normalized question -> corrected SQL
	storagePath string
	logger      *zap.Logger
}

// NewService creates a feedback service persisting under storagePath.
// Existing records are loaded if present; an empty storagePath disables
// persistence entirely (used in tests).
func NewService(storagePath string, logger *zap.Logger) *Service {
	s := &Service{
		corrections: make(map[string]string),
		storagePath: storagePath,
		logger:      logger.Named("feedback"),
	}
	if storagePath != "" {
		if err := os.MkdirAll(storagePath, 0o755); err != nil {
			s.logger.Warn("create feedback dir failed", zap.Error(err))
		}
		s.load()
	}
	return s
}

// Record appends one record for a processed question and returns it.
func (s *Service) Record(question, sql, userID string, wasExecuted, executionSuccess bool) models.FeedbackRecord {
	record := models.FeedbackRecord{
		ID:               uuid.New(),
		Question:         question,
		SQL:              sql,
		UserID:           userID,
		WasExecuted:      wasExecuted,
		ExecutionSuccess: executionSuccess,
		Timestamp:        time.Now(),
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.persistLocked()
	s.mu.Unlock()

	return record
}

// AddCorrection attaches corrected SQL to the user's most recent record for
// the question, or creates a standalone high-rated record if none exists.
func (s *Service) AddCorrection(question, correctedSQL, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.corrections[normalize(question)] = correctedSQL

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Question == question && s.records[i].UserID == userID {
			s.records[i].CorrectedSQL = correctedSQL
			s.persistLocked()
			return
		}
	}

	s.records = append(s.records, models.FeedbackRecord{
		ID:           uuid.New(),
		Question:     question,
		CorrectedSQL: correctedSQL,
		UserID:       userID,
		Rating:       5, // user-provided SQL is treated as a known-good example
		Timestamp:    time.Now(),
	})
	s.persistLocked()
}

// AddRating attaches a rating (clamped to 1..5) to the user's most recent
// record for the question. Rating a question that was never processed
// returns apperrors.ErrNotFound.
func (s *Service) AddRating(question string, rating int, userID, feedbackText string) error {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Question == question && s.records[i].UserID == userID {
			s.records[i].Rating = rating
			if feedbackText != "" {
				s.records[i].FeedbackText = feedbackText
			}
			s.persistLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: no record for question by user %s", apperrors.ErrNotFound, userID)
}

// Correction returns the corrected SQL recorded for a question, if any.
func (s *Service) Correction(question string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sql, ok := s.corrections[normalize(question)]
	return sql, ok
}

// HighRatedExamples returns up to limit question/SQL pairs usable as
// few-shot examples: rated >= minRating, or corrected and executed
// successfully. Corrections take precedence over the generated SQL.
func (s *Service) HighRatedExamples(minRating, limit int) []models.FewShotExample {
	s.mu.Lock()
	defer s.mu.Unlock()

	var good []models.FeedbackRecord
	for _, r := range s.records {
		if r.Rating >= minRating || (r.CorrectedSQL != "" && r.ExecutionSuccess) {
			good = append(good, r)
		}
	}

	sort.SliceStable(good, func(i, j int) bool {
		if good[i].Rating != good[j].Rating {
			return good[i].Rating > good[j].Rating
		}
		return good[i].Timestamp.After(good[j].Timestamp)
	})

	var examples []models.FewShotExample
	for _, r := range good {
		if len(examples) >= limit {
			break
		}
		sql := r.CorrectedSQL
		if sql == "" {
			sql = r.SQL
		}
		if sql != "" {
			examples = append(examples, models.FewShotExample{Question: r.Question, SQL: sql})
		}
	}
	return examples
}

// Stats aggregates quality metrics over all records.
func (s *Service) Stats() models.FeedbackStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.FeedbackStats{TotalQueries: len(s.records)}
	if stats.TotalQueries == 0 {
		return stats
	}

	var ratingSum, corrected, executed, successful int
	for _, r := range s.records {
		if r.Rating > 0 {
			stats.RatedQueries++
			ratingSum += r.Rating
		}
		if r.CorrectedSQL != "" {
			corrected++
		}
		if r.WasExecuted {
			executed++
			if r.ExecutionSuccess {
				successful++
			}
		}
	}

	if stats.RatedQueries > 0 {
		stats.AverageRating = float64(ratingSum) / float64(stats.RatedQueries)
	}
	stats.CorrectionRate = float64(corrected) / float64(stats.TotalQueries)
	stats.ExecutionRate = float64(executed) / float64(stats.TotalQueries)
	if executed > 0 {
		stats.SuccessRate = float64(successful) / float64(executed)
	}
	return stats
}

func normalize(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

func (s *Service) load() {
	path := filepath.Join(s.storagePath, feedbackFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("load feedback failed", zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		s.logger.Warn("decode feedback file failed", zap.Error(err))
		s.records = nil
		return
	}
	for _, r := range s.records {
		if r.CorrectedSQL != "" {
			s.corrections[normalize(r.Question)] = r.CorrectedSQL
		}
	}
}

// persistLocked writes all records to disk. Caller holds s.mu.
func (s *Service) persistLocked() {
	if s.storagePath == "" {
		return
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		s.logger.Warn("encode feedback failed", zap.Error(err))
		return
	}
	path := filepath.Join(s.storagePath, feedbackFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warn("persist feedback failed", zap.String("path", path), zap.Error(err))
	}
}

// String implements fmt.Stringer for debug logging.
func (s *Service) String() string {
	stats := s.Stats()
	return fmt.Sprintf("feedback(total=%d rated=%d)", stats.TotalQueries, stats.RatedQueries)
}
