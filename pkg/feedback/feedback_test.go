package feedback

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/apperrors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService("", zap.NewNop())
}

func TestService_RecordAndStats(t *testing.T) {
	s := newTestService(t)

	s.Record("q1", "SELECT 1", "u1", true, true)
	s.Record("q2", "SELECT 2", "u1", true, false)
	s.Record("q3", "SELECT 3", "u1", false, false)

	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalQueries)
	assert.InDelta(t, 2.0/3.0, stats.ExecutionRate, 1e-9)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
}

func TestService_RatingClampedAndAttached(t *testing.T) {
	s := newTestService(t)
	s.Record("q", "SELECT 1", "u", true, true)

	require.NoError(t, s.AddRating("q", 9, "u", "great"))

	stats := s.Stats()
	assert.Equal(t, 1, stats.RatedQueries)
	assert.InDelta(t, 5.0, stats.AverageRating, 1e-9)

	err := s.AddRating("unknown question", 3, "u", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_CorrectionAttachesToLatestRecord(t *testing.T) {
	s := newTestService(t)
	s.Record("q", "SELECT wrong", "u", true, true)
	s.Record("q", "SELECT wrong2", "u", true, true)

	s.AddCorrection("q", "SELECT right", "u")

	sql, ok := s.Correction("q")
	require.True(t, ok)
	assert.Equal(t, "SELECT right", sql)

	// Correction lookup is case-insensitive on the question.
	sql, ok = s.Correction("  Q ")
	require.True(t, ok)
	assert.Equal(t, "SELECT right", sql)
}

func TestService_CorrectionWithoutRecordCreatesHighRatedOne(t *testing.T) {
	s := newTestService(t)

	s.AddCorrection("never asked", "SELECT fixed", "u")

	examples := s.HighRatedExamples(4, 10)
	require.Len(t, examples, 1)
	assert.Equal(t, "SELECT fixed", examples[0].SQL)
}

func TestService_HighRatedExamples(t *testing.T) {
	s := newTestService(t)

	s.Record("low", "SELECT low", "u", true, true)
	require.NoError(t, s.AddRating("low", 2, "u", ""))

	s.Record("high", "SELECT high", "u", true, true)
	require.NoError(t, s.AddRating("high", 5, "u", ""))

	s.Record("corrected", "SELECT old", "u", true, true)
	s.AddCorrection("corrected", "SELECT new", "u")

	examples := s.HighRatedExamples(4, 10)
	require.Len(t, examples, 2)
	assert.Equal(t, "SELECT high", examples[0].SQL, "highest rating first")
	assert.Equal(t, "SELECT new", examples[1].SQL, "correction replaces generated SQL")
}

func TestService_PersistsAcrossRestart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "feedback")

	s := NewService(dir, zap.NewNop())
	s.Record("q", "SELECT 1", "u", true, true)
	s.AddCorrection("q", "SELECT 2", "u")

	reloaded := NewService(dir, zap.NewNop())
	assert.Equal(t, 1, reloaded.Stats().TotalQueries)

	sql, ok := reloaded.Correction("q")
	require.True(t, ok)
	assert.Equal(t, "SELECT 2", sql)
}
