package generator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// InsightType names the kind of analysis a question asks for.
type InsightType string

const (
	InsightVariance   InsightType = "variance"
	InsightTrend      InsightType = "trend"
	InsightAnomaly    InsightType = "anomaly"
	InsightComparison InsightType = "comparison"
	InsightSummary    InsightType = "summary"
)

var (
	varianceWords = []string{"why", "tại sao", "drop", "increase", "change", "giảm", "tăng", "thay đổi", "differ", "khác"}
	trendWords    = []string{"trend", "xu hướng", "over time", "theo thời gian", "growth", "tăng trưởng"}
	anomalyWords  = []string{"unusual", "bất thường", "anomaly", "outlier", "strange", "lạ"}
	compareWords  = []string{"compare", "so sánh", "vs", "versus", "difference", "between", "giữa"}
)

// DetectInsightType classifies an analysis question by keywords.
func DetectInsightType(question string) InsightType {
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, varianceWords):
		return InsightVariance
	case containsAny(lower, trendWords):
		return InsightTrend
	case containsAny(lower, anomalyWords):
		return InsightAnomaly
	case containsAny(lower, compareWords):
		return InsightComparison
	default:
		return InsightSummary
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// InsightGenerator serves insight intents with a small fixed set of
// pre-built analytical queries keyed by insight type.
type InsightGenerator struct {
	logger *zap.Logger
}

// NewInsightGenerator creates the insight strategy.
func NewInsightGenerator(logger *zap.Logger) *InsightGenerator {
	return &InsightGenerator{logger: logger.Named("generator.insight")}
}

// Generate selects the analytical query for the detected insight type.
func (g *InsightGenerator) Generate(_ context.Context, question, _ string, _ models.Intent) (models.CandidateQuery, error) {
	insightType := DetectInsightType(question)
	g.logger.Debug("detected insight type", zap.String("type", string(insightType)))

	switch insightType {
	case InsightVariance:
		return models.CandidateQuery{
			SQL: `SELECT c.city,
  SUM(CASE WHEN o.order_date >= date('now', '-30 days') THEN o.total_amount ELSE 0 END) as current_period,
  SUM(CASE WHEN o.order_date < date('now', '-30 days') THEN o.total_amount ELSE 0 END) as previous_period
FROM orders o
JOIN customers c ON o.customer_id = c.id
WHERE o.order_date >= date('now', '-60 days')
GROUP BY c.city
ORDER BY (current_period - previous_period) ASC
LIMIT 5`,
			Explanation: "Period-over-period revenue variance by city, worst movers first",
			Confidence:  0.85,
		}, nil

	case InsightTrend:
		return models.CandidateQuery{
			SQL: `SELECT strftime('%Y-%m', order_date) as month, SUM(total_amount) as revenue, COUNT(*) as orders, AVG(total_amount) as avg_order
FROM orders
WHERE order_date >= date('now', '-12 months')
GROUP BY month
ORDER BY month`,
			Explanation: "12-month revenue and order volume trend",
			Confidence:  0.85,
		}, nil

	case InsightComparison:
		return models.CandidateQuery{
			SQL: `SELECT c.city, COUNT(*) as orders, SUM(o.total_amount) as revenue, AVG(o.total_amount) as avg_order
FROM orders o
JOIN customers c ON o.customer_id = c.id
GROUP BY c.city
ORDER BY revenue DESC`,
			Explanation: "Revenue comparison across customer segments",
			Confidence:  0.85,
		}, nil

	case InsightAnomaly:
		return models.CandidateQuery{
			SQL: `SELECT id, customer_id, order_date, total_amount
FROM orders
WHERE total_amount > (SELECT AVG(total_amount) * 3 FROM orders)
ORDER BY total_amount DESC
LIMIT 20`,
			Explanation: "Orders with unusually large totals",
			Confidence:  0.8,
		}, nil

	default:
		return models.CandidateQuery{
			SQL: `SELECT COUNT(*) as total_orders, SUM(total_amount) as total_revenue, AVG(total_amount) as avg_order
FROM orders
WHERE order_date >= date('now', '-30 days')`,
			Explanation: "30-day business summary",
			Confidence:  0.75,
		}, nil
	}
}

var _ Generator = (*InsightGenerator)(nil)
