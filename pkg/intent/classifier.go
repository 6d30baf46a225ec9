// Package intent classifies questions into pipeline intent categories.
// The primary path asks the generation backend for a structured
// classification; a deterministic rule-based fallback guarantees an
// Intent is always produced.
package intent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/llm"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
	"github.com/aiquery-dev/aiquery-engine/pkg/prompts"
)

const (
	classifyTemperature = 0.0

	// Confidence assigned by the rule-based fallback. The default branch is
	// slightly more confident because data retrieval dominates real traffic.
	fallbackConfidence        = 0.6
	fallbackDefaultConfidence = 0.7
)

// Classifier labels questions with an intent category.
type Classifier struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewClassifier creates a classifier backed by the given generation client.
// A nil client skips the model path and classifies purely by rules.
func NewClassifier(client llm.Client, logger *zap.Logger) *Classifier {
	return &Classifier{
		llm:    client,
		logger: logger.Named("intent"),
	}
}

// Classify labels a question, optionally enriched with conversation context.
// It never returns an error: any failure on the model path falls back to
// rule-based classification.
func (c *Classifier) Classify(ctx context.Context, question, conversationContext string) models.Intent {
	if c.llm != nil {
		intent, err := c.classifyWithModel(ctx, question, conversationContext)
		if err == nil {
			return intent
		}
		c.logger.Warn("model classification failed, using rule-based fallback",
			zap.Error(err))
	}
	return classifyByRules(question)
}

func (c *Classifier) classifyWithModel(ctx context.Context, question, conversationContext string) (models.Intent, error) {
	prompt := prompts.BuildIntentPrompt(question, conversationContext)

	response, err := c.llm.GenerateResponse(ctx, prompt, prompts.IntentSystemMessage, classifyTemperature)
	if err != nil {
		return models.Intent{}, err
	}

	jsonStr, err := llm.ExtractJSON(response)
	if err != nil {
		return models.Intent{}, err
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(jsonStr), &intent); err != nil {
		return models.Intent{}, err
	}

	if !validCategory(intent.Category) {
		intent.Category = models.IntentUnknown
	}
	if intent.Confidence < 0 {
		intent.Confidence = 0
	}
	if intent.Confidence > 1 {
		intent.Confidence = 1
	}

	c.logger.Debug("classified question",
		zap.String("category", string(intent.Category)),
		zap.Float64("confidence", intent.Confidence))

	return intent, nil
}

func validCategory(c models.IntentCategory) bool {
	switch c {
	case models.IntentDataRetrieval, models.IntentReportGeneration,
		models.IntentInsightGeneration, models.IntentQueryAssistance,
		models.IntentAllocation, models.IntentKnowledgeBase,
		models.IntentUnknown:
		return true
	}
	return false
}

// Keyword tables for the rule-based fallback. Each set carries English and
// Vietnamese phrasings.
var (
	reportKeywords    = []string{"report", "báo cáo", "p&l", "summary"}
	insightKeywords   = []string{"why", "tại sao", "variance", "trend", "xu hướng"}
	helpKeywords      = []string{"how to", "help", "giúp", "cách"}
	knowledgeKeywords = []string{"policy", "chính sách", "rule", "quy định"}

	aggregateKeywords = []string{"total", "sum", "count", "average", "tổng", "đếm"}
	compareKeywords   = []string{"compare", "so sánh", "vs", "versus"}
	trendKeywords     = []string{"trend", "over time", "by month", "theo tháng"}
)

// classifyByRules is the total fallback: pure keyword matching over the
// question text. It never fails and defaults to ad-hoc data retrieval.
func classifyByRules(question string) models.Intent {
	lower := strings.ToLower(question)

	if containsAny(lower, reportKeywords) {
		return models.Intent{
			Category:       models.IntentReportGeneration,
			SubCategory:    "general_report",
			Confidence:     fallbackConfidence,
			SuggestedTools: []string{"report_runner"},
		}
	}

	if containsAny(lower, insightKeywords) {
		return models.Intent{
			Category:       models.IntentInsightGeneration,
			SubCategory:    "variance_explanation",
			Confidence:     fallbackConfidence,
			SuggestedTools: []string{"insight_generator"},
		}
	}

	if containsAny(lower, helpKeywords) {
		return models.Intent{
			Category:       models.IntentQueryAssistance,
			SubCategory:    "sql_help",
			Confidence:     fallbackConfidence,
			SuggestedTools: []string{"sql_assistant"},
		}
	}

	if containsAny(lower, knowledgeKeywords) {
		return models.Intent{
			Category:       models.IntentKnowledgeBase,
			SubCategory:    "policy_lookup",
			Confidence:     fallbackConfidence,
			SuggestedTools: []string{"policy_finder"},
		}
	}

	queryType := "select"
	switch {
	case containsAny(lower, aggregateKeywords):
		queryType = "aggregate"
	case containsAny(lower, compareKeywords):
		queryType = "compare"
	case containsAny(lower, trendKeywords):
		queryType = "trend"
	}

	return models.Intent{
		Category:       models.IntentDataRetrieval,
		SubCategory:    "ad_hoc_query",
		QueryType:      queryType,
		Confidence:     fallbackDefaultConfidence,
		SuggestedTools: []string{"column_finder", "value_finder", "table_rules", "execute_sql"},
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
