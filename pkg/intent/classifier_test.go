package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/llm"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

func TestClassify_ModelPath(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{
		Content: `{"category": "report_generation", "sub_category": "p_and_l", "confidence": 0.92, "entities": ["revenue"]}`,
	})
	c := NewClassifier(mock, zap.NewNop())

	intent := c.Classify(context.Background(), "Generate the P&L report for Q2", "")
	assert.Equal(t, models.IntentReportGeneration, intent.Category)
	assert.Equal(t, "p_and_l", intent.SubCategory)
	assert.InDelta(t, 0.92, intent.Confidence, 0.001)
	assert.Equal(t, []string{"revenue"}, intent.Entities)
}

func TestClassify_ModelPathFencedResponse(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{
		Content: "```json\n{\"category\": \"data_retrieval\", \"confidence\": 0.85}\n```",
	})
	c := NewClassifier(mock, zap.NewNop())

	intent := c.Classify(context.Background(), "Show all customers", "")
	assert.Equal(t, models.IntentDataRetrieval, intent.Category)
}

func TestClassify_InvalidCategoryBecomesUnknown(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{
		Content: `{"category": "made_up_category", "confidence": 0.9}`,
	})
	c := NewClassifier(mock, zap.NewNop())

	intent := c.Classify(context.Background(), "question", "")
	assert.Equal(t, models.IntentUnknown, intent.Category)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{
		Content: `{"category": "data_retrieval", "confidence": 3.5}`,
	})
	c := NewClassifier(mock, zap.NewNop())

	intent := c.Classify(context.Background(), "question", "")
	assert.Equal(t, 1.0, intent.Confidence)
}

func TestClassify_BackendErrorFallsBack(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{
		Err: llm.NewError(llm.ErrorTypeTimeout, "request timeout", true, nil),
	})
	c := NewClassifier(mock, zap.NewNop())

	intent := c.Classify(context.Background(), "Show me the monthly report", "")
	assert.Equal(t, models.IntentReportGeneration, intent.Category)
	assert.Equal(t, 0.6, intent.Confidence)
}

func TestClassify_MalformedResponseFallsBack(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{Content: "I'm not sure what you mean."})
	c := NewClassifier(mock, zap.NewNop())

	intent := c.Classify(context.Background(), "Show all customers", "")
	assert.Equal(t, models.IntentDataRetrieval, intent.Category)
	assert.Equal(t, "ad_hoc_query", intent.SubCategory)
	assert.Equal(t, 0.7, intent.Confidence)
}

func TestClassify_NilClientUsesRules(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	tests := []struct {
		name         string
		question     string
		wantCategory models.IntentCategory
		wantSub      string
	}{
		{"report english", "give me the sales report", models.IntentReportGeneration, "general_report"},
		{"report vietnamese", "cho tôi báo cáo doanh thu", models.IntentReportGeneration, "general_report"},
		{"insight why", "why did costs increase last month", models.IntentInsightGeneration, "variance_explanation"},
		{"insight vietnamese", "xu hướng doanh số năm nay", models.IntentInsightGeneration, "variance_explanation"},
		{"assistance", "how to join two tables", models.IntentQueryAssistance, "sql_help"},
		{"knowledge base", "what is the travel expense policy", models.IntentKnowledgeBase, "policy_lookup"},
		{"default retrieval", "show all customers", models.IntentDataRetrieval, "ad_hoc_query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := c.Classify(context.Background(), tt.question, "")
			assert.Equal(t, tt.wantCategory, intent.Category)
			assert.Equal(t, tt.wantSub, intent.SubCategory)
			assert.Greater(t, intent.Confidence, 0.0)
		})
	}
}

func TestClassifyByRules_QueryTypes(t *testing.T) {
	tests := []struct {
		question string
		wantType string
	}{
		{"show all customers", "select"},
		{"total revenue for 2025", "aggregate"},
		{"tổng chi phí tháng này", "aggregate"},
		{"compare sales vs last year", "compare"},
		{"revenue by month", "trend"},
	}

	for _, tt := range tests {
		intent := classifyByRules(tt.question)
		assert.Equal(t, models.IntentDataRetrieval, intent.Category)
		assert.Equal(t, tt.wantType, intent.QueryType, "question: %s", tt.question)
	}
}
