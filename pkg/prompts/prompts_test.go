package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIntentPrompt(t *testing.T) {
	got := BuildIntentPrompt("Show all customers", "")
	assert.Equal(t, "Analyze this question: Show all customers", got)

	got = BuildIntentPrompt("break it down by city", "## Conversation Context\nTopics: revenue")
	assert.Contains(t, got, "Topics: revenue")
	assert.Contains(t, got, "Analyze this question: break it down by city")
}

func TestDialectRules(t *testing.T) {
	assert.Contains(t, DialectRules("postgres"), "TO_CHAR")
	assert.Contains(t, DialectRules("SQLSERVER"), "TOP n")
	assert.Equal(t, "No specific dialect rules.", DialectRules("oracle"))
}

func TestBuildSQLPrompt(t *testing.T) {
	prompt := BuildSQLPrompt(SQLPromptInput{
		Question:         "Total revenue by month",
		Dialect:          "postgres",
		Schema:           "orders(id, order_date, total_amount)",
		SemanticMappings: "## Semantic Mappings\nrevenue -> orders.total_amount",
		Context:          "Topics: revenue",
		Examples: []FewShotExample{
			{Question: "Show all customers", SQL: "SELECT id, name FROM customers LIMIT 100"},
		},
	})

	assert.Contains(t, prompt, "Database Dialect: postgres")
	assert.Contains(t, prompt, "TO_CHAR")
	assert.Contains(t, prompt, "orders(id, order_date, total_amount)")
	assert.Contains(t, prompt, "revenue -> orders.total_amount")
	assert.Contains(t, prompt, "Topics: revenue")
	assert.Contains(t, prompt, "Q: Show all customers")
	assert.Contains(t, prompt, "Convert this question to SQL: Total revenue by month")
}

func TestBuildSQLPrompt_MissingSchema(t *testing.T) {
	prompt := BuildSQLPrompt(SQLPromptInput{Question: "q", Dialect: "sqlite"})
	assert.Contains(t, prompt, "Schema not available")
}
