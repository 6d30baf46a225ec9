// Package prompts builds the instruction text sent to the generation
// backends. Builders are pure functions of their inputs.
package prompts

import (
	"fmt"
	"strings"
)

// IntentSystemMessage instructs the backend to classify a question into one
// of the fixed intent categories and emit structured JSON.
const IntentSystemMessage = `You are an intent analysis agent for a natural language to SQL system.
Classify the user's question into exactly one of these categories:

1. data_retrieval - the user wants to query data (most common)
2. report_generation - the user wants a predefined report
3. insight_generation - the user wants analysis, variance explanation, or trends
4. query_assistance - the user needs help writing or understanding SQL
5. allocation_explainability - questions about cost allocation rules
6. knowledge_base - policy or training questions
7. unknown - none of the above

Also extract entities mentioned (tables, columns, metrics, filters), any time
range, and the query type (select, aggregate, compare, trend, report).

Respond with ONLY a JSON object in this exact shape:
{
  "category": "data_retrieval",
  "sub_category": "ad_hoc_query",
  "query_type": "select",
  "entities": ["customers"],
  "time_range": "last month",
  "confidence": 0.9,
  "suggested_tools": ["execute_sql"]
}`

// BuildIntentPrompt renders the classification request for a question,
// optionally enriched with conversation context.
func BuildIntentPrompt(question, context string) string {
	var b strings.Builder

	if context != "" {
		b.WriteString(context)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Analyze this question: %s", question))

	return b.String()
}
