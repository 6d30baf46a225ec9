package prompts

import (
	"fmt"
	"strings"
)

// SQLSystemMessage instructs the backend to translate a question into a
// single safe read-only SQL statement, emitted as JSON.
const SQLSystemMessage = `You are an agent specialized in converting natural language into SQL queries.

Rules:
- Use ONLY the tables and columns provided in the schema metadata. Never
  hallucinate tables, columns, or relationships.
- Only SELECT queries are allowed. Never generate DROP, DELETE, UPDATE,
  INSERT, TRUNCATE, ALTER, GRANT, REVOKE, EXEC, or any DDL.
- Avoid SELECT * where possible; specify columns explicitly.
- Use aliases for readability and CTEs for complex logic.
- Ensure deterministic ordering when using LIMIT.

Respond with ONLY a JSON object in this exact shape:
{
  "sql": "SELECT ...",
  "explanation": "what the query does",
  "tables_used": ["orders"],
  "confidence": 0.9
}`

// dialectRules holds per-backend SQL phrasing guidance injected into the
// generation prompt.
var dialectRules = map[string]string{
	"sqlite": `- Use LIMIT n for top n results.
- Use strftime('%Y-%m', date_col) for date formatting.
- SQLite does NOT support RIGHT JOIN or FULL OUTER JOIN (use LEFT JOIN).
- Date manipulation: date(col, '+1 day').`,
	"postgres": `- Use LIMIT n for top n results.
- Use TO_CHAR(date_col, 'YYYY-MM') for date formatting.
- Use :: for type casting (e.g. val::text).
- ILIKE for case-insensitive matching.`,
	"mysql": `- Use LIMIT n for top n results.
- Use DATE_FORMAT(date_col, '%Y-%m') for date formatting.
- String concatenation: CONCAT(a, b).`,
	"sqlserver": `- Use TOP n for top n results (e.g. SELECT TOP 10 * FROM ...).
- Use FORMAT(date_col, 'yyyy-MM') for date formatting.
- String concatenation: + or CONCAT.`,
}

// DialectRules returns phrasing guidance for a database dialect.
func DialectRules(dialect string) string {
	if rules, ok := dialectRules[strings.ToLower(dialect)]; ok {
		return rules
	}
	return "No specific dialect rules."
}

// FewShotExample is a question/SQL pair shown to the backend.
type FewShotExample struct {
	Question string
	SQL      string
}

// SQLPromptInput carries everything the SQL generation prompt renders.
type SQLPromptInput struct {
	Question         string
	Dialect          string
	Schema           string
	SemanticMappings string
	Context          string // conversation context from memory
	Examples         []FewShotExample
}

// BuildSQLPrompt renders the SQL generation request.
func BuildSQLPrompt(in SQLPromptInput) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## Database Dialect: %s\n\n", in.Dialect))
	b.WriteString("### Dialect Rules:\n")
	b.WriteString(DialectRules(in.Dialect))
	b.WriteString("\n\n")

	b.WriteString("## Schema\n\n")
	if in.Schema != "" {
		b.WriteString(in.Schema)
	} else {
		b.WriteString("Schema not available")
	}
	b.WriteString("\n\n")

	if in.SemanticMappings != "" {
		b.WriteString(in.SemanticMappings)
		b.WriteString("\n\n")
	}

	if in.Context != "" {
		b.WriteString(in.Context)
		b.WriteString("\n\n")
	}

	if len(in.Examples) > 0 {
		b.WriteString("## Examples\n\n")
		for _, ex := range in.Examples {
			b.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", ex.Question, ex.SQL))
		}
	}

	b.WriteString(fmt.Sprintf("Convert this question to SQL: %s", in.Question))

	return b.String()
}
