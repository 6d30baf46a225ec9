package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/llm"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
	"github.com/aiquery-dev/aiquery-engine/pkg/prompts"
	"github.com/aiquery-dev/aiquery-engine/pkg/semantic"
)

const generateTemperature = 0.1

// ModelGenerator asks the generation backend to translate the question
// into SQL, enriched with schema, semantic mappings, and few-shot
// examples.
type ModelGenerator struct {
	llm           llm.Client
	layer         *semantic.Layer
	schema        string
	dialect       string
	examples      []prompts.FewShotExample
	exampleSource ExampleSource
	corrections   CorrectionSource
	logger        *zap.Logger
}

// ExampleSource supplies extra few-shot examples at generation time. This
// is how high-rated feedback and user corrections sharpen later prompts.
type ExampleSource func() []prompts.FewShotExample

// CorrectionSource looks up user-corrected SQL for a question asked before.
// A hit is reused verbatim instead of asking the model again; the corrected
// SQL was already validated when it was submitted and is validated again
// downstream.
type CorrectionSource func(question string) (string, bool)

// ModelGeneratorOption customizes construction.
type ModelGeneratorOption func(*ModelGenerator)

// WithExamples overrides the default few-shot examples.
func WithExamples(examples []prompts.FewShotExample) ModelGeneratorOption {
	return func(g *ModelGenerator) { g.examples = examples }
}

// WithExampleSource appends dynamically sourced examples after the static
// ones on every generation.
func WithExampleSource(src ExampleSource) ModelGeneratorOption {
	return func(g *ModelGenerator) { g.exampleSource = src }
}

// WithCorrectionSource enables exact-question correction reuse.
func WithCorrectionSource(src CorrectionSource) ModelGeneratorOption {
	return func(g *ModelGenerator) { g.corrections = src }
}

// NewModelGenerator creates the model-backed generation strategy.
func NewModelGenerator(client llm.Client, layer *semantic.Layer, schema, dialect string, logger *zap.Logger, opts ...ModelGeneratorOption) *ModelGenerator {
	g := &ModelGenerator{
		llm:      client,
		layer:    layer,
		schema:   schema,
		dialect:  dialect,
		examples: defaultExamples(),
		logger:   logger.Named("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func defaultExamples() []prompts.FewShotExample {
	return []prompts.FewShotExample{
		{
			Question: "Show all customers",
			SQL:      "SELECT id, name, email, created_at FROM customers LIMIT 100",
		},
		{
			Question: "Total revenue by month",
			SQL:      "SELECT strftime('%Y-%m', order_date) as month, SUM(total_amount) as revenue FROM orders GROUP BY month ORDER BY month DESC LIMIT 12",
		},
		{
			Question: "Top 10 products by sales",
			SQL:      "SELECT p.name, COALESCE(SUM(oi.quantity), 0) as total_sold FROM products p JOIN order_items oi ON p.id = oi.product_id GROUP BY p.id, p.name ORDER BY total_sold DESC LIMIT 10",
		},
	}
}

// Generate produces a candidate query from the question.
func (g *ModelGenerator) Generate(ctx context.Context, question, conversationContext string, intent models.Intent) (models.CandidateQuery, error) {
	if g.corrections != nil {
		if corrected, ok := g.corrections(question); ok {
			g.logger.Info("reusing corrected query for repeated question",
				zap.String("category", string(intent.Category)))
			return models.CandidateQuery{
				SQL:         corrected,
				Explanation: "Reused a user-corrected query for this question.",
				Confidence:  1.0,
			}, nil
		}
	}

	mappings := ""
	translated := question
	if g.layer != nil {
		mappings = g.layer.Describe()
		translated = g.layer.TranslateQuestion(question)
	}

	examples := g.examples
	if g.exampleSource != nil {
		if learned := g.exampleSource(); len(learned) > 0 {
			examples = append(append([]prompts.FewShotExample(nil), examples...), learned...)
		}
	}

	prompt := prompts.BuildSQLPrompt(prompts.SQLPromptInput{
		Question:         translated,
		Dialect:          g.dialect,
		Schema:           g.schema,
		SemanticMappings: mappings,
		Context:          conversationContext,
		Examples:         examples,
	})

	response, err := g.llm.GenerateResponse(ctx, prompt, prompts.SQLSystemMessage, generateTemperature)
	if err != nil {
		return models.CandidateQuery{}, err
	}

	candidate, err := parseCandidate(response)
	if err != nil {
		return models.CandidateQuery{}, err
	}

	g.logger.Debug("generated candidate query",
		zap.String("category", string(intent.Category)),
		zap.Float64("confidence", candidate.Confidence))

	return candidate, nil
}

func parseCandidate(response string) (models.CandidateQuery, error) {
	jsonStr, err := llm.ExtractJSON(response)
	if err != nil {
		return models.CandidateQuery{}, fmt.Errorf("parsing generation response: %w", err)
	}

	var candidate models.CandidateQuery
	if err := json.Unmarshal([]byte(jsonStr), &candidate); err != nil {
		return models.CandidateQuery{}, fmt.Errorf("parsing generation response: %w", err)
	}
	if candidate.SQL == "" {
		return models.CandidateQuery{}, fmt.Errorf("generation response contained no sql")
	}
	if candidate.Confidence == 0 {
		candidate.Confidence = 0.8
	}
	return candidate, nil
}

var _ Generator = (*ModelGenerator)(nil)
