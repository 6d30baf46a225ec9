// Package generator turns a classified question into a candidate SQL
// query. Routing from intent category to generation strategy lives here;
// the actual text generation is delegated to the llm package.
package generator

import (
	"context"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// Generator produces a candidate query for a question.
type Generator interface {
	Generate(ctx context.Context, question, conversationContext string, intent models.Intent) (models.CandidateQuery, error)
}

// Router maps an intent category to the generation strategy that serves
// it. The mapping is total: categories without a dedicated strategy fall
// through to the default generator.
type Router struct {
	strategies map[models.IntentCategory]Generator
	fallback   Generator
}

// NewRouter builds the routing table. The default generator serves ad-hoc
// retrieval, query assistance, and every category without its own entry.
func NewRouter(defaultGen, reportGen, insightGen Generator) *Router {
	strategies := map[models.IntentCategory]Generator{
		models.IntentDataRetrieval:   defaultGen,
		models.IntentQueryAssistance: defaultGen,
	}
	if reportGen != nil {
		strategies[models.IntentReportGeneration] = reportGen
	}
	if insightGen != nil {
		strategies[models.IntentInsightGeneration] = insightGen
	}
	return &Router{strategies: strategies, fallback: defaultGen}
}

// Route resolves the generator for an intent. Never returns nil.
func (r *Router) Route(intent models.Intent) Generator {
	if g, ok := r.strategies[intent.Category]; ok {
		return g
	}
	return r.fallback
}

// Generate routes and runs the generation in one step.
func (r *Router) Generate(ctx context.Context, question, conversationContext string, intent models.Intent) (models.CandidateQuery, error) {
	return r.Route(intent).Generate(ctx, question, conversationContext, intent)
}
