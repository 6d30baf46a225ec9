// Package llm provides clients for the text-generation backends and the
// gateway that wraps them with timeouts, retry, and fallback.
package llm

import "context"

// Client is the contract a generation backend fulfills. Implementations are
// the OpenAI-compatible client, the Anthropic client, and test mocks.
type Client interface {
	// GenerateResponse produces a completion for the prompt.
	GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name, for logging.
	Model() string
}

// Compile-time interface checks.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
