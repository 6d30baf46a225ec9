package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "bare object",
			input:    `{"category": "data_retrieval", "confidence": 0.9}`,
			expected: `{"category": "data_retrieval", "confidence": 0.9}`,
		},
		{
			name:     "markdown fenced",
			input:    "```json\n{\"category\": \"report_generation\"}\n```",
			expected: `{"category": "report_generation"}`,
		},
		{
			name:     "surrounded by prose",
			input:    `Here is the classification: {"category": "unknown"} Hope that helps!`,
			expected: `{"category": "unknown"}`,
		},
		{
			name:     "nested object",
			input:    `{"outer": {"inner": [1, 2, 3]}}`,
			expected: `{"outer": {"inner": [1, 2, 3]}}`,
		},
		{
			name:     "braces inside string values",
			input:    `{"sql": "SELECT '{' FROM t"}`,
			expected: `{"sql": "SELECT '{' FROM t"}`,
		},
		{
			name:     "escaped quotes in strings",
			input:    `{"text": "she said \"hi\""}`,
			expected: `{"text": "she said \"hi\""}`,
		},
		{
			name:     "array response",
			input:    `The examples: [{"q": "a"}, {"q": "b"}]`,
			expected: `[{"q": "a"}, {"q": "b"}]`,
		},
		{
			name:    "no json at all",
			input:   "I cannot answer that question.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			input:   `{"category": "data_retrieval"`,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
