package logging

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{
			name:     "key value password",
			input:    "host=db port=5432 password=hunter2 dbname=sales",
			contains: "password=" + RedactedText,
			excludes: "hunter2",
		},
		{
			name:     "url credentials",
			input:    "postgres://app:s3cret@db:5432/sales",
			contains: "://" + RedactedText + "@",
			excludes: "s3cret",
		},
		{
			name:     "no secrets untouched",
			input:    "host=localhost dbname=sales",
			contains: "host=localhost dbname=sales",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeDSN(tt.input)
			if tt.contains != "" && !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, got)
			}
			if tt.excludes != "" && strings.Contains(got, tt.excludes) {
				t.Errorf("secret %q leaked into %q", tt.excludes, got)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	err := errors.New("dial failed: postgres://app:topsecret@db:5432 refused")
	got := SanitizeError(err)
	if strings.Contains(got, "topsecret") {
		t.Errorf("credential leaked: %q", got)
	}

	err = errors.New("request rejected: api_key=sk-abcdef1234567890 invalid")
	got = SanitizeError(err)
	if strings.Contains(got, "sk-abcdef1234567890") {
		t.Errorf("api key leaked: %q", got)
	}

	if SanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestTruncateSQL(t *testing.T) {
	long := strings.Repeat("SELECT * FROM orders ", 20)
	got := TruncateSQL(long)
	if len(got) != MaxSQLLogLength+3 {
		t.Errorf("expected truncated length %d, got %d", MaxSQLLogLength+3, len(got))
	}
	if TruncateSQL("SELECT 1") != "SELECT 1" {
		t.Error("short SQL should pass through unchanged")
	}
}

func TestTruncateSQL_RuneBoundary(t *testing.T) {
	long := "SELECT * FROM orders WHERE city = '" + strings.Repeat("Thành phố Hồ Chí Minh ", 15) + "'"
	got := TruncateSQL(long)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated SQL should carry an ellipsis")
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != MaxSQLLogLength {
		t.Errorf("expected %d runes before the ellipsis, got %d", MaxSQLLogLength, n)
	}
}
