// Package semantic maps business terminology to SQL columns and values.
// It covers English and Vietnamese phrasings so the generation prompt can
// resolve terms like "doanh thu" to orders.total_amount.
package semantic

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jinzhu/inflection"
)

// TermMapping ties a business term to a SQL column.
type TermMapping struct {
	Term        string   `json:"term"`
	SQLColumn   string   `json:"sql_column"`
	Table       string   `json:"table"`
	Description string   `json:"description,omitempty"`
	Synonyms    []string `json:"synonyms,omitempty"`
}

// ValueMapping resolves a user alias to an actual database value.
type ValueMapping struct {
	Alias       string `json:"alias"`
	ActualValue string `json:"actual_value"`
	Column      string `json:"column"`
	Table       string `json:"table"`
}

// JoinHint describes how a table joins to another.
type JoinHint struct {
	Target string `json:"target"`
	On     string `json:"on"`
}

// ExampleQuery is a question/SQL pair used for few-shot prompting.
type ExampleQuery struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// TableRule carries constraints and query patterns for one table.
type TableRule struct {
	Table          string         `json:"table"`
	Description    string         `json:"description,omitempty"`
	CommonColumns  []string       `json:"common_columns,omitempty"`
	JoinHints      []JoinHint     `json:"join_hints,omitempty"`
	ExampleQueries []ExampleQuery `json:"example_queries,omitempty"`
	Notes          []string       `json:"notes,omitempty"`
}

// Layer holds the full terminology mapping set.
type Layer struct {
	termMappings  []TermMapping
	valueMappings []ValueMapping
	tableRules    map[string]TableRule
}

// NewLayer creates a layer preloaded with the default e-commerce mappings.
func NewLayer() *Layer {
	l := &Layer{tableRules: map[string]TableRule{}}
	l.loadDefaults()
	return l
}

// NewLayerFromFile loads mappings from a JSON file, falling back to the
// defaults when the file does not exist.
func NewLayerFromFile(path string) (*Layer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewLayer(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading semantic mappings: %w", err)
	}

	var file mappingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing semantic mappings: %w", err)
	}

	l := &Layer{
		termMappings:  file.TermMappings,
		valueMappings: file.ValueMappings,
		tableRules:    map[string]TableRule{},
	}
	for _, r := range file.TableRules {
		l.tableRules[strings.ToLower(r.Table)] = r
	}
	return l, nil
}

type mappingsFile struct {
	TermMappings  []TermMapping  `json:"term_mappings"`
	ValueMappings []ValueMapping `json:"value_mappings"`
	TableRules    []TableRule    `json:"table_rules,omitempty"`
}

// AddTermMapping registers a business term.
func (l *Layer) AddTermMapping(m TermMapping) {
	m.Term = strings.ToLower(m.Term)
	for i, s := range m.Synonyms {
		m.Synonyms[i] = strings.ToLower(s)
	}
	l.termMappings = append(l.termMappings, m)
}

// AddValueMapping registers a value alias.
func (l *Layer) AddValueMapping(m ValueMapping) {
	m.Alias = strings.ToLower(m.Alias)
	l.valueMappings = append(l.valueMappings, m)
}

// FindTerm resolves a business term (or one of its synonyms) to a column
// mapping. Plural English terms match their singular mapping, so both
// "customer" and "customers" resolve.
func (l *Layer) FindTerm(term string) (TermMapping, bool) {
	lower := strings.ToLower(strings.TrimSpace(term))

	candidates := []string{lower}
	if singular := inflection.Singular(lower); singular != lower {
		candidates = append(candidates, singular)
	}

	for _, candidate := range candidates {
		for _, m := range l.termMappings {
			if m.Term == candidate {
				return m, true
			}
			for _, syn := range m.Synonyms {
				if syn == candidate {
					return m, true
				}
			}
		}
	}
	return TermMapping{}, false
}

// FindValue resolves a value alias to its database value.
func (l *Layer) FindValue(alias string) (ValueMapping, bool) {
	lower := strings.ToLower(strings.TrimSpace(alias))
	for _, m := range l.valueMappings {
		if m.Alias == lower {
			return m, true
		}
	}
	return ValueMapping{}, false
}

// TableRules returns the rules for a table, if known.
func (l *Layer) TableRules(table string) (TableRule, bool) {
	r, ok := l.tableRules[strings.ToLower(table)]
	return r, ok
}

// ExamplesForTables collects few-shot example queries across the named
// tables, preserving rule order.
func (l *Layer) ExamplesForTables(tables []string) []ExampleQuery {
	var out []ExampleQuery
	for _, t := range tables {
		if r, ok := l.TableRules(t); ok {
			out = append(out, r.ExampleQueries...)
		}
	}
	return out
}

// TranslateQuestion replaces known value aliases in a question with their
// database values, improving WHERE clause accuracy downstream.
func (l *Layer) TranslateQuestion(question string) string {
	translated := question
	lower := strings.ToLower(question)
	for _, m := range l.valueMappings {
		if idx := strings.Index(lower, m.Alias); idx >= 0 {
			translated = translated[:idx] + m.ActualValue + translated[idx+len(m.Alias):]
			lower = strings.ToLower(translated)
		}
	}
	return translated
}

// Describe renders the mapping set for inclusion in a generation prompt.
// Output is capped to keep the prompt compact.
func (l *Layer) Describe() string {
	var b strings.Builder
	b.WriteString("## Semantic Mappings\n\n")
	b.WriteString("### Business Terms -> SQL Columns:\n")

	terms := l.termMappings
	if len(terms) > 15 {
		terms = terms[:15]
	}
	for _, m := range terms {
		synonyms := ""
		if len(m.Synonyms) > 0 {
			synonyms = fmt.Sprintf(" (also: %s)", strings.Join(m.Synonyms, ", "))
		}
		b.WriteString(fmt.Sprintf("  - %q%s -> %s.%s\n", m.Term, synonyms, m.Table, m.SQLColumn))
	}

	b.WriteString("\n### Value Aliases:\n")
	values := l.valueMappings
	if len(values) > 10 {
		values = values[:10]
	}
	for _, m := range values {
		b.WriteString(fmt.Sprintf("  - %q -> %q (for %s.%s)\n", m.Alias, m.ActualValue, m.Table, m.Column))
	}

	return b.String()
}
