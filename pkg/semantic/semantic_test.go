package semantic

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTerm(t *testing.T) {
	l := NewLayer()

	tests := []struct {
		term       string
		wantTable  string
		wantColumn string
	}{
		{"doanh thu", "orders", "total_amount"},
		{"revenue", "orders", "total_amount"}, // synonym
		{"REVENUE", "orders", "total_amount"}, // case-insensitive
		{"customer", "customers", "name"},
		{"customers", "customers", "name"}, // plural resolves to singular
		{"tồn kho", "products", "stock"},
		{"inventory", "products", "stock"},
	}

	for _, tt := range tests {
		m, ok := l.FindTerm(tt.term)
		require.True(t, ok, "term %q should resolve", tt.term)
		assert.Equal(t, tt.wantTable, m.Table)
		assert.Equal(t, tt.wantColumn, m.SQLColumn)
	}

	_, ok := l.FindTerm("nonexistent term")
	assert.False(t, ok)
}

func TestFindValue(t *testing.T) {
	l := NewLayer()

	m, ok := l.FindValue("HN")
	require.True(t, ok)
	assert.Equal(t, "Hanoi", m.ActualValue)
	assert.Equal(t, "city", m.Column)

	m, ok = l.FindValue("đã giao")
	require.True(t, ok)
	assert.Equal(t, "delivered", m.ActualValue)

	_, ok = l.FindValue("XYZ")
	assert.False(t, ok)
}

func TestTranslateQuestion(t *testing.T) {
	l := NewLayer()

	got := l.TranslateQuestion("Show customers from saigon")
	assert.Equal(t, "Show customers from Ho Chi Minh", got)

	// No alias present: unchanged.
	got = l.TranslateQuestion("Show all products")
	assert.Equal(t, "Show all products", got)
}

func TestTableRules(t *testing.T) {
	l := NewLayer()

	r, ok := l.TableRules("orders")
	require.True(t, ok)
	assert.Contains(t, r.CommonColumns, "total_amount")
	assert.NotEmpty(t, r.ExampleQueries)

	r, ok = l.TableRules("ORDERS")
	require.True(t, ok, "table lookup is case-insensitive")

	_, ok = l.TableRules("unknown_table")
	assert.False(t, ok)
}

func TestExamplesForTables(t *testing.T) {
	l := NewLayer()

	examples := l.ExamplesForTables([]string{"customers", "orders"})
	require.NotEmpty(t, examples)
	assert.Equal(t, "All customers from Hanoi", examples[0].Question)
}

func TestDescribe(t *testing.T) {
	l := NewLayer()

	desc := l.Describe()
	assert.Contains(t, desc, "Business Terms")
	assert.Contains(t, desc, "orders.total_amount")
	assert.Contains(t, desc, "Value Aliases")
	assert.Contains(t, desc, "Hanoi")
}

func TestNewLayerFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.json")

	file := mappingsFile{
		TermMappings: []TermMapping{
			{Term: "headcount", SQLColumn: "employee_count", Table: "departments"},
		},
		ValueMappings: []ValueMapping{
			{Alias: "eng", ActualValue: "Engineering", Column: "name", Table: "departments"},
		},
		TableRules: []TableRule{
			{Table: "departments", CommonColumns: []string{"id", "name"}},
		},
	}
	data, err := json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l, err := NewLayerFromFile(path)
	require.NoError(t, err)

	m, ok := l.FindTerm("headcount")
	require.True(t, ok)
	assert.Equal(t, "employee_count", m.SQLColumn)

	_, ok = l.TableRules("departments")
	assert.True(t, ok)

	// Defaults not loaded when a file is given.
	_, ok = l.FindTerm("doanh thu")
	assert.False(t, ok)
}

func TestNewLayerFromFile_MissingFallsBackToDefaults(t *testing.T) {
	l, err := NewLayerFromFile(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, ok := l.FindTerm("doanh thu")
	assert.True(t, ok)
}
