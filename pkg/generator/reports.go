package generator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// ReportTemplate is a predefined, parameterized report query. Parameters
// appear in the SQL as {name} placeholders.
type ReportTemplate struct {
	Key           string   `yaml:"key"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Keywords      []string `yaml:"keywords"`
	SQLTemplate   string   `yaml:"sql"`
	Parameters    []string `yaml:"parameters"`
	OutputColumns []string `yaml:"output_columns"`
}

// ReportLibrary holds the template set, in matching priority order.
type ReportLibrary struct {
	Templates []ReportTemplate `yaml:"templates"`
}

// LoadReportLibrary reads templates from a YAML file, falling back to the
// built-in set when the path is empty or the file does not exist.
func LoadReportLibrary(path string) (*ReportLibrary, error) {
	if path == "" {
		return defaultReportLibrary(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultReportLibrary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report templates: %w", err)
	}

	var lib ReportLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing report templates: %w", err)
	}
	return &lib, nil
}

// Match finds the first template whose keywords appear in the request.
func (l *ReportLibrary) Match(request string) (ReportTemplate, bool) {
	lower := strings.ToLower(request)
	for _, t := range l.Templates {
		for _, kw := range t.Keywords {
			if strings.Contains(lower, kw) {
				return t, true
			}
		}
	}
	return ReportTemplate{}, false
}

// Render substitutes parameters into the template SQL. Missing parameters
// take the library defaults.
func (t ReportTemplate) Render(params map[string]string) string {
	defaults := map[string]string{
		"period":     "strftime('%Y-%m', order_date)",
		"start_date": "date('now', '-30 days')",
		"end_date":   "date('now')",
		"limit":      "20",
	}
	for k, v := range params {
		defaults[k] = v
	}

	sql := t.SQLTemplate
	for k, v := range defaults {
		sql = strings.ReplaceAll(sql, "{"+k+"}", v)
	}
	return strings.TrimSpace(sql)
}

// ReportGenerator serves report intents: it first matches the request
// against the template library and only falls back to model generation
// when no template matches.
type ReportGenerator struct {
	library  *ReportLibrary
	fallback Generator
	logger   *zap.Logger
}

// NewReportGenerator creates the report strategy.
func NewReportGenerator(library *ReportLibrary, fallback Generator, logger *zap.Logger) *ReportGenerator {
	return &ReportGenerator{
		library:  library,
		fallback: fallback,
		logger:   logger.Named("generator.report"),
	}
}

// Generate resolves a report request.
func (g *ReportGenerator) Generate(ctx context.Context, question, conversationContext string, intent models.Intent) (models.CandidateQuery, error) {
	if t, ok := g.library.Match(question); ok {
		g.logger.Debug("matched report template", zap.String("template", t.Key))
		return models.CandidateQuery{
			SQL:         t.Render(nil),
			Explanation: t.Description,
			Confidence:  0.9,
		}, nil
	}

	if g.fallback == nil {
		return models.CandidateQuery{}, fmt.Errorf("no report template matches the request")
	}

	g.logger.Debug("no report template matched, using model generation")
	return g.fallback.Generate(ctx, question, conversationContext, intent)
}

func defaultReportLibrary() *ReportLibrary {
	return &ReportLibrary{Templates: []ReportTemplate{
		{
			Key:         "sales_summary",
			Name:        "Sales Summary",
			Description: "Daily/Weekly/Monthly sales overview",
			Keywords:    []string{"sales", "bán hàng", "doanh số", "revenue summary"},
			SQLTemplate: `SELECT {period} as period, COUNT(*) as total_orders, SUM(total_amount) as revenue, AVG(total_amount) as avg_order_value
FROM orders
WHERE order_date >= {start_date} AND order_date < {end_date}
GROUP BY {period}
ORDER BY period`,
			Parameters:    []string{"period", "start_date", "end_date"},
			OutputColumns: []string{"period", "total_orders", "revenue", "avg_order_value"},
		},
		{
			Key:         "customer_report",
			Name:        "Customer Report",
			Description: "Customer analysis and segmentation",
			Keywords:    []string{"customer", "khách hàng", "client"},
			SQLTemplate: `SELECT c.id, c.name, c.email, c.city, COUNT(o.id) as order_count, SUM(o.total_amount) as total_spent, MAX(o.order_date) as last_order
FROM customers c
LEFT JOIN orders o ON c.id = o.customer_id
GROUP BY c.id, c.name, c.email, c.city
ORDER BY total_spent DESC
LIMIT {limit}`,
			Parameters:    []string{"limit"},
			OutputColumns: []string{"id", "name", "email", "city", "order_count", "total_spent", "last_order"},
		},
		{
			Key:         "product_performance",
			Name:        "Product Performance",
			Description: "Top performing products",
			Keywords:    []string{"product", "sản phẩm", "top product", "best selling"},
			SQLTemplate: `SELECT p.name as product, SUM(oi.quantity) as units_sold, SUM(oi.quantity * oi.unit_price) as revenue
FROM products p
JOIN order_items oi ON p.id = oi.product_id
JOIN orders o ON oi.order_id = o.id
WHERE o.order_date >= {start_date}
GROUP BY p.id, p.name
ORDER BY revenue DESC
LIMIT {limit}`,
			Parameters:    []string{"start_date", "limit"},
			OutputColumns: []string{"product", "units_sold", "revenue"},
		},
		{
			Key:         "inventory_status",
			Name:        "Inventory Status",
			Description: "Current inventory levels and reorder alerts",
			Keywords:    []string{"inventory", "tồn kho", "stock", "kho"},
			SQLTemplate: `SELECT p.name, p.stock, CASE WHEN p.stock < 10 THEN 'REORDER' ELSE 'OK' END as status
FROM products p
ORDER BY status DESC, stock ASC`,
			OutputColumns: []string{"name", "stock", "status"},
		},
		{
			Key:         "revenue_by_region",
			Name:        "Revenue by Region",
			Description: "Geographic revenue breakdown",
			Keywords:    []string{"region", "vùng", "khu vực", "city", "thành phố"},
			SQLTemplate: `SELECT c.city as region, COUNT(DISTINCT c.id) as customers, COUNT(o.id) as orders, SUM(o.total_amount) as revenue
FROM customers c
JOIN orders o ON c.id = o.customer_id
WHERE o.order_date >= {start_date}
GROUP BY c.city
ORDER BY revenue DESC`,
			Parameters:    []string{"start_date"},
			OutputColumns: []string{"region", "customers", "orders", "revenue"},
		},
	}}
}

var _ Generator = (*ReportGenerator)(nil)
