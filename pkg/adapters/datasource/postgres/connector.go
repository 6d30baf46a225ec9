// Package postgres implements the datasource connector for PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

const defaultPort = 5432

// Connector executes queries against a PostgreSQL database.
type Connector struct {
	pool *pgxpool.Pool
}

// NewConnector opens a connection pool for the given config.
func NewConnector(ctx context.Context, cfg *datasource.Config) (*Connector, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	pool, err := pgxpool.New(ctx, connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Connector{pool: pool}, nil
}

func connectionString(cfg *datasource.Config) string {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host, port, cfg.Database, sslMode)
}

// Execute runs a query and collects its rows.
func (c *Connector) Execute(ctx context.Context, query string) (*models.ExecutionResult, error) {
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make([]any, len(values))
		copy(row, values)
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &models.ExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// TestConnection pings the database.
func (c *Connector) TestConnection(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// SchemaDescription lists user tables and their columns from
// information_schema, rendered for generation prompts.
func (c *Connector) SchemaDescription(ctx context.Context) (string, error) {
	const query = `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_name, ordinal_position`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	currentTable := ""
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		if table != currentTable {
			if currentTable != "" {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("Table %s:\n", table))
			currentTable = table
		}
		b.WriteString(fmt.Sprintf("  - %s (%s)\n", column, dataType))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate schema rows: %w", err)
	}
	return b.String(), nil
}

// Dialect returns "postgres".
func (c *Connector) Dialect() string { return "postgres" }

// Close releases the pool.
func (c *Connector) Close() error {
	c.pool.Close()
	return nil
}

var _ datasource.Connector = (*Connector)(nil)
