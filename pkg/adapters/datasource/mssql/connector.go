// Package mssql implements the datasource connector for SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

const defaultPort = 1433

// Connector executes queries against a SQL Server database.
type Connector struct {
	db *sql.DB
}

// NewConnector opens a connection for the given config.
func NewConnector(_ context.Context, cfg *datasource.Config) (*Connector, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	db, err := sql.Open("sqlserver", connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to sqlserver: %w", err)
	}
	return &Connector{db: db}, nil
}

func connectionString(cfg *datasource.Config) string {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	query := url.Values{}
	query.Add("database", cfg.Database)

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host, port, query.Encode())
}

// Execute runs a query and collects its rows.
func (c *Connector) Execute(ctx context.Context, query string) (*models.ExecutionResult, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		resultRows = append(resultRows, values)
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
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlserver: %w", err)
	}
	return nil
}

// SchemaDescription lists user tables and their columns from
// INFORMATION_SCHEMA, rendered for generation prompts.
func (c *Connector) SchemaDescription(ctx context.Context) (string, error) {
	const query = `
		SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
		ORDER BY TABLE_NAME, ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, query)
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

// Dialect returns "sqlserver".
func (c *Connector) Dialect() string { return "sqlserver" }

// Close releases the connection.
func (c *Connector) Close() error { return c.db.Close() }

var _ datasource.Connector = (*Connector)(nil)
