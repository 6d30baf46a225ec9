// Package datasource defines the execution contract against external
// databases and the registry of backend connectors.
package datasource

import (
	"context"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// Connector executes validated read-only SQL against one database backend.
// Each implementation owns its connection and must be closed when done.
type Connector interface {
	// Execute runs a query and returns its rows.
	Execute(ctx context.Context, query string) (*models.ExecutionResult, error)

	// TestConnection verifies the database is reachable with valid
	// credentials.
	TestConnection(ctx context.Context) error

	// SchemaDescription renders the table/column layout for inclusion in
	// generation prompts.
	SchemaDescription(ctx context.Context) (string, error)

	// Dialect names the SQL dialect ("postgres", "sqlserver", ...).
	Dialect() string

	// Close releases the database connection.
	Close() error
}

// Config holds connection settings for a backend.
type Config struct {
	Host     string `yaml:"host" env:"DS_HOST"`
	Port     int    `yaml:"port" env:"DS_PORT"`
	Database string `yaml:"database" env:"DS_DATABASE"`
	User     string `yaml:"user" env:"DS_USER"`
	Password string `yaml:"password" env:"DS_PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"DS_SSL_MODE" env-default:"prefer"`
}
