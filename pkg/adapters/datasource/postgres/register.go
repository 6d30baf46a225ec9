package postgres

import (
	"context"

	"github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.ConnectorInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "Connect to PostgreSQL 12+, Aurora PostgreSQL, Supabase",
		},
		Factory: func(ctx context.Context, cfg *datasource.Config) (datasource.Connector, error) {
			return NewConnector(ctx, cfg)
		},
	})
}
