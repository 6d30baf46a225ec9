package mssql

import (
	"context"

	"github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.ConnectorInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2016+ and Azure SQL",
		},
		Factory: func(ctx context.Context, cfg *datasource.Config) (datasource.Connector, error) {
			return NewConnector(ctx, cfg)
		},
	})
}
