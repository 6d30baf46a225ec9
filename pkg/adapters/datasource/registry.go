package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ConnectorInfo describes a registered connector type.
type ConnectorInfo struct {
	Type        string `json:"type"`         // "postgres", "sqlserver"
	DisplayName string `json:"display_name"` // "PostgreSQL"
	Description string `json:"description"`
}

// Registration holds info plus the factory for one connector type.
type Registration struct {
	Info    ConnectorInfo
	Factory func(ctx context.Context, cfg *Config) (Connector, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register is called by each connector package's init().
// Thread-safe for concurrent init() calls.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// New creates a connector of the given type from the registry.
func New(ctx context.Context, dsType string, cfg *Config) (Connector, error) {
	registryMu.RLock()
	reg, ok := registry[dsType]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported datasource type: %s (not compiled in)", dsType)
	}
	return reg.Factory(ctx, cfg)
}

// RegisteredTypes returns info for all registered connector types, sorted
// by type name for stable output.
func RegisteredTypes() []ConnectorInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ConnectorInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// IsRegistered checks whether a connector type is available.
func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}
