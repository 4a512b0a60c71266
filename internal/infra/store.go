package infra

import (
	"context"
	"fmt"

	"github.com/firstcare-health/member-registry/internal/config"
	"github.com/firstcare-health/member-registry/internal/registry"
)

// NewStore opens the registry backend selected by cfg.StoreDriver and
// ensures its schema exists.
func NewStore(ctx context.Context, cfg config.Config) (registry.Store, error) {
	var store registry.Store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = registry.NewPostgresStore(pool)
	case config.StoreSQLite:
		db, err := NewSQLiteDB(ctx, cfg.StorePath)
		if err != nil {
			return nil, err
		}
		store = registry.NewSQLiteStore(db)
	case config.StoreMemory:
		store = registry.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
