package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/firstcare-health/member-registry/internal/config"
)

func TestNewStoreSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "registration.db")

	store, err := NewStore(ctx, config.Config{StoreDriver: config.StoreSQLite, StorePath: path})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer store.Close()

	sess, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer sess.Release()

	n, err := sess.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

func TestNewStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := NewStore(context.Background(), config.Config{StoreDriver: "mongo"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestNewPostgresPoolRequiresURL(t *testing.T) {
	if _, err := NewPostgresPool(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestNewRedisClientOptional(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "")
	if err != nil || client != nil {
		t.Fatalf("expected nil client without url, got %v, %v", client, err)
	}
}
