package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
	"github.com/hearthledger/hearthledger/internal/storage/sqlite"
)

// newTestStore creates a SQLite store backed by a temp directory.
func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "hearthledger-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestHousehold persists a household with the given roster; the
// first member is the creator.
func newTestHousehold(t *testing.T, store storage.Store, members ...string) *models.Household {
	t.Helper()
	h := &models.Household{
		Name:      "Test House",
		Members:   members,
		CreatedBy: members[0],
	}
	if err := store.CreateHousehold(context.Background(), h); err != nil {
		t.Fatalf("failed to create household: %v", err)
	}
	return h
}
