// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/catalog"
	"github.com/starford/mannaz/internal/storage"
	"github.com/starford/mannaz/internal/vault"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mannaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary vault directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	if err := vault.EnsureStructure(vaultDir); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestVault creates a vault over a temporary directory with a fixed clock,
// so last_session stamps are deterministic.
func TestVault(t *testing.T, day string) *vault.Vault {
	t.Helper()
	_, store := TestStore(t)
	now, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatal(err)
	}
	return vault.NewWithClock(store, func() time.Time { return now })
}
