package store

import (
	"path/filepath"
	"testing"
)

// stores under test share one behavioral contract.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("missing"); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := s.Get("k"); err != nil || got != "v1" {
		t.Errorf("Get(k) = %q, %v, want v1", got, err)
	}

	// Overwrite replaces the value.
	if err := s.Set("k", "v2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := s.Get("k"); got != "v2" {
		t.Errorf("Get(k) = %q, want v2 after overwrite", got)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("k"); err != ErrNotFound {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}

	// Deleting an absent key is not an error.
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("Delete(absent) error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStoreContract(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	testStoreContract(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.db")

	s1, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s1.Set(KeyAuthToken, "tok-abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s1.Set(KeyConversationID, "42"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })

	if got, err := s2.Get(KeyAuthToken); err != nil || got != "tok-abc" {
		t.Errorf("Get(%s) = %q, %v, want tok-abc", KeyAuthToken, got, err)
	}
	if got, err := s2.Get(KeyConversationID); err != nil || got != "42" {
		t.Errorf("Get(%s) = %q, %v, want 42", KeyConversationID, got, err)
	}
}
