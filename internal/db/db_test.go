package db

import (
	"context"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestGetMissingKey(t *testing.T) {
	database := setupTestDB(t)

	value, ok, err := database.Get(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Errorf("expected missing key, got %q", value)
	}
}

func TestSetAndGet(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	if err := database.Set(ctx, "tasks", `[]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := database.Set(ctx, "tasks", `["a"]`); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}

	value, ok, err := database.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if value != `["a"]` {
		t.Errorf("expected overwritten value, got %q", value)
	}
}

func TestDeleteAndClear(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	database.Set(ctx, "tasks", `[]`)
	database.Set(ctx, "favorites", `[]`)

	if err := database.Delete(ctx, "tasks"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := database.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}

	if _, ok, _ := database.Get(ctx, "tasks"); ok {
		t.Error("expected tasks to be deleted")
	}
	if _, ok, _ := database.Get(ctx, "favorites"); !ok {
		t.Error("expected favorites to remain")
	}

	if err := database.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, _ := database.Get(ctx, "favorites"); ok {
		t.Error("expected no keys after Clear")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "favtasks.db")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := first.Set(ctx, "favorites", `[{"index":0}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, "favorites")
	if err != nil || !ok {
		t.Fatalf("expected stored value after reopen, ok=%v err=%v", ok, err)
	}
	if value != `[{"index":0}]` {
		t.Errorf("unexpected value %q", value)
	}
}

func TestClosedDatabaseReturnsErrors(t *testing.T) {
	database, err := New(":memory:")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	database.Close()

	if err := database.Set(context.Background(), "tasks", `[]`); err == nil {
		t.Error("expected error writing to a closed database")
	}
}
