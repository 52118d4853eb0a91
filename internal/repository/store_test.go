package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contractreg/contractreg/internal/contract"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "contracts.json")
	store := NewFileStore(path)

	snap := Snapshot{
		Records: []contract.Contract{
			{ID: "1", BusinessID: "C-100", Title: strPtr("Wartung"), Status: contract.StatusCreated},
		},
		SavedAt: time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC),
	}

	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(loaded.Records))
	}
	if loaded.Records[0].BusinessID != "C-100" {
		t.Errorf("businessId = %q", loaded.Records[0].BusinessID)
	}
	if !loaded.SavedAt.Equal(snap.SavedAt) {
		t.Errorf("savedAt = %v, want %v", loaded.SavedAt, snap.SavedAt)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.json"))

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Errorf("missing file should load as empty, got %d records", len(snap.Records))
	}
}

func TestFileStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	snap, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("malformed snapshot must not fail startup: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Errorf("malformed file should reset to empty, got %d records", len(snap.Records))
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	store := NewFileStore(path)

	for i, id := range []string{"C-1", "C-2"} {
		snap := Snapshot{Records: []contract.Contract{{ID: "x", BusinessID: id}}}
		if err := store.Save(context.Background(), snap); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Records) != 1 || loaded.Records[0].BusinessID != "C-2" {
		t.Errorf("latest save must win, got %+v", loaded.Records)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want just the snapshot", len(entries))
	}
}
