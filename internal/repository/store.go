package repository

// store.go provides the durable mirror of the in-memory collection.
//
// The persistence boundary is a single key-value slot holding the full
// collection as JSON. Writes serialize everything; reads tolerate a missing
// slot (empty collection) and malformed JSON (log + reset) rather than
// crashing, because losing the mirror must never take the service down.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/contractreg/contractreg/internal/contract"
)

// Snapshot is the serializable shape of the persistence slot.
type Snapshot struct {
	Records []contract.Contract `json:"records"`
	SavedAt time.Time           `json:"savedAt"`
}

// Store persists and restores the full record collection.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}

// FileStore keeps the snapshot in a single JSON file. Saves go through a
// temp file and rename so a crash mid-write never corrupts the slot.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot. A missing file yields an empty collection;
// malformed JSON is logged and reset to empty instead of failing startup.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("snapshot is malformed, resetting to empty collection",
			"path", s.path,
			"error", err,
		)
		return Snapshot{}, nil
	}

	return snap, nil
}
