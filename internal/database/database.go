package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/b2t/internal/logging"
)

type DB struct {
	DB *bolt.DB
}

// Open opens (creating when missing) the bolt file at path.
func Open(ctx context.Context, path string) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Debugf("opening bolt file %s", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file %s: %w", path, err)
	}

	return &DB{DB: db}, nil
}

// OpenReadOnly opens an existing bolt file without taking the write lock.
func OpenReadOnly(ctx context.Context, path string) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Debugf("opening bolt file %s read-only", path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening bolt file %s: %w", path, err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file %s: %w", path, err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Debugf("closing bolt file %s", db.DB.Path())

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("error close bolt file: %w", err)
	}

	return nil
}
