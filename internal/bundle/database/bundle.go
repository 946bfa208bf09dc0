package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/database"
)

const prefix = "bundle:"

var _ bundle.StoreCloser = (*DB)(nil)

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

// DB stores each split in its own bucket named bundle:<split>.
type DB struct {
	sDB *database.DB
}

func bucketName(split string) []byte {
	return []byte(prefix + split)
}

// Save replaces the stored bundle for b.Split in a single transaction.
func (db *DB) Save(_ context.Context, b *bundle.Bundle) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		return PutTx(tx, b)
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}
	return nil
}

func (db *DB) Load(_ context.Context, split string) (*bundle.Bundle, error) {
	var b *bundle.Bundle
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		var err error
		b, err = GetTx(tx, split)
		return err
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}
	return b, nil
}

func (db *DB) Delete(_ context.Context, split string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(bucketName(split))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}
	return nil
}

// Close closes the underlying bolt file.
func (db *DB) Close() error {
	return db.sDB.Close(context.Background())
}

// Splits lists the stored split names in lexical order.
func (db *DB) Splits() ([]string, error) {
	var splits []string
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if key := string(name); strings.HasPrefix(key, prefix) {
				splits = append(splits, strings.TrimPrefix(key, prefix))
			}
			return nil
		})
	})
	sort.Strings(splits)
	return splits, err
}

// PutTx writes b inside an open read-write transaction, dropping whatever
// was stored for the split before.
func PutTx(tx *bolt.Tx, b *bundle.Bundle) error {
	parts, err := bundle.Encode(b)
	if err != nil {
		return err
	}
	name := bucketName(b.Split)
	if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
		return fmt.Errorf("drop bucket %s: %w", name, err)
	}
	bucket, err := tx.CreateBucket(name)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", name, err)
	}
	for _, part := range bundle.Parts {
		if err := bucket.Put([]byte(part), parts[part]); err != nil {
			return fmt.Errorf("put %s to bucket %s: %w", part, name, err)
		}
	}
	return nil
}

// GetTx reads the split inside an open transaction. Values are decoded
// before the transaction ends.
func GetTx(tx *bolt.Tx, split string) (*bundle.Bundle, error) {
	bucket := tx.Bucket(bucketName(split))
	if bucket == nil {
		return nil, fmt.Errorf("%w: split %q", bundle.ErrNotFound, split)
	}
	parts := make(map[string][]byte, len(bundle.Parts))
	for _, part := range bundle.Parts {
		if v := bucket.Get([]byte(part)); v != nil {
			parts[part] = v
		}
	}
	b, err := bundle.Decode(parts)
	if err != nil {
		return nil, fmt.Errorf("split %q: %w", split, err)
	}
	return b, nil
}
