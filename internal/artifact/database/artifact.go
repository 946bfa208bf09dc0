package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/b2t/internal/artifact"
	"github.com/go-sod/b2t/internal/bundle"
	bundleDb "github.com/go-sod/b2t/internal/bundle/database"
	"github.com/go-sod/b2t/internal/database"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/geom"
)

const (
	modelBucket = "model"
	metaKey     = "meta"
	// formatVersion is bumped whenever meta changes shape.
	formatVersion = 1
)

type meta struct {
	Version    uint32
	ID         string
	K          int32
	Metric     string
	Method     string
	Window     int32
	Stride     int32
	Length     int32
	CreatedAt  int64
	TrainSplit string
}

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// Save writes the model and its training bundle in one transaction,
// replacing any model stored before.
func (db *DB) Save(_ context.Context, m *artifact.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	payload, err := bundle.Marshal(meta{
		Version:    formatVersion,
		ID:         m.ID.String(),
		K:          int32(m.K),
		Metric:     string(m.Metric),
		Method:     string(m.Method),
		Window:     int32(m.Window.Window),
		Stride:     int32(m.Window.Stride),
		Length:     int32(m.Window.Length),
		CreatedAt:  m.CreatedAt.UnixNano(),
		TrainSplit: m.Train.Split,
	})
	if err != nil {
		return fmt.Errorf("encode model meta: %w", err)
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(modelBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(metaKey), payload); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return bundleDb.PutTx(tx, m.Train)
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}
	return nil
}

func (db *DB) Load(_ context.Context) (*artifact.Model, error) {
	var m *artifact.Model
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(modelBucket))
		if b == nil {
			return artifact.ErrNotFound
		}
		payload := b.Get([]byte(metaKey))
		if payload == nil {
			return artifact.ErrNotFound
		}
		var md meta
		if err := bundle.Unmarshal(payload, &md); err != nil {
			return fmt.Errorf("decode model meta: %w", err)
		}
		if md.Version != formatVersion {
			return fmt.Errorf("unsupported model format version %d", md.Version)
		}
		id, err := uuid.Parse(md.ID)
		if err != nil {
			return fmt.Errorf("decode model id: %w", err)
		}
		train, err := bundleDb.GetTx(tx, md.TrainSplit)
		if err != nil {
			return err
		}
		m = &artifact.Model{
			ID:        id,
			K:         int(md.K),
			Metric:    geom.MetricType(md.Metric),
			Method:    extract.Method(md.Method),
			Window:    extract.WindowSpec{Window: int(md.Window), Stride: int(md.Stride), Length: int(md.Length)},
			CreatedAt: time.Unix(0, md.CreatedAt).UTC(),
			Train:     train,
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveFile writes m to the bolt file at path.
func SaveFile(ctx context.Context, path string, m *artifact.Model) error {
	db, err := database.Open(ctx, path)
	if err != nil {
		return err
	}
	if err := New(db).Save(ctx, m); err != nil {
		_ = db.Close(ctx)
		return err
	}
	return db.Close(ctx)
}

// LoadFile reads the model stored in the bolt file at path.
func LoadFile(ctx context.Context, path string) (*artifact.Model, error) {
	db, err := database.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)
	return New(db).Load(ctx)
}
