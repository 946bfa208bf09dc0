// Package redisdb stores bundles in Redis, one key per payload part.
package redisdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/database"
)

var _ bundle.StoreCloser = (*DB)(nil)

// NewFromConfig connects to the configured Redis server and pings it.
func NewFromConfig(ctx context.Context, cfg *database.Config) (*DB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	return New(client, cfg.RedisPrefix), nil
}

func New(client redis.UniversalClient, prefix string) *DB {
	return &DB{client: client, prefix: prefix}
}

type DB struct {
	client redis.UniversalClient
	prefix string
}

// Key returns <prefix>:bundle:<split>:<part>.
func (db *DB) Key(split, part string) string {
	return fmt.Sprintf("%s:bundle:%s:%s", db.prefix, split, part)
}

// Save writes every part of b in one MULTI/EXEC transaction.
func (db *DB) Save(ctx context.Context, b *bundle.Bundle) error {
	parts, err := bundle.Encode(b)
	if err != nil {
		return err
	}
	if _, err := db.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, part := range bundle.Parts {
			pipe.Set(ctx, db.Key(b.Split, part), parts[part], 0)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("store %s bundle: %w", b.Split, err)
	}
	return nil
}

func (db *DB) Load(ctx context.Context, split string) (*bundle.Bundle, error) {
	keys := make([]string, len(bundle.Parts))
	for i, part := range bundle.Parts {
		keys[i] = db.Key(split, part)
	}
	values, err := db.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s bundle: %w", split, err)
	}
	parts := make(map[string][]byte, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: key %s holds %T", bundle.ErrCorrupt, keys[i], v)
		}
		parts[bundle.Parts[i]] = []byte(s)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: split %q", bundle.ErrNotFound, split)
	}
	b, err := bundle.Decode(parts)
	if err != nil {
		return nil, fmt.Errorf("split %q: %w", split, err)
	}
	return b, nil
}

func (db *DB) Delete(ctx context.Context, split string) error {
	keys := make([]string, len(bundle.Parts))
	for i, part := range bundle.Parts {
		keys[i] = db.Key(split, part)
	}
	if err := db.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete %s bundle: %w", split, err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.client.Close()
}
