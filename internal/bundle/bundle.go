// Package bundle holds extracted features for one dataset split together
// with the parallel ids and labels.
package bundle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/go-sod/b2t/pkg/math/vector"
)

const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

var (
	ErrInconsistentFeatureLength = errors.New("inconsistent feature length")
	ErrRowMismatch               = errors.New("features, ids and labels are not parallel")
	ErrEmptyBundle               = errors.New("empty bundle")
	ErrNotFound                  = errors.New("bundle not found")
	ErrCorrupt                   = errors.New("corrupt bundle payload")
)

// Store persists bundles keyed by split name.
type Store interface {
	Save(ctx context.Context, b *Bundle) error
	Load(ctx context.Context, split string) (*Bundle, error)
}

// StoreCloser is a Store that owns its connection or file.
type StoreCloser interface {
	Store
	Close() error
}

// ProvideFn opens the store that holds split.
type ProvideFn func(ctx context.Context, split string) (StoreCloser, error)

// Bundle is the feature matrix of a split. Row order is significant: row i
// of Features belongs to IDs[i] and, when present, Labels[i]. A nil Labels
// slice marks an unlabeled split.
type Bundle struct {
	ID       uuid.UUID
	Split    string
	Dim      int
	Features []vector.V
	IDs      []string
	Labels   []string
}

// New assembles and validates a bundle. Dim is taken from the first row.
func New(split string, features []vector.V, ids, labels []string) (*Bundle, error) {
	b := &Bundle{
		ID:       uuid.New(),
		Split:    split,
		Features: features,
		IDs:      ids,
		Labels:   labels,
	}
	if len(features) > 0 {
		b.Dim = len(features[0])
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) Len() int {
	return len(b.Features)
}

func (b *Bundle) Labeled() bool {
	return b.Labels != nil
}

func (b *Bundle) Validate() error {
	if len(b.IDs) != len(b.Features) {
		return fmt.Errorf("%w: %d feature rows, %d ids", ErrRowMismatch, len(b.Features), len(b.IDs))
	}
	if b.Labels != nil && len(b.Labels) != len(b.Features) {
		return fmt.Errorf("%w: %d feature rows, %d labels", ErrRowMismatch, len(b.Features), len(b.Labels))
	}
	for i := range b.Features {
		if len(b.Features[i]) != b.Dim {
			return fmt.Errorf(
				"%w: row %d (%s) has %d features, expected %d",
				ErrInconsistentFeatureLength, i, b.IDs[i], len(b.Features[i]), b.Dim,
			)
		}
	}
	return nil
}
