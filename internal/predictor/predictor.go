package predictor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownIndex      = errors.New("unknown index type")
	ErrInvalidK          = errors.New("k must be >= 1")
	ErrNotFitted         = errors.New("decoder is not fitted")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// IndexType selects the nearest-neighbour search structure.
type IndexType string

const (
	IndexBrute  IndexType = "brute"
	IndexKDTree IndexType = "kdtree"
)

// ParseIndex normalizes an index name. Matching is case-insensitive.
func ParseIndex(s string) (IndexType, error) {
	switch t := IndexType(strings.ToLower(strings.TrimSpace(s))); t {
	case IndexBrute, IndexKDTree:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIndex, s)
	}
}

// Neighbor is one training row returned by a KNN search.
type Neighbor struct {
	Index    int
	Distance float64
}

// Index is a nearest-neighbour search structure over training rows. KNN
// returns up to k neighbours ordered by ascending distance; equal distances
// are ordered by ascending training index.
type Index interface {
	Reset()
	Len() int
	Build(points ...[]float64)
	KNN(vec []float64, k int) ([]Neighbor, error)
}

// Record is the ranked answer for one query. Labels, Distances and Indices
// are parallel and ordered by ascending distance.
type Record struct {
	QueryID   string    `json:"id"`
	Labels    []string  `json:"labels"`
	Distances []float64 `json:"distances"`
	Indices   []int     `json:"indices"`
}

// Candidates returns the distinct labels of r in rank order, keeping the
// first occurrence of each, truncated to n. n <= 0 returns all of them.
func (r Record) Candidates(n int) []string {
	seen := make(map[string]struct{}, len(r.Labels))
	out := make([]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		if n > 0 && len(out) == n {
			break
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Top returns the best label, or "" for an empty record.
func (r Record) Top() string {
	if len(r.Labels) == 0 {
		return ""
	}
	return r.Labels[0]
}
