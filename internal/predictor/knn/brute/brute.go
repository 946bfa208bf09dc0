package brute

import (
	"fmt"
	"sync"

	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/pkg/pqueue"
)

var _ predictor.Index = (*brute)(nil)

// NewBruteAlg returns an exact index comparing every query with every
// stored point.
func NewBruteAlg(distFn geom.DistanceFn) *brute {
	return &brute{distFunc: distFn}
}

type brute struct {
	mtx      sync.RWMutex
	data     [][]float64
	distFunc geom.DistanceFn
}

func (b *brute) Reset() {
	b.mtx.Lock()
	b.data = nil
	b.mtx.Unlock()
}

func (b *brute) Len() int {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return len(b.data)
}

// Build replaces the stored points. Point i keeps index i.
func (b *brute) Build(points ...[]float64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.data = make([][]float64, len(points))
	copy(b.data, points)
}

func (b *brute) KNN(vec []float64, k int) ([]predictor.Neighbor, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", predictor.ErrInvalidK, k)
	}
	return b.knn(vec, k)
}

func (b *brute) knn(vec []float64, n int) ([]predictor.Neighbor, error) {
	b.mtx.RLock()
	list := b.data
	b.mtx.RUnlock()

	// Points are pushed in index order and the queue keeps insertion order
	// among equal distances, so the lowest index wins every tie.
	pq := pqueue.New(pqueue.WithCap(uint(n)))
	for i, item := range list {
		distance, err := b.distFunc(vec, item)
		if err != nil {
			return nil, fmt.Errorf(
				"unable to compute distance between query and point %d: %w",
				i, err,
			)
		}
		pq.Push(i, distance)
	}
	knn := make([]predictor.Neighbor, pq.Len())
	for i := range knn {
		idx, distance := pq.Seek(i)
		knn[i] = predictor.Neighbor{Index: idx.(int), Distance: distance}
	}
	return knn, nil
}
