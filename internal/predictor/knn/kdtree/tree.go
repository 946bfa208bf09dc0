/*
 * Copyright 2020 Dennis Kuhnert
 * Copyright 2020 Ivanov Nikita
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package kdtree is an exact k-d tree index. It returns the same neighbours
// in the same order as a brute force scan for metrics where the gap along
// one axis never exceeds the full distance.
package kdtree

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/pkg/pqueue"
)

var ErrUnsupportedMetric = errors.New("metric cannot be pruned by a k-d tree")

var _ predictor.Index = (*Tree)(nil)

// New returns an empty tree for metric. Cosine distance is rejected.
func New(metric geom.MetricType) (*Tree, error) {
	switch metric {
	case geom.MetricEuclidean, geom.MetricManhattan, geom.MetricChebyshev:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, string(metric))
	}
	distFn, err := geom.DistanceFuncFor(metric)
	if err != nil {
		return nil, err
	}
	return &Tree{distFn: distFn}, nil
}

type Tree struct {
	mtx    sync.RWMutex
	root   *node
	len    int
	dims   int
	distFn geom.DistanceFn
}

func (t *Tree) Reset() {
	t.mtx.Lock()
	t.root, t.len, t.dims = nil, 0, 0
	t.mtx.Unlock()
}

func (t *Tree) Len() int {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.len
}

// Build replaces the tree with a balanced one over points. Point i keeps
// index i.
func (t *Tree) Build(points ...[]float64) {
	items := make([]item, len(points))
	for i := range points {
		items[i] = item{idx: i, vec: points[i]}
	}
	dims := 0
	if len(points) > 0 {
		dims = len(points[0])
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.len = len(points)
	t.dims = dims
	t.root = nil
	if dims > 0 {
		t.root = buildTreeRecursive(items, 0, dims)
	}
}

func (t *Tree) KNN(vec []float64, k int) ([]predictor.Neighbor, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", predictor.ErrInvalidK, k)
	}

	t.mtx.RLock()
	root, dims := t.root, t.dims
	t.mtx.RUnlock()

	if root == nil {
		return []predictor.Neighbor{}, nil
	}
	if len(vec) != dims {
		return nil, fmt.Errorf("%w: query has %d features, tree has %d", geom.ErrDimNotEqual, len(vec), dims)
	}

	queue := pqueue.New(pqueue.WithCap(uint(k)))
	if err := t.knn(vec, k, root, 0, queue); err != nil {
		return nil, err
	}

	knn := make([]predictor.Neighbor, queue.Len())
	for i := range knn {
		idx, distance := queue.Seek(i)
		knn[i] = predictor.Neighbor{Index: idx.(int), Distance: distance}
	}
	return knn, nil
}

func (t *Tree) knn(vec []float64, k int, first *node, dim int, queue *pqueue.Queue) error {
	if first == nil {
		return nil
	}
	dims := len(vec)

	var path []*node
	currentNode := first

	for currentNode != nil {
		path = append(path, currentNode)
		if vec[dim] < currentNode.key.vec[dim] {
			currentNode = currentNode.left
		} else {
			currentNode = currentNode.right
		}
		dim = (dim + 1) % dims
	}

	dim = (dim - 1 + dims) % dims
	for path, currentNode = popLast(path); currentNode != nil; path, currentNode = popLast(path) {
		currentDistance, err := t.distFn(vec, currentNode.key.vec)
		if err != nil {
			return fmt.Errorf("compute distance to point %d: %w", currentNode.key.idx, err)
		}
		queue.PushKeyed(currentNode.key.idx, currentDistance, uint64(currentNode.key.idx))

		// Equal bounds are still searched: a point at the same distance
		// with a lower index must win the tie.
		if queue.Len() < k || math.Abs(vec[dim]-currentNode.key.vec[dim]) <= kthDistance(queue, k-1) {
			var next *node
			if vec[dim] < currentNode.key.vec[dim] {
				next = currentNode.right
			} else {
				next = currentNode.left
			}
			if err := t.knn(vec, k, next, (dim+1)%dims, queue); err != nil {
				return err
			}
		}
		dim = (dim - 1 + dims) % dims
	}
	return nil
}

type item struct {
	idx int
	vec []float64
}

type node struct {
	key   item
	left  *node
	right *node
}

type sortItems struct {
	dim   int
	items []item
}

func (b *sortItems) Len() int {
	return len(b.items)
}

func (b *sortItems) Less(i, j int) bool {
	return b.items[i].vec[b.dim] < b.items[j].vec[b.dim]
}

func (b *sortItems) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
}

// buildTreeRecursive splits on the median along dim. Items left of the
// median are <= it on dim and items right of it are >=.
func buildTreeRecursive(items []item, dim, dims int) *node {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return &node{key: items[0]}
	}

	sort.Sort(&sortItems{dim: dim, items: items})
	mid := len(items) / 2
	nextDim := (dim + 1) % dims
	return &node{
		key:   items[mid],
		left:  buildTreeRecursive(items[:mid], nextDim, dims),
		right: buildTreeRecursive(items[mid+1:], nextDim, dims),
	}
}

func popLast(arr []*node) ([]*node, *node) {
	l := len(arr) - 1
	if l < 0 {
		return arr, nil
	}
	return arr[:l], arr[l]
}

func kthDistance(queue *pqueue.Queue, i int) float64 {
	if queue.Len() <= i {
		return math.MaxFloat64
	}
	_, distance := queue.Seek(i)
	return distance
}
