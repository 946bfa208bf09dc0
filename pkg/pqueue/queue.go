package pqueue

import (
	"sort"
)

func WithOrderAsc() Option {
	return func(q *Queue) {
		q.order = orderAsc
	}
}

func WithOrderDesc() Option {
	return func(q *Queue) {
		q.order = orderDesc
	}
}

func WithCap(size uint) Option {
	return func(q *Queue) {
		q.cap = int(size)
	}
}

type Option func(*Queue)

type order uint8

const (
	orderAsc order = iota
	orderDesc
)

type item struct {
	value interface{}
	prior float64
	seq   uint64
}

func New(opts ...Option) *Queue {
	p := &Queue{items: &[]*item{}, order: orderAsc, cap: -1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Queue keeps values sorted by priority. Equal priorities keep insertion
// order, so the earliest pushed value always wins a tie, in both orders.
type Queue struct {
	order order
	cap   int
	seq   uint64
	items *[]*item
}

func (q *Queue) PopAll() []interface{} {
	pulled := make([]interface{}, len(*q.items))
	for i := range *q.items {
		pulled[i] = (*q.items)[i].value
	}
	*q.items = (*q.items)[:0]
	return pulled
}

func (q *Queue) Head() interface{} {
	if len(*q.items) == 0 {
		return nil
	}
	x := (*q.items)[0]
	*q.items = (*q.items)[1:]
	return x.value
}

func (q *Queue) Tail() interface{} {
	l := len(*q.items) - 1
	if l < 0 {
		return nil
	}
	x := (*q.items)[l]
	*q.items = (*q.items)[:l]
	return x.value
}

// Push inserts val. A full queue rejects values that would rank last
// without sorting.
func (q *Queue) Push(val interface{}, priority float64) {
	q.push(&item{value: val, prior: priority, seq: q.seq})
	q.seq++
}

// PushKeyed inserts val with key ordering it among equal priorities in
// place of insertion order. Lower keys win.
func (q *Queue) PushKeyed(val interface{}, priority float64, key uint64) {
	q.push(&item{value: val, prior: priority, seq: key})
}

func (q *Queue) push(it *item) {
	if q.cap == 0 {
		return
	}
	if q.cap > 0 && len(*q.items) == q.cap && !q.before(it, (*q.items)[q.cap-1]) {
		return
	}
	*q.items = append(*q.items, it)
	sort.Sort(q)
	if q.cap < 0 {
		return
	}
	if q.cap < len(*q.items) {
		*q.items = (*q.items)[:q.cap]
	}
}

func (q *Queue) Cap() int { return q.cap }

func (q *Queue) Len() int { return len(*q.items) }

func (q *Queue) Swap(i, j int) { (*q.items)[i], (*q.items)[j] = (*q.items)[j], (*q.items)[i] }

func (q *Queue) Less(i, j int) bool {
	return q.before((*q.items)[i], (*q.items)[j])
}

func (q *Queue) before(a, b *item) bool {
	if a.prior == b.prior {
		return a.seq < b.seq
	}
	if q.order == orderAsc {
		return a.prior < b.prior
	}
	return a.prior > b.prior
}

func (q *Queue) Seek(idx int) (interface{}, float64) {
	item := (*q.items)[idx]
	return item.value, item.prior
}
