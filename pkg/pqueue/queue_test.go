package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_Push(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		opts     []Option
		prior    []float64
		expected []interface{}
	}{
		{
			name:     "asc_unbounded",
			prior:    []float64{3, 1, 2},
			expected: []interface{}{1, 2, 0},
		},
		{
			name:     "asc_capped",
			opts:     []Option{WithCap(2)},
			prior:    []float64{3, 1, 2, 0.5},
			expected: []interface{}{3, 1},
		},
		{
			name:     "desc_capped",
			opts:     []Option{WithOrderDesc(), WithCap(2)},
			prior:    []float64{3, 1, 2, 0.5},
			expected: []interface{}{0, 2},
		},
		{
			name:     "ties_keep_insertion_order",
			opts:     []Option{WithCap(3)},
			prior:    []float64{1, 0.5, 1, 1, 0.5},
			expected: []interface{}{1, 4, 0},
		},
		{
			name:     "zero_cap",
			opts:     []Option{WithCap(0)},
			prior:    []float64{1, 2},
			expected: []interface{}{},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			q := New(test.opts...)
			for i, p := range test.prior {
				q.Push(i, p)
			}
			assert.Equal(t, test.expected, q.PopAll())
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestQueue_HeadTail(t *testing.T) {
	t.Parallel()
	q := New()
	assert.Nil(t, q.Head())
	assert.Nil(t, q.Tail())
	q.Push("b", 2)
	q.Push("a", 1)
	q.Push("c", 3)
	v, p := q.Seek(0)
	assert.Equal(t, "a", v)
	assert.Equal(t, 1.0, p)
	assert.Equal(t, "a", q.Head())
	assert.Equal(t, "c", q.Tail())
	assert.Equal(t, 1, q.Len())
}

func TestQueue_PushKeyed(t *testing.T) {
	t.Parallel()
	q := New(WithCap(2))
	q.PushKeyed("late", 1, 9)
	q.PushKeyed("far", 5, 0)
	q.PushKeyed("early", 1, 2)
	q.PushKeyed("latest", 1, 11)
	assert.Equal(t, []interface{}{"early", "late"}, q.PopAll())
}
