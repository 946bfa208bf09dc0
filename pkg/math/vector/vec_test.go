package vector

import (
	"math"
	"testing"
)

func TestV_Dimensions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		v        V
		expected int
	}{
		{name: "positive", v: New([]float64{1, 2, 3, 4, 5}), expected: 5},
		{name: "empty", v: V{}, expected: 0},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := test.v.Dimensions(); got != test.expected {
				t.Errorf("the comparison is incorrect got: %v, expected: %v", got, test.expected)
			}
		})
	}
}

func TestV_Equal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		v        V
		v1       V
		expected bool
	}{
		{name: "positive", v: V{10, 10}, v1: V{10, 10}, expected: true},
		{name: "negative", v: V{10, 10}, v1: V{11, 10}, expected: false},
		{name: "size", v: V{10, 10}, v1: V{10}, expected: false},
		{name: "nan", v: V{math.NaN()}, v1: V{math.NaN()}, expected: true},
	}
	for _, test := range tests {
		if test.v.Equal(test.v1) != test.expected {
			t.Errorf("%s: the comparison of vectors, got: %v, expected: %v", test.name, test.v.Equal(test.v1), test.expected)
		}
	}
}

func TestV_Reductions(t *testing.T) {
	t.Parallel()
	v := V{-3, -1, -2, -8}
	if got := v.Max(); got != -1 {
		t.Errorf("max of negative values, got: %f, expected: %f", got, -1.0)
	}
	if got := v.Min(); got != -8 {
		t.Errorf("min, got: %f, expected: %f", got, -8.0)
	}
	if got := v.Mean(); got != -3.5 {
		t.Errorf("mean, got: %f, expected: %f", got, -3.5)
	}
	if got := v.Median(); got != -2.5 {
		t.Errorf("median, got: %f, expected: %f", got, -2.5)
	}
	if got := (V{3, 1, 2}).Median(); got != 2 {
		t.Errorf("odd median, got: %f, expected: %f", got, 2.0)
	}
	if !math.IsNaN(V{}.Max()) || !math.IsNaN(V{}.Min()) {
		t.Errorf("max and min of an empty vector must be NaN")
	}
}

func TestV_MagnitudeDot(t *testing.T) {
	t.Parallel()
	v := V{3, 4}
	if got := v.Magnitude(); got != 5 {
		t.Errorf("magnitude, got: %f, expected: %f", got, 5.0)
	}
	if got := v.Dot(V{1, 2}); got != 11 {
		t.Errorf("dot, got: %f, expected: %f", got, 11.0)
	}
	c := v.Copy()
	c[0] = 100
	if v[0] != 3 {
		t.Errorf("copy must not share the backing array")
	}
}
