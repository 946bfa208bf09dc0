package vector

import (
	"math"
	"sort"
)

// V is a fixed-length feature vector.
type V []float64

func New(vec []float64) V {
	return vec
}

func (v V) Dimensions() int {
	return len(v)
}

func (v V) Point(idx int) float64 {
	return v[idx]
}

func (v V) Points() []float64 {
	return v
}

func (v V) Copy() V {
	var v1 = make(V, len(v))
	copy(v1, v)
	return v1
}

func (v V) Magnitude() float64 {
	var result float64
	for i := range v {
		result += v[i] * v[i]
	}
	return math.Sqrt(result)
}

func (v V) Dot(vec V) float64 {
	var s float64
	for i := range v {
		s += v[i] * vec[i]
	}
	return s
}

func (v V) Sum() float64 {
	var s float64
	for i := range v {
		s += v[i]
	}
	return s
}

func (v V) SizeEqual(vec V) bool {
	return len(v) == len(vec)
}

// Equal reports bitwise equality of all components.
func (v V) Equal(vec V) bool {
	if len(v) != len(vec) {
		return false
	}
	for i, value := range v {
		if math.Float64bits(vec[i]) != math.Float64bits(value) {
			return false
		}
	}
	return true
}

func (v V) Max() float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	max := v[0]
	for i := range v[1:] {
		if v[i+1] > max {
			max = v[i+1]
		}
	}
	return max
}

func (v V) Min() float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	min := v[0]
	for i := range v[1:] {
		if v[i+1] < min {
			min = v[i+1]
		}
	}
	return min
}

func (v V) Mean() float64 {
	return v.Sum() / float64(len(v))
}

func (v V) Median() float64 {
	var p float64
	v1 := v.Copy()
	sort.Float64s(v1)
	if len(v1)%2 == 0 {
		vc := v1[len(v1)/2-1 : len(v1)/2+1]
		p = vc.Sum() / float64(len(vc))
	} else {
		p = v1[len(v1)/2]
	}

	return p
}
