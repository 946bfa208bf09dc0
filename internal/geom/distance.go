package geom

import (
	"fmt"
	"math"
	"strings"
)

var (
	ErrDimNotEqual   = fmt.Errorf("vectors dimension is not equal")
	ErrUnknownMetric = fmt.Errorf("unknown metric")
)

// DistanceFn computes the distance between two vectors of equal dimension.
type DistanceFn func(vec, vec1 []float64) (float64, error)

type MetricType string

const (
	MetricEuclidean MetricType = "euclidean"
	MetricCosine    MetricType = "cosine"
	MetricManhattan MetricType = "manhattan"
	MetricChebyshev MetricType = "chebyshev"
)

// ParseMetric normalizes a metric name. Matching is case-insensitive.
func ParseMetric(s string) (MetricType, error) {
	m := MetricType(strings.ToLower(strings.TrimSpace(s)))
	if _, err := DistanceFuncFor(m); err != nil {
		return "", err
	}
	return m, nil
}

func DistanceFuncFor(m MetricType) (DistanceFn, error) {
	switch m {
	case MetricEuclidean:
		return EuclideanDistance, nil
	case MetricCosine:
		return CosineDistance, nil
	case MetricManhattan:
		return ManhattanDistance, nil
	case MetricChebyshev:
		return ChebyshevDistance, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
	}
}

func EuclideanDistance(vec, vec1 []float64) (float64, error) {
	var d float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}

	for i := 0; i < len(vec); i++ {
		diff := vec[i] - vec1[i]
		d += diff * diff
	}
	return math.Sqrt(d), nil
}

// CosineDistance returns 1 - cos(vec, vec1). A zero-norm operand has
// similarity 0, so its distance to anything is 1.
func CosineDistance(vec, vec1 []float64) (float64, error) {
	var dot, n, n1 float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	for i := 0; i < len(vec); i++ {
		dot += vec[i] * vec1[i]
		n += vec[i] * vec[i]
		n1 += vec1[i] * vec1[i]
	}
	if n == 0 || n1 == 0 {
		return 1.0, nil
	}
	return 1 - dot/(math.Sqrt(n)*math.Sqrt(n1)), nil
}

func ChebyshevDistance(vec, vec1 []float64) (float64, error) {
	var absDistance, distance float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	for i := 0; i < len(vec1); i++ {
		absDistance = math.Abs(vec[i] - vec1[i])
		if distance < absDistance {
			distance = absDistance
		}
	}
	return distance, nil
}

func ManhattanDistance(vec, vec1 []float64) (float64, error) {
	var distance float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	for i := 0; i < len(vec); i++ {
		distance += math.Abs(vec[i] - vec1[i])
	}
	return distance, nil
}
