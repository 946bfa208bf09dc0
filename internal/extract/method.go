package extract

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/go-sod/b2t/pkg/math/vector"
)

// Method names a per-channel reduction applied to every window.
type Method string

const (
	MethodMeanPool   Method = "meanpool"
	MethodMaxPool    Method = "maxpool"
	MethodMinPool    Method = "minpool"
	MethodMedianPool Method = "medianpool"
	MethodStdPool    Method = "stdpool"
)

// Methods lists every supported method.
var Methods = []Method{MethodMeanPool, MethodMaxPool, MethodMinPool, MethodMedianPool, MethodStdPool}

// ParseMethod normalizes a method name. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if _, err := reducerFor(m); err != nil {
		return "", err
	}
	return m, nil
}

// reduceFn collapses one channel of one window to a single value.
type reduceFn func(col vector.V) (float64, error)

func reducerFor(m Method) (reduceFn, error) {
	switch m {
	case MethodMeanPool:
		return func(col vector.V) (float64, error) { return col.Mean(), nil }, nil
	case MethodMaxPool:
		return func(col vector.V) (float64, error) { return col.Max(), nil }, nil
	case MethodMinPool:
		return func(col vector.V) (float64, error) { return col.Min(), nil }, nil
	case MethodMedianPool:
		return func(col vector.V) (float64, error) { return stats.Median(stats.Float64Data(col)) }, nil
	case MethodStdPool:
		return func(col vector.V) (float64, error) {
			return stats.StandardDeviationPopulation(stats.Float64Data(col))
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(m))
	}
}
