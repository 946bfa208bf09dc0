package bundle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/signal"
)

func constSegment(id, label string, steps, channels int, value float64) signal.Segment {
	data := make([][]float64, steps)
	for t := range data {
		data[t] = make([]float64, channels)
		for ch := range data[t] {
			data[t][ch] = value
		}
	}
	return signal.Segment{ID: id, Label: label, Data: data}
}

func TestBuild_PreservesOrder(t *testing.T) {
	t.Parallel()
	ds := &signal.Dataset{Split: SplitTrain}
	for i := 0; i < 200; i++ {
		ds.Segments = append(ds.Segments, constSegment("", "l", 40, 2, float64(i)))
	}

	b, err := Build(context.Background(), ds, extract.WindowSpec{Window: 20, Stride: 20}, extract.MethodMeanPool, WithWorkers(7))
	require.NoError(t, err)
	require.Equal(t, 200, b.Len())
	assert.Equal(t, 4, b.Dim)
	assert.Equal(t, SplitTrain, b.Split)
	for i := range b.Features {
		assert.Equal(t, []float64{float64(i), float64(i), float64(i), float64(i)}, []float64(b.Features[i]), "row %d", i)
		assert.Equal(t, "train-"+itoa(i), b.IDs[i])
	}
	assert.True(t, b.Labeled())
}

func TestBuild_UnlabeledSplit(t *testing.T) {
	t.Parallel()
	ds := &signal.Dataset{Split: SplitTest, Segments: []signal.Segment{
		constSegment("q0", "", 10, 1, 1),
		constSegment("q1", "", 10, 1, 2),
	}}
	b, err := Build(context.Background(), ds, extract.WindowSpec{Window: 5, Stride: 5}, extract.MethodMaxPool)
	require.NoError(t, err)
	assert.False(t, b.Labeled())
	assert.Nil(t, b.Labels)
	assert.Equal(t, []string{"q0", "q1"}, b.IDs)
}

func TestBuild_InconsistentFeatureLength(t *testing.T) {
	t.Parallel()
	ds := &signal.Dataset{Split: SplitVal, Segments: []signal.Segment{
		constSegment("a", "x", 40, 3, 1),
		constSegment("b", "y", 60, 3, 1),
	}}
	_, err := Build(context.Background(), ds, extract.WindowSpec{Window: 20, Stride: 20}, extract.MethodMeanPool)
	assert.ErrorIs(t, err, ErrInconsistentFeatureLength)

	b, err := Build(context.Background(), ds, extract.WindowSpec{Window: 20, Stride: 20, Length: 40}, extract.MethodMeanPool)
	require.NoError(t, err, "a canonical length must make every row the same size")
	assert.Equal(t, 6, b.Dim)
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()
	ds := &signal.Dataset{Split: SplitTrain, Segments: []signal.Segment{
		constSegment("a", "x", 10, 1, 1),
		{ID: "empty", Label: "y"},
	}}
	tests := []struct {
		name     string
		ds       *signal.Dataset
		spec     extract.WindowSpec
		method   extract.Method
		expected error
	}{
		{name: "bad_spec", ds: ds, spec: extract.WindowSpec{Window: 0, Stride: 1}, method: extract.MethodMeanPool, expected: extract.ErrInvalidWindowSpec},
		{name: "bad_method", ds: ds, spec: extract.WindowSpec{Window: 1, Stride: 1}, method: "fftpool", expected: extract.ErrUnknownMethod},
		{name: "empty_segment", ds: ds, spec: extract.WindowSpec{Window: 1, Stride: 1}, method: extract.MethodMeanPool, expected: extract.ErrEmptySegment},
		{name: "empty_split", ds: &signal.Dataset{Split: SplitVal}, spec: extract.WindowSpec{Window: 1, Stride: 1}, method: extract.MethodMeanPool, expected: ErrEmptyBundle},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			b, err := Build(context.Background(), test.ds, test.spec, test.method)
			if !errors.Is(err, test.expected) {
				t.Errorf("build error, got: %v, expected: %v", err, test.expected)
			}
			assert.Nil(t, b)
		})
	}
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds := &signal.Dataset{Split: SplitTrain, Segments: []signal.Segment{constSegment("a", "x", 10, 1, 1)}}
	_, err := Build(ctx, ds, extract.WindowSpec{Window: 5, Stride: 5}, extract.MethodMeanPool)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validate(t *testing.T) {
	t.Parallel()
	_, err := New(SplitTrain, nil, []string{"a"}, nil)
	assert.ErrorIs(t, err, ErrRowMismatch)

	_, err = New(SplitTrain, features(2, 2), []string{"a", "b"}, []string{"x"})
	assert.ErrorIs(t, err, ErrRowMismatch)

	rows := features(2, 2)
	rows[1] = rows[1][:1]
	_, err = New(SplitTrain, rows, []string{"a", "b"}, nil)
	assert.ErrorIs(t, err, ErrInconsistentFeatureLength)
}

func itoa(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return digits[i : i+1]
	}
	return itoa(i/10) + digits[i%10:i%10+1]
}
