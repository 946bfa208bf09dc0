package kdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"

	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/predictor/knn/brute"
)

func TestTree_KNNTies(t *testing.T) {
	t.Parallel()
	tree, err := New(geom.MetricEuclidean)
	require.NoError(t, err)
	tree.Build([]float64{0, 0}, []float64{1, 0}, []float64{0, 1}, []float64{5, 5})
	assert.Equal(t, 4, tree.Len())

	nn, err := tree.KNN([]float64{0.1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, nn, 2)
	assert.Equal(t, 0, nn[0].Index)
	assert.Equal(t, 1, nn[1].Index)

	nn, err = tree.KNN([]float64{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, nn, 4)
}

func TestTree_MatchesBrute(t *testing.T) {
	t.Parallel()
	for _, metric := range []geom.MetricType{geom.MetricEuclidean, geom.MetricManhattan, geom.MetricChebyshev} {
		metric := metric
		t.Run(string(metric), func(t *testing.T) {
			t.Parallel()
			distFn, err := geom.DistanceFuncFor(metric)
			require.NoError(t, err)

			for round := 0; round < 20; round++ {
				dims := int(fastrand.Uint32n(4)) + 1
				n := int(fastrand.Uint32n(60)) + 1
				points := make([][]float64, n)
				for i := range points {
					points[i] = make([]float64, dims)
					for d := range points[i] {
						// A small integer grid produces many equal distances.
						points[i][d] = float64(fastrand.Uint32n(5))
					}
				}

				tree, err := New(metric)
				require.NoError(t, err)
				tree.Build(points...)
				exact := brute.NewBruteAlg(distFn)
				exact.Build(points...)

				query := make([]float64, dims)
				for d := range query {
					query[d] = float64(fastrand.Uint32n(5))
				}
				k := int(fastrand.Uint32n(uint32(n))) + 1

				want, err := exact.KNN(query, k)
				require.NoError(t, err)
				got, err := tree.KNN(query, k)
				require.NoError(t, err)
				assert.Equal(t, want, got, "points=%v query=%v k=%d", points, query, k)
			}
		})
	}
}

func TestTree_Errors(t *testing.T) {
	t.Parallel()
	_, err := New(geom.MetricCosine)
	assert.ErrorIs(t, err, ErrUnsupportedMetric)

	tree, err := New(geom.MetricManhattan)
	require.NoError(t, err)

	nn, err := tree.KNN([]float64{1}, 1)
	require.NoError(t, err)
	assert.Empty(t, nn)

	tree.Build([]float64{1, 2})
	_, err = tree.KNN([]float64{1}, 1)
	assert.ErrorIs(t, err, geom.ErrDimNotEqual)
	_, err = tree.KNN([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, predictor.ErrInvalidK)

	tree.Reset()
	assert.Zero(t, tree.Len())
}
