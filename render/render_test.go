package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/learnml/knn"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/regression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func requireFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAutoRange(t *testing.T) {
	xmin, xmax, ymin, ymax := autoRange(nil)
	assert.Equal(t, []float64{-1, 1, -1, 1}, []float64{xmin, xmax, ymin, ymax})

	xmin, xmax, ymin, ymax = autoRange(plotter.XYs{{X: 0, Y: 5}, {X: 10, Y: 5}})
	assert.InDelta(t, -0.6, xmin, 1e-12)
	assert.InDelta(t, 10.6, xmax, 1e-12)
	assert.Equal(t, 4.0, ymin, "a flat axis gets a unit pad")
	assert.Equal(t, 6.0, ymax)
}

func TestCategoryColor(t *testing.T) {
	assert.Equal(t, grey, CategoryColor(points.Unclassified))
	assert.Equal(t, CategoryColor(0), CategoryColor(len(palette)))
	assert.NotEqual(t, CategoryColor(0), CategoryColor(1))
}

func TestSceneFromSequencer(t *testing.T) {
	a, b, c := points.New(0, 0, 0), points.New(1, 0, 0), points.New(5, 5, 1)
	training := []*points.Point{a, b, c}
	st := knn.SequencerState{
		Phase:     knn.PhaseDistances,
		DemoPoint: points.New(0.2, 0, points.Unclassified),
		Distances: []knn.Neighbor{{Point: a, Distance: 0.2}, {Point: b, Distance: 0.8}, {Point: c, Distance: 7}},
		Revealed:  2,
	}
	s := SceneFromSequencer(training, st)
	assert.Equal(t, []*points.Point{a, b}, s.Neighbors)
	assert.Contains(t, s.Title, "distances")

	st.Phase = knn.PhaseNearest
	st.Highlighted = []*points.Point{a}
	assert.Equal(t, []*points.Point{a}, SceneFromSequencer(training, st).Neighbors)

	st.Phase = knn.PhaseNewPoint
	assert.Empty(t, SceneFromSequencer(training, st).Neighbors)
}

func TestKNNWritesImage(t *testing.T) {
	dir := t.TempDir()
	q := points.New(0.5, 0.5, 1)
	training := []*points.Point{points.New(0.2, 0.3, 0), points.New(0.7, 0.8, 1), points.New(0.6, 0.6, 1)}

	path := filepath.Join(dir, "nested", "knn.png")
	require.NoError(t, KNN(path, Scene{Title: "test", Training: training, Query: q, Neighbors: training[1:]}))
	requireFile(t, path)

	empty := filepath.Join(dir, "empty.svg")
	require.NoError(t, KNN(empty, Scene{}))
	requireFile(t, empty)
}

func TestRegressionWritesImage(t *testing.T) {
	dir := t.TempDir()
	st := regression.State{
		Data:       []regression.DataPoint{{X: 0, Y: 1}, {X: 1, Y: 3}, {X: 2, Y: 4.5}},
		Slope:      1.8,
		Intercept:  1.1,
		Epoch:      12,
		ShowErrors: true,
	}
	path := filepath.Join(dir, "reg.png")
	require.NoError(t, Regression(path, st))
	requireFile(t, path)

	path = filepath.Join(dir, "reg-empty.png")
	require.NoError(t, Regression(path, regression.State{}))
	requireFile(t, path)
}
