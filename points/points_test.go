package points_test

import (
	"math"
	"testing"

	"github.com/Noofbiz/learnml/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricDistance(t *testing.T) {
	a := points.New(0, 0, 0)
	b := points.New(3, 4, 1)

	assert.InDelta(t, 5.0, points.Euclidean.Distance(a, b), 1e-12)
	assert.InDelta(t, 7.0, points.Manhattan.Distance(a, b), 1e-12)
	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-12, "DistanceTo is Euclidean")
	assert.Equal(t, points.Euclidean.Distance(a, b), points.Euclidean.Distance(b, a), "distance is symmetric")
}

func TestParseMetric(t *testing.T) {
	m, err := points.ParseMetric("Manhattan")
	require.NoError(t, err)
	assert.Equal(t, points.Manhattan, m)

	m, err = points.ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, points.Euclidean, m, "empty name falls back to euclidean")

	_, err = points.ParseMetric("cosine")
	assert.ErrorIs(t, err, points.ErrUnknownMetric)
}

func TestBounds(t *testing.T) {
	_, ok := points.Bounds(nil)
	assert.False(t, ok)

	r, ok := points.Bounds([]*points.Point{
		points.New(0.2, 0.9, 0),
		points.New(-1, 0.5, 1),
		points.New(0.7, -0.3, 0),
	})
	require.True(t, ok)
	assert.Equal(t, points.Rect{MinX: -1, MinY: -0.3, MaxX: 0.7, MaxY: 0.9}, r)

	padded := r.Pad(0.5)
	assert.InDelta(t, -1.85, padded.MinX, 1e-9)
	assert.True(t, padded.Contains(points.New(0, 0, 0)))
	assert.False(t, r.Contains(points.New(5, 5, 0)))
}

func TestPadDegenerate(t *testing.T) {
	r, ok := points.Bounds([]*points.Point{points.New(1, 1, 0)})
	require.True(t, ok)
	p := r.Pad(0.1)
	assert.False(t, math.IsNaN(p.Width()))
	assert.InDelta(t, 0.2, p.Width(), 1e-12)
	assert.InDelta(t, 0.2, p.Height(), 1e-12)
}

func TestUnclassifiedSentinel(t *testing.T) {
	p := points.New(0.5, 0.5, points.Unclassified)
	assert.False(t, p.IsClassified())
	p.Category = 2
	assert.True(t, p.IsClassified())
}
