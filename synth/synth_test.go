package synth_test

import (
	"testing"

	"github.com/Noofbiz/learnml/knn"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ knn.PointSource = (*synth.Generator)(nil)

func TestSameSeedSameData(t *testing.T) {
	a := synth.NewGenerator(7).Clustered(3, 4)
	b := synth.NewGenerator(7).Clustered(3, 4)
	assert.Equal(t, a, b)

	c := synth.NewGenerator(8).Clustered(3, 4)
	assert.NotEqual(t, a, c)
}

func TestClustered(t *testing.T) {
	pts := synth.NewGenerator(1).Clustered(3, 5)
	require.Len(t, pts, 15)
	lim := synth.ClusterRange + synth.ClusterSpread
	counts := map[int]int{}
	for _, p := range pts {
		counts[p.Category]++
		assert.LessOrEqual(t, p.X, lim)
		assert.GreaterOrEqual(t, p.X, -lim)
		assert.LessOrEqual(t, p.Y, lim)
		assert.GreaterOrEqual(t, p.Y, -lim)
	}
	assert.Equal(t, map[int]int{0: 5, 1: 5, 2: 5}, counts)

	// points of one cluster stay within twice the spread of each other
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			assert.LessOrEqual(t, pts[i].X-pts[j].X, 2*synth.ClusterSpread)
		}
	}
}

func TestRandomPoints(t *testing.T) {
	r := points.Rect{MinX: 2, MinY: -1, MaxX: 3, MaxY: 1}
	pts := synth.NewGenerator(3).RandomPoints(50, r, 0)
	require.Len(t, pts, 50)
	for _, p := range pts {
		assert.True(t, r.Contains(p), "%v", p)
		assert.Contains(t, []int{0, 1}, p.Category)
	}
	assert.Empty(t, synth.NewGenerator(3).RandomPoints(-1, r, 2))
}

func TestLinearWithoutNoise(t *testing.T) {
	data := synth.NewGenerator(5).Linear(20, 2, 1, 0)
	require.Len(t, data, 20)
	for i, d := range data {
		assert.InDelta(t, 2*d.X+1, d.Y, 1e-12)
		if i > 0 {
			assert.LessOrEqual(t, data[i-1].X, d.X)
		}
	}
}

func TestDemoPoint(t *testing.T) {
	g := synth.NewGenerator(11)
	training := []*points.Point{points.New(1, 1, 0), points.New(3, 2, 1)}
	padded := points.Rect{MinX: 1, MinY: 1, MaxX: 3, MaxY: 2}.Pad(synth.DemoPadding)
	for range 100 {
		p := g.DemoPoint(training)
		assert.Equal(t, points.Unclassified, p.Category)
		assert.True(t, padded.Contains(p), "%v", p)
	}

	p := g.DemoPoint(nil)
	assert.True(t, points.UnitRect.Contains(p))
}
