// Package synth generates random teaching data: labelled clusters for KNN,
// noisy lines for regression and demo points for the KNN walkthrough.
package synth

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/regression"
)

const (
	// ClusterRange bounds the cluster centres on both axes.
	ClusterRange = 0.8
	// ClusterSpread bounds the offset of a point from its cluster centre.
	ClusterSpread = 0.2
	// DemoPadding is the fraction by which DemoPoint grows the training bounds.
	DemoPadding = 0.1
)

// Generator produces random data from a single seeded source. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator for seed. A zero seed is replaced by the
// current time.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// uniform returns a value in [lo, hi). Callers hold g.mu.
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// RandomPoints scatters n points uniformly over r with categories drawn from
// [0, categories). categories below 1 is treated as 2.
func (g *Generator) RandomPoints(n int, r points.Rect, categories int) []*points.Point {
	if categories < 1 {
		categories = 2
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*points.Point, 0, max(n, 0))
	for range n {
		x := g.uniform(r.MinX, r.MaxX)
		y := g.uniform(r.MinY, r.MaxY)
		out = append(out, points.New(x, y, g.rng.Intn(categories)))
	}
	return out
}

// Clustered returns clusters groups of perCluster points. Group i has
// category i, a centre drawn from [-ClusterRange, ClusterRange]² and points
// within ClusterSpread of it on each axis.
func (g *Generator) Clustered(clusters, perCluster int) []*points.Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*points.Point
	for c := 0; c < clusters; c++ {
		cx := g.uniform(-ClusterRange, ClusterRange)
		cy := g.uniform(-ClusterRange, ClusterRange)
		for range perCluster {
			x := cx + g.uniform(-ClusterSpread, ClusterSpread)
			y := cy + g.uniform(-ClusterSpread, ClusterSpread)
			out = append(out, points.New(x, y, c))
		}
	}
	return out
}

// Linear samples n points of y = slope*x + intercept with x uniform in [0, 1)
// and Gaussian noise of standard deviation noise. The samples are sorted by x.
func (g *Generator) Linear(n int, slope, intercept, noise float64) []regression.DataPoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]regression.DataPoint, 0, max(n, 0))
	for range n {
		x := g.rng.Float64()
		y := slope*x + intercept + g.rng.NormFloat64()*noise
		out = append(out, regression.DataPoint{X: x, Y: y})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// DemoPoint draws an unclassified point inside the training bounds padded
// by DemoPadding, or inside the unit square when training is empty. It
// satisfies knn.PointSource.
func (g *Generator) DemoPoint(training []*points.Point) *points.Point {
	r, ok := points.Bounds(training)
	if ok {
		r = r.Pad(DemoPadding)
	} else {
		r = points.UnitRect
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return points.New(g.uniform(r.MinX, r.MaxX), g.uniform(r.MinY, r.MaxY), points.Unclassified)
}
