package knn

import (
	"sort"
	"sync"

	"github.com/Noofbiz/learnml/internal/observe"
	"github.com/Noofbiz/learnml/points"
	"k8s.io/klog/v2"
)

// DefaultK is the neighbor count requested by NewEngine when WithK is not
// given. Like every k it is clamped to the training set size.
const DefaultK = 3

// Neighbor pairs a training point with its distance to a query.
type Neighbor struct {
	Point    *points.Point
	Distance float64
}

// EngineState is a point-in-time copy of the engine's observable fields.
// Point handles are shared with the engine and must be treated as read-only.
type EngineState struct {
	TrainingData     []*points.Point
	K                int
	Metric           points.Metric
	Selected         *points.Point
	NearestNeighbors []*points.Point
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithK requests an initial k. It is applied after WithTrainingData and
// clamped like SetK.
func WithK(k int) Option {
	return func(e *Engine) { e.k = k }
}

// WithMetric selects the distance metric.
func WithMetric(m points.Metric) Option {
	return func(e *Engine) { e.metric = m }
}

// WithTrainingData seeds the training set.
func WithTrainingData(pts []*points.Point) Option {
	return func(e *Engine) { e.training = append([]*points.Point(nil), pts...) }
}

// Engine is a KNN classifier over a small, interactively edited training set.
type Engine struct {
	mu       sync.Mutex
	training []*points.Point
	k        int
	metric   points.Metric
	selected *points.Point
	nearest  []*points.Point
	// pendingK is a construction-time k the training set was too small for.
	pendingK int

	subs observe.List[EngineState]
}

// NewEngine returns an engine with the given options applied.
//
// A requested k larger than the initial training set (DefaultK on an empty
// engine, say) is held back and applied as soon as enough training data
// arrives. SetK discards it.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{k: DefaultK, metric: points.Euclidean}
	for _, opt := range opts {
		opt(e)
	}
	if e.k > len(e.training) {
		e.pendingK = e.k
	}
	e.k = clampK(e.k, len(e.training))
	return e
}

// reclampLocked fits k to the current training set size.
func (e *Engine) reclampLocked() {
	if e.pendingK > 0 {
		e.k = e.pendingK
		if len(e.training) >= e.pendingK {
			e.pendingK = 0
		}
	}
	e.k = clampK(e.k, len(e.training))
}

// clampK maps k into [1, n], or to 1 when n is 0.
func clampK(k, n int) int {
	if n < 1 {
		n = 1
	}
	if k < 1 {
		return 1
	}
	if k > n {
		return n
	}
	return k
}

// SetTrainingData replaces the training set. k is re-clamped and any previous
// selection or neighbor subset is dropped.
func (e *Engine) SetTrainingData(pts []*points.Point) {
	e.mu.Lock()
	e.training = append([]*points.Point(nil), pts...)
	e.reclampLocked()
	if e.selected != nil {
		e.selected.Selected = false
	}
	e.selected = nil
	e.nearest = nil
	klog.V(1).InfoS("knn training data replaced", "points", len(e.training), "k", e.k)
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// AddPoint appends a single training point.
func (e *Engine) AddPoint(p *points.Point) {
	if p == nil {
		return
	}
	e.mu.Lock()
	e.training = append(e.training, p)
	e.reclampLocked()
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// Clear empties the training set and every piece of derived state.
func (e *Engine) Clear() {
	e.SetTrainingData(nil)
}

// SetK stores newK clamped into [1, |training set|].
func (e *Engine) SetK(newK int) {
	e.mu.Lock()
	e.pendingK = 0
	e.k = clampK(newK, len(e.training))
	klog.V(2).InfoS("knn k changed", "requested", newK, "k", e.k)
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// K returns the current neighbor count.
func (e *Engine) K() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.k
}

// Metric returns the distance metric in use.
func (e *Engine) Metric() points.Metric {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metric
}

// TrainingData returns a copy of the training set slice.
func (e *Engine) TrainingData() []*points.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*points.Point(nil), e.training...)
}

// NearestNeighbors returns the subset recorded by the last Classify call.
func (e *Engine) NearestNeighbors() []*points.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*points.Point(nil), e.nearest...)
}

// Selected returns the currently selected point, or nil.
func (e *Engine) Selected() *points.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Distances returns every training point with its distance to query, sorted
// ascending. Equal distances keep training-set order. It has no side effects.
func (e *Engine) Distances(query *points.Point) []Neighbor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.distancesLocked(query)
}

func (e *Engine) distancesLocked(query *points.Point) []Neighbor {
	out := make([]Neighbor, len(e.training))
	for i, p := range e.training {
		out[i] = Neighbor{Point: p, Distance: e.metric.Distance(query, p)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Classify returns the majority category among the k training points nearest
// to query, and records those k points as the current nearest neighbors.
// ok is false when the training set is empty.
//
// A tie in the vote goes to the tied category whose member sits closest to
// the query.
func (e *Engine) Classify(query *points.Point) (category int, ok bool) {
	e.mu.Lock()
	category, ok = e.classifyLocked(query)
	st := e.snapshotLocked()
	e.mu.Unlock()
	if ok {
		e.subs.Publish(st)
	}
	return category, ok
}

func (e *Engine) classifyLocked(query *points.Point) (int, bool) {
	if query == nil || len(e.training) == 0 {
		return points.Unclassified, false
	}
	ranked := e.distancesLocked(query)
	kNearest := ranked[:e.k]

	e.nearest = make([]*points.Point, len(kNearest))
	for i, nb := range kNearest {
		e.nearest[i] = nb.Point
	}

	category := vote(kNearest)
	klog.V(2).InfoS("knn classified", "query", query, "k", e.k, "category", category)
	return category, true
}

// vote tallies categories over ranked (nearest first). Walking in rank order
// and only replacing the leader on a strictly higher count makes the nearest
// tied category win.
func vote(ranked []Neighbor) int {
	counts := make(map[int]int, len(ranked))
	for _, nb := range ranked {
		counts[nb.Point.Category]++
	}
	best, bestCount := points.Unclassified, 0
	for _, nb := range ranked {
		c := nb.Point.Category
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// Select marks p as the current selection and classifies it. The previous
// selection, if any, loses its Selected flag.
func (e *Engine) Select(p *points.Point) (category int, ok bool) {
	if p == nil {
		e.ClearSelection()
		return points.Unclassified, false
	}
	e.mu.Lock()
	if e.selected != nil {
		e.selected.Selected = false
	}
	e.selected = p
	p.Selected = true
	category, ok = e.classifyLocked(p)
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
	return category, ok
}

// ClearSelection forgets the selected point and the nearest-neighbor subset.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	if e.selected != nil {
		e.selected.Selected = false
	}
	e.selected = nil
	e.nearest = nil
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() EngineState {
	return EngineState{
		TrainingData:     append([]*points.Point(nil), e.training...),
		K:                e.k,
		Metric:           e.metric,
		Selected:         e.selected,
		NearestNeighbors: append([]*points.Point(nil), e.nearest...),
	}
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned func removes the subscription.
func (e *Engine) Subscribe(fn func(EngineState)) (unsubscribe func()) {
	return e.subs.Add(fn)
}
