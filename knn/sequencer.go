package knn

import (
	"fmt"
	"sync"
	"time"

	"github.com/Noofbiz/learnml/internal/observe"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/schedule"
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// Phase is a stage of the KNN walkthrough.
type Phase int

const (
	// PhaseIdle shows the instructions.
	PhaseIdle Phase = iota
	// PhaseNewPoint introduces the unclassified demo point.
	PhaseNewPoint
	// PhaseDistances shows the distance to every training point.
	PhaseDistances
	// PhaseNearest highlights the k nearest training points.
	PhaseNearest
	// PhaseClassified shows the result of the vote.
	PhaseClassified
)

// MaxPhase is the last phase of the walkthrough.
const MaxPhase = PhaseClassified

var phaseDescriptions = [...]string{
	PhaseIdle:       "Build the algorithm from the toolbox, then start the demo to watch KNN classify a new point.",
	PhaseNewPoint:   "A new point appears whose category is unknown; KNN has to work it out from the training data.",
	PhaseDistances:  "The distance from the new point to every training point is measured and the points are ranked.",
	PhaseNearest:    "Only the K closest training points are kept; these are the nearest neighbors.",
	PhaseClassified: "The neighbors vote and the new point takes the category that appears most often among them.",
}

// StepDescription returns the fixed sentence for ph.
func StepDescription(ph Phase) string {
	if ph < PhaseIdle || ph > MaxPhase {
		return ""
	}
	return phaseDescriptions[ph]
}

func (ph Phase) String() string {
	switch ph {
	case PhaseIdle:
		return "idle"
	case PhaseNewPoint:
		return "new-point"
	case PhaseDistances:
		return "distances"
	case PhaseNearest:
		return "k-nearest"
	case PhaseClassified:
		return "classified"
	}
	return fmt.Sprintf("Phase(%d)", int(ph))
}

// PointSource synthesizes the demo point for a walkthrough.
type PointSource interface {
	DemoPoint(training []*points.Point) *points.Point
}

// PointSourceFunc adapts a function to PointSource.
type PointSourceFunc func(training []*points.Point) *points.Point

// DemoPoint implements PointSource.
func (f PointSourceFunc) DemoPoint(training []*points.Point) *points.Point { return f(training) }

// centerSource places the demo point in the middle of the training data.
var centerSource = PointSourceFunc(func(training []*points.Point) *points.Point {
	r, ok := points.Bounds(training)
	if !ok {
		r = points.UnitRect
	}
	return points.New(r.MinX+r.Width()/2, r.MinY+r.Height()/2, points.Unclassified)
})

// Timing holds the autoplay delays.
type Timing struct {
	// PhaseDelay separates consecutive phases.
	PhaseDelay time.Duration
	// RevealInterval separates the reveal of consecutive distances in phase 2.
	RevealInterval time.Duration
	// FinishDelay is how long the classified result stays on screen.
	FinishDelay time.Duration
}

// DefaultTiming returns the delays used when WithTiming is not given.
func DefaultTiming() Timing {
	return Timing{
		PhaseDelay:     1500 * time.Millisecond,
		RevealInterval: 300 * time.Millisecond,
		FinishDelay:    2 * time.Second,
	}
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithTiming overrides DefaultTiming. Zero fields keep their default.
func WithTiming(t Timing) SequencerOption {
	return func(s *Sequencer) {
		if t.PhaseDelay > 0 {
			s.timing.PhaseDelay = t.PhaseDelay
		}
		if t.RevealInterval > 0 {
			s.timing.RevealInterval = t.RevealInterval
		}
		if t.FinishDelay > 0 {
			s.timing.FinishDelay = t.FinishDelay
		}
	}
}

// SequencerState is a point-in-time copy of the walkthrough.
type SequencerState struct {
	Phase       Phase
	Running     bool
	DemoPoint   *points.Point
	Distances   []Neighbor
	Revealed    int
	Highlighted []*points.Point
	Result      int
	Classified  bool
	Description string
	Caption     string
}

// Sequencer drives the five-phase KNN walkthrough.
//
// Every phase's state is produced by a single derive step, whether the phase
// was reached by autoplay or by NextStep/PreviousStep. Autoplay callbacks
// carry a run number and are dropped once the run is stopped.
type Sequencer struct {
	mu        sync.Mutex
	engine    *Engine
	placement *Placement
	sched     schedule.Scheduler
	source    PointSource
	timing    Timing

	phase       Phase
	demo        *points.Point
	distances   []Neighbor
	revealed    int
	highlighted []*points.Point
	result      int
	classified  bool

	running bool
	run     uint64
	cancel  schedule.Cancel

	subs observe.List[SequencerState]
}

// NewSequencer wires a walkthrough to its engine and placement map. A nil
// source puts the demo point at the centre of the training data.
func NewSequencer(engine *Engine, placement *Placement, sched schedule.Scheduler, source PointSource, opts ...SequencerOption) *Sequencer {
	if source == nil {
		source = centerSource
	}
	s := &Sequencer{
		engine:    engine,
		placement: placement,
		sched:     sched,
		source:    source,
		timing:    DefaultTiming(),
		result:    points.Unclassified,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches an autoplay run. It does nothing and returns false unless
// the classifier module is placed, or while a run is already active.
func (s *Sequencer) Start() bool {
	if !s.placement.Complete() {
		klog.V(1).InfoS("walkthrough start ignored", "reason", "module chain incomplete")
		return false
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		klog.V(1).InfoS("walkthrough start ignored", "reason", "already running")
		return false
	}
	s.run++
	s.running = true
	run := s.run

	s.clearDerivedLocked()
	s.phase = PhaseIdle
	s.engine.ClearSelection()
	s.demo = s.newDemoLocked()
	klog.V(1).InfoS("walkthrough autoplay started", "run", run, "demo", s.demo)

	s.afterLocked(s.timing.PhaseDelay, func() { s.autoPhase(run, PhaseNewPoint) })
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.Publish(st)
	return true
}

// afterLocked schedules the next autoplay callback. Callbacks check the run
// number themselves, so a stale timer that fires after a stop is harmless.
func (s *Sequencer) afterLocked(d time.Duration, fn func()) {
	s.cancel = s.sched.After(d, fn)
}

func (s *Sequencer) autoPhase(run uint64, ph Phase) {
	s.mu.Lock()
	if !s.running || s.run != run {
		s.mu.Unlock()
		return
	}
	s.deriveLocked(ph)
	klog.V(2).InfoS("walkthrough phase", "run", run, "phase", ph)

	switch ph {
	case PhaseNewPoint:
		s.afterLocked(s.timing.PhaseDelay, func() { s.autoPhase(run, PhaseDistances) })
	case PhaseDistances:
		s.revealed = 0
		if len(s.distances) == 0 {
			s.afterLocked(s.timing.PhaseDelay, func() { s.autoPhase(run, PhaseNearest) })
		} else {
			s.afterLocked(s.timing.RevealInterval, func() { s.autoReveal(run) })
		}
	case PhaseNearest:
		s.afterLocked(s.timing.PhaseDelay, func() { s.autoPhase(run, PhaseClassified) })
	case PhaseClassified:
		s.afterLocked(s.timing.FinishDelay, func() { s.autoFinish(run) })
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.Publish(st)
}

func (s *Sequencer) autoReveal(run uint64) {
	s.mu.Lock()
	if !s.running || s.run != run {
		s.mu.Unlock()
		return
	}
	s.revealed++
	if s.revealed < len(s.distances) {
		s.afterLocked(s.timing.RevealInterval, func() { s.autoReveal(run) })
	} else {
		s.afterLocked(s.timing.PhaseDelay, func() { s.autoPhase(run, PhaseNearest) })
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.Publish(st)
}

func (s *Sequencer) autoFinish(run uint64) {
	s.mu.Lock()
	if !s.running || s.run != run {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel = nil
	s.deriveLocked(PhaseIdle)
	klog.V(1).InfoS("walkthrough autoplay finished", "run", run)
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.Publish(st)
}

// stopLocked ends the active autoplay run, if any.
func (s *Sequencer) stopLocked() {
	if !s.running {
		return
	}
	s.running = false
	s.run++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// NextStep moves one phase forward. Leaving the idle phase requires the
// complete module chain. An active autoplay run is stopped.
func (s *Sequencer) NextStep() {
	s.mu.Lock()
	if s.phase >= MaxPhase || (s.phase == PhaseIdle && !s.placement.Complete()) {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.deriveLocked(s.phase + 1)
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.Publish(st)
}

// PreviousStep moves one phase back. An active autoplay run is stopped.
func (s *Sequencer) PreviousStep() {
	s.mu.Lock()
	if s.phase <= PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.deriveLocked(s.phase - 1)
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.Publish(st)
}

// Reset stops autoplay, clears the walkthrough and empties the placement map.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	s.stopLocked()
	s.deriveLocked(PhaseIdle)
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.placement.Reset()
	s.subs.Publish(st)
}

func (s *Sequencer) newDemoLocked() *points.Point {
	training := s.engine.TrainingData()
	p := s.source.DemoPoint(training)
	if p == nil {
		p = centerSource.DemoPoint(training)
	}
	p.Category = points.Unclassified
	return p
}

func (s *Sequencer) clearDerivedLocked() {
	s.demo = nil
	s.distances = nil
	s.revealed = 0
	s.highlighted = nil
	s.result = points.Unclassified
	s.classified = false
}

// deriveLocked rebuilds the walkthrough state for ph from the demo point and
// the engine alone.
func (s *Sequencer) deriveLocked(ph Phase) {
	s.phase = ph
	if ph == PhaseIdle {
		s.clearDerivedLocked()
		s.engine.ClearSelection()
		return
	}

	demo := s.demo
	if demo == nil {
		demo = s.newDemoLocked()
	}
	s.clearDerivedLocked()
	s.demo = demo
	s.demo.Category = points.Unclassified

	if ph >= PhaseDistances {
		s.distances = s.engine.Distances(s.demo)
		s.revealed = len(s.distances)
	}
	if ph >= PhaseNearest {
		k := min(s.engine.K(), len(s.distances))
		s.highlighted = make([]*points.Point, k)
		for i := range k {
			s.highlighted[i] = s.distances[i].Point
		}
	}
	if ph < PhaseClassified {
		s.engine.ClearSelection()
		return
	}
	if cat, ok := s.engine.Classify(s.demo); ok {
		s.demo.Category = cat
		s.result = cat
		s.classified = true
	}
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Running reports whether an autoplay run is active.
func (s *Sequencer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// StepDescription returns the sentence for the current phase.
func (s *Sequencer) StepDescription() string {
	return StepDescription(s.Phase())
}

// Snapshot returns the current state.
func (s *Sequencer) Snapshot() SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sequencer) snapshotLocked() SequencerState {
	return SequencerState{
		Phase:       s.phase,
		Running:     s.running,
		DemoPoint:   s.demo,
		Distances:   append([]Neighbor(nil), s.distances...),
		Revealed:    s.revealed,
		Highlighted: append([]*points.Point(nil), s.highlighted...),
		Result:      s.result,
		Classified:  s.classified,
		Description: StepDescription(s.phase),
		Caption:     s.captionLocked(),
	}
}

func (s *Sequencer) captionLocked() string {
	switch s.phase {
	case PhaseNewPoint:
		if s.demo != nil {
			return fmt.Sprintf("New point at (%.2f, %.2f)", s.demo.X, s.demo.Y)
		}
	case PhaseDistances:
		if len(s.distances) == 0 {
			return "There are no training points to measure."
		}
		if s.revealed == 0 {
			return fmt.Sprintf("Measuring %d distances...", len(s.distances))
		}
		if s.revealed < len(s.distances) {
			nb := s.distances[s.revealed-1]
			return fmt.Sprintf("%s closest point: distance %.3f", humanize.Ordinal(s.revealed), nb.Distance)
		}
		return fmt.Sprintf("All %d distances measured.", len(s.distances))
	case PhaseNearest:
		return fmt.Sprintf("The %d nearest neighbors are highlighted.", len(s.highlighted))
	case PhaseClassified:
		if s.classified {
			return fmt.Sprintf("Classified as category %d by %d neighbors.", s.result, len(s.highlighted))
		}
		return "Nothing to vote on: the training set is empty."
	}
	return ""
}

// Subscribe registers fn for state changes.
func (s *Sequencer) Subscribe(fn func(SequencerState)) (unsubscribe func()) {
	return s.subs.Add(fn)
}
