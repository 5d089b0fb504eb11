package knn

import (
	"fmt"
	"sync"
	"time"

	"github.com/Noofbiz/learnml/internal/observe"
	"github.com/Noofbiz/learnml/schedule"
	"k8s.io/klog/v2"
)

// Position is a slot in the module dependency chain.
type Position int

const (
	// KSelector holds the module that chooses k.
	KSelector Position = iota
	// DistanceCalculator holds the module that measures distances.
	DistanceCalculator
	// Classifier holds the module that votes.
	Classifier
)

// Positions lists every position in dependency order.
var Positions = []Position{KSelector, DistanceCalculator, Classifier}

// Valid reports whether p is one of Positions.
func (p Position) Valid() bool {
	return p >= KSelector && p <= Classifier
}

// Next returns the position that depends on p. ok is false for Classifier.
func (p Position) Next() (next Position, ok bool) {
	if !p.Valid() || p == Classifier {
		return 0, false
	}
	return p + 1, true
}

func (p Position) String() string {
	switch p {
	case KSelector:
		return "kValueSelector"
	case DistanceCalculator:
		return "distanceCalculator"
	case Classifier:
		return "classifier"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// ModuleName is the toolbox label of the module that fits p.
func (p Position) ModuleName() string {
	switch p {
	case KSelector:
		return "K Value Selector"
	case DistanceCalculator:
		return "Distance Calculator"
	case Classifier:
		return "Classifier"
	}
	return ""
}

// Description is the toolbox tooltip of the module that fits p.
func (p Position) Description() string {
	switch p {
	case KSelector:
		return "Select number of neighbors (K)"
	case DistanceCalculator:
		return "Calculate distances to all points"
	case Classifier:
		return "Classify based on nearest neighbors"
	}
	return ""
}

// Configurable reports whether the module at p exposes a control.
func (p Position) Configurable() bool {
	return p == KSelector
}

// WelcomeInstructions is the narration before any module is placed.
const WelcomeInstructions = `Welcome to KNN Algorithm Learning!

Start by dragging the K-Value Selector module from the toolbox.
This will allow you to control how many neighbors are considered for classification.

Follow the instructions as you build the algorithm step by step.`

var placedInstructions = [...]string{
	KSelector: `K-Value Selector placed!

This module lets you choose how many nearest neighbors to consider.
Use the slider below to adjust the K value.
Higher K values make the model more stable but less flexible.
Lower K values can capture more local patterns.

Next: Drag the Distance Calculator module to continue.`,
	DistanceCalculator: `Distance Calculator placed!

This module measures how far apart points are from each other.
Click on any point to see its distances.
Closer points have more influence on classification.
The K closest points will be highlighted.

Next: Add the Classifier module to complete the algorithm.`,
	Classifier: `Classifier placed!
Algorithm complete!

Now you can:
Click anywhere to classify new points.
Adjust K value to see how it affects classification.
Add more training points to improve accuracy.

Try experimenting with different patterns and K values!`,
}

var missingInstructions = [...]string{
	KSelector: `Start by placing the K-Value Selector

This module is the foundation of the KNN algorithm.
It determines how many neighbors we'll consider for classification.`,
	DistanceCalculator: `Place the Distance Calculator to continue

This module will help us find the nearest neighbors
by calculating distances between points.`,
	Classifier: `Complete the algorithm by placing the Classifier

This final module will use the K nearest neighbors
to classify new points based on their categories.`,
}

// PlacedInstructions returns the narration shown right after p is placed.
func PlacedInstructions(p Position) string {
	if !p.Valid() {
		return ""
	}
	return placedInstructions[p]
}

// MissingInstructions returns the prompt asking the learner to place p.
func MissingInstructions(p Position) string {
	if !p.Valid() {
		return ""
	}
	return missingInstructions[p]
}

// DefaultHighlightDelay is how long a freshly placed module stays highlighted.
const DefaultHighlightDelay = 500 * time.Millisecond

// PlacementState is a point-in-time copy of the placement map.
type PlacementState struct {
	Placed       [3]bool
	Animating    Position
	HasAnimating bool
	Instructions string
}

// PlacementOption configures a Placement.
type PlacementOption func(*Placement)

// WithHighlightDelay overrides DefaultHighlightDelay.
func WithHighlightDelay(d time.Duration) PlacementOption {
	return func(p *Placement) { p.highlightDelay = d }
}

// Placement enforces the K selector -> distance calculator -> classifier
// chain. Only prefixes of the chain are reachable: {}, {K}, {K,D}, {K,D,C}.
type Placement struct {
	mu             sync.Mutex
	engine         *Engine
	sched          schedule.Scheduler
	highlightDelay time.Duration

	placed       [3]bool
	animating    Position
	hasAnimating bool
	cancelClear  schedule.Cancel
	highlightGen uint64
	instructions string

	subs observe.List[PlacementState]
}

// NewPlacement returns an empty placement map. engine is only used by SetK.
func NewPlacement(engine *Engine, sched schedule.Scheduler, opts ...PlacementOption) *Placement {
	p := &Placement{
		engine:         engine,
		sched:          sched,
		highlightDelay: DefaultHighlightDelay,
		instructions:   WelcomeInstructions,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanPlace reports whether pos is empty and every earlier position is filled.
func (p *Placement) CanPlace(pos Position) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canPlaceLocked(pos)
}

func (p *Placement) canPlaceLocked(pos Position) bool {
	if !pos.Valid() || p.placed[pos] {
		return false
	}
	return pos == KSelector || p.placed[pos-1]
}

// PlaceModule installs the module at pos when CanPlace allows it and reports
// whether it did. The position is highlighted immediately and the highlight
// is cleared once, after the highlight delay.
func (p *Placement) PlaceModule(pos Position) bool {
	p.mu.Lock()
	if !p.canPlaceLocked(pos) {
		p.mu.Unlock()
		klog.V(2).InfoS("module placement refused", "position", pos)
		return false
	}
	p.placed[pos] = true
	p.instructions = placedInstructions[pos]
	p.animating, p.hasAnimating = pos, true
	p.stopHighlightLocked()

	p.highlightGen++
	gen := p.highlightGen
	p.cancelClear = p.sched.After(p.highlightDelay, func() {
		p.mu.Lock()
		if gen != p.highlightGen || !p.hasAnimating {
			p.mu.Unlock()
			return
		}
		p.hasAnimating = false
		p.cancelClear = nil
		st := p.snapshotLocked()
		p.mu.Unlock()
		p.subs.Publish(st)
	})
	klog.V(1).InfoS("module placed", "position", pos, "complete", p.placed[Classifier])
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.subs.Publish(st)
	return true
}

// RemoveModule clears pos and every position after it, then prompts for the
// first empty position.
func (p *Placement) RemoveModule(pos Position) {
	if !pos.Valid() {
		return
	}
	p.mu.Lock()
	for _, q := range Positions[pos:] {
		p.placed[q] = false
	}
	for _, q := range Positions[:pos+1] {
		if !p.placed[q] {
			p.instructions = missingInstructions[q]
			break
		}
	}
	if p.hasAnimating && p.animating >= pos {
		p.stopHighlightLocked()
		p.hasAnimating = false
	}
	klog.V(1).InfoS("module removed", "position", pos)
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.subs.Publish(st)
}

// Reset empties the placement map and restores the welcome narration.
func (p *Placement) Reset() {
	p.mu.Lock()
	p.placed = [3]bool{}
	p.stopHighlightLocked()
	p.hasAnimating = false
	p.instructions = WelcomeInstructions
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.subs.Publish(st)
}

func (p *Placement) stopHighlightLocked() {
	p.highlightGen++
	if p.cancelClear != nil {
		p.cancelClear()
		p.cancelClear = nil
	}
}

// SetK forwards k to the engine while the K selector is installed. It
// reports whether the value was applied.
func (p *Placement) SetK(k int) bool {
	if !p.IsPlaced(KSelector) || p.engine == nil {
		return false
	}
	p.engine.SetK(k)
	return true
}

// IsPlaced reports whether pos holds a module.
func (p *Placement) IsPlaced(pos Position) bool {
	if !pos.Valid() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.placed[pos]
}

// Placed lists the occupied positions in chain order.
func (p *Placement) Placed() []Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Position
	for _, pos := range Positions {
		if p.placed[pos] {
			out = append(out, pos)
		}
	}
	return out
}

// Complete reports whether the whole chain is installed.
func (p *Placement) Complete() bool {
	return p.IsPlaced(Classifier)
}

// Instructions returns the current narration.
func (p *Placement) Instructions() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instructions
}

// Animating returns the highlighted position, if any.
func (p *Placement) Animating() (Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.animating, p.hasAnimating
}

// Snapshot returns the current state.
func (p *Placement) Snapshot() PlacementState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Placement) snapshotLocked() PlacementState {
	return PlacementState{
		Placed:       p.placed,
		Animating:    p.animating,
		HasAnimating: p.hasAnimating,
		Instructions: p.instructions,
	}
}

// Subscribe registers fn for state changes.
func (p *Placement) Subscribe(fn func(PlacementState)) (unsubscribe func()) {
	return p.subs.Add(fn)
}
