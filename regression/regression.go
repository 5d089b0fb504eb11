// Package regression implements the linear regression side of the teaching
// tool: a single-feature model y = slope*x + intercept fitted by batch
// gradient descent, either one narrated micro-step at a time or in a
// cancellable training loop.
package regression

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Noofbiz/learnml/internal/observe"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// ErrTrainingInProgress is returned by Train while another Train call on the
// same engine is running.
var ErrTrainingInProgress = errors.New("regression: training already in progress")

// NoDataNarration is shown when stepping or training without data.
const NoDataNarration = "Add some data points first, then train the model."

// DataPoint is one (x, y) training sample.
type DataPoint struct {
	X, Y float64
}

// Step is a stage of the narrated gradient descent cycle.
type Step int

const (
	StepInitial Step = iota
	StepPrediction
	StepErrorCalculation
	StepGradientCalculation
	StepParameterUpdate
)

// Next returns the step that follows s; StepParameterUpdate wraps around.
func (s Step) Next() Step {
	if s >= StepParameterUpdate || s < StepInitial {
		return StepInitial
	}
	return s + 1
}

func (s Step) String() string {
	switch s {
	case StepInitial:
		return "initial"
	case StepPrediction:
		return "prediction"
	case StepErrorCalculation:
		return "error-calculation"
	case StepGradientCalculation:
		return "gradient-calculation"
	case StepParameterUpdate:
		return "parameter-update"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// State is a point-in-time copy of the engine.
type State struct {
	Data           []DataPoint
	Slope          float64
	Intercept      float64
	Error          float64
	Epoch          int
	Step           Step
	ShowPrediction bool
	ShowErrors     bool
	ShowGradients  bool
	Training       bool
	LearningRate   float64
	Epochs         int
	Narration      string
}

// Engine fits a line to its data. All methods are safe for concurrent use.
type Engine struct {
	mu   sync.Mutex
	cfg  Config
	data []DataPoint

	slope     float64
	intercept float64
	err       float64
	epoch     int

	step           Step
	showPrediction bool
	showErrors     bool
	showGradients  bool
	narration      string

	training bool
	stop     atomic.Bool

	subs observe.List[State]
}

// NewEngine returns an engine with zeroed parameters and no data.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// AddPoint appends one sample.
func (e *Engine) AddPoint(x, y float64) {
	e.mu.Lock()
	e.data = append(e.data, DataPoint{X: x, Y: y})
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// SetData replaces the samples. Parameters are kept.
func (e *Engine) SetData(data []DataPoint) {
	e.mu.Lock()
	e.data = append([]DataPoint(nil), data...)
	klog.V(1).InfoS("regression data replaced", "points", len(e.data))
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// Data returns a copy of the samples.
func (e *Engine) Data() []DataPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]DataPoint(nil), e.data...)
}

// ClearData drops every sample and zeroes the model.
func (e *Engine) ClearData() {
	e.mu.Lock()
	e.data = nil
	e.resetLocked()
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// ResetParameters zeroes the model and the step cycle but keeps the data.
func (e *Engine) ResetParameters() {
	e.mu.Lock()
	e.resetLocked()
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

func (e *Engine) resetLocked() {
	e.slope, e.intercept, e.err = 0, 0, 0
	e.epoch = 0
	e.step = StepInitial
	e.clearFlagsLocked()
	e.narration = ""
}

func (e *Engine) clearFlagsLocked() {
	e.showPrediction, e.showErrors, e.showGradients = false, false, false
}

// Predict returns slope*x + intercept.
func (e *Engine) Predict(x float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slope*x + e.intercept
}

// MSE returns the mean squared error of the current line, 0 without data.
func (e *Engine) MSE() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, _, mse := e.gradientsLocked()
	return mse
}

// LinePoints returns the fitted line at the smallest and largest x of the
// data, or nil without data.
func (e *Engine) LinePoints() []DataPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.data) == 0 {
		return nil
	}
	xs := e.xsLocked()
	lo, hi := floats.Min(xs), floats.Max(xs)
	return []DataPoint{
		{X: lo, Y: e.slope*lo + e.intercept},
		{X: hi, Y: e.slope*hi + e.intercept},
	}
}

func (e *Engine) xsLocked() []float64 {
	xs := make([]float64, len(e.data))
	for i, p := range e.data {
		xs[i] = p.X
	}
	return xs
}

// gradientsLocked returns the MSE gradients for the current parameters and
// the MSE itself.
func (e *Engine) gradientsLocked() (dSlope, dIntercept, mse float64) {
	n := len(e.data)
	if n == 0 {
		return 0, 0, 0
	}
	errs := make([]float64, n)
	for i, p := range e.data {
		errs[i] = e.slope*p.X + e.intercept - p.Y
	}
	fn := float64(n)
	dSlope = 2 / fn * floats.Dot(errs, e.xsLocked())
	dIntercept = 2 / fn * floats.Sum(errs)
	mse = floats.Dot(errs, errs) / fn
	return dSlope, dIntercept, mse
}

// updateLocked runs one batch gradient descent update. Error is the MSE of
// the parameters before the update.
func (e *Engine) updateLocked() {
	dSlope, dIntercept, mse := e.gradientsLocked()
	e.slope -= e.cfg.LearningRate * dSlope
	e.intercept -= e.cfg.LearningRate * dIntercept
	e.err = mse
	e.epoch++
}

// TrainStep advances the narrated cycle by one step. The explanatory steps
// only switch display flags and narration; the wrap from
// StepParameterUpdate back to StepInitial performs the update. Without data
// it only sets NoDataNarration and returns false.
func (e *Engine) TrainStep() bool {
	e.mu.Lock()
	if len(e.data) == 0 {
		e.narration = NoDataNarration
		st := e.snapshotLocked()
		e.mu.Unlock()
		e.subs.Publish(st)
		return false
	}

	next := e.step.Next()
	lr := e.cfg.LearningRate
	switch next {
	case StepPrediction:
		e.showPrediction = true
		e.narration = fmt.Sprintf("Prediction: with slope %.3f and intercept %.3f the line predicts y = %.3f*x + %.3f for every point.",
			e.slope, e.intercept, e.slope, e.intercept)
	case StepErrorCalculation:
		e.showErrors = true
		_, _, mse := e.gradientsLocked()
		e.narration = fmt.Sprintf("Error: the vertical gaps between the line and the %d points give a mean squared error of %.4f.",
			len(e.data), mse)
	case StepGradientCalculation:
		e.showGradients = true
		dSlope, dIntercept, _ := e.gradientsLocked()
		e.narration = fmt.Sprintf("Gradient: the error changes by %.4f per unit of slope and %.4f per unit of intercept.",
			dSlope, dIntercept)
	case StepParameterUpdate:
		dSlope, dIntercept, _ := e.gradientsLocked()
		e.narration = fmt.Sprintf("Update: stepping against the gradient with learning rate %g moves the slope to %.3f and the intercept to %.3f.",
			lr, e.slope-lr*dSlope, e.intercept-lr*dIntercept)
	case StepInitial:
		e.updateLocked()
		e.clearFlagsLocked()
		e.narration = fmt.Sprintf("Epoch %d done: slope %.3f, intercept %.3f, error before the update %.4f.",
			e.epoch, e.slope, e.intercept, e.err)
		klog.V(2).InfoS("regression step update", "epoch", e.epoch, "slope", e.slope, "intercept", e.intercept, "mse", e.err)
	}
	e.step = next
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
	return true
}

// Train runs up to Epochs batch updates and yields after each one. It
// returns early, with a nil error, once StopTraining is called; the epoch in
// progress always completes. A cancelled ctx stops it the same way but
// returns ctx.Err(). Without data Train does nothing.
func (e *Engine) Train(ctx context.Context) error {
	e.mu.Lock()
	if e.training {
		e.mu.Unlock()
		return ErrTrainingInProgress
	}
	if len(e.data) == 0 {
		e.narration = NoDataNarration
		st := e.snapshotLocked()
		e.mu.Unlock()
		e.subs.Publish(st)
		return nil
	}
	e.training = true
	e.stop.Store(false)
	e.epoch = 0
	e.step = StepInitial
	e.clearFlagsLocked()
	epochs, delay := e.cfg.Epochs, e.cfg.EpochDelay
	klog.V(1).InfoS("regression training started", "epochs", epochs, "learningRate", e.cfg.LearningRate, "points", len(e.data))
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)

	defer func() {
		e.mu.Lock()
		e.training = false
		klog.V(1).InfoS("regression training finished", "epoch", e.epoch, "slope", e.slope, "intercept", e.intercept, "mse", e.err)
		st := e.snapshotLocked()
		e.mu.Unlock()
		e.subs.Publish(st)
	}()

	for i := 0; i < epochs; i++ {
		if e.stop.Load() {
			klog.V(1).InfoS("regression training stopped", "epoch", i)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		e.mu.Lock()
		if len(e.data) == 0 {
			e.mu.Unlock()
			return nil
		}
		e.updateLocked()
		e.narration = fmt.Sprintf("Training: epoch %d of %d, error %.4f.", e.epoch, epochs, e.err)
		st := e.snapshotLocked()
		e.mu.Unlock()
		e.subs.Publish(st)

		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else {
			runtime.Gosched()
		}
	}
	return nil
}

// StopTraining asks a running Train to return before its next epoch.
func (e *Engine) StopTraining() {
	e.stop.Store(true)
}

// SetLearningRate stores lr clamped into [MinLearningRate, MaxLearningRate].
func (e *Engine) SetLearningRate(lr float64) {
	e.mu.Lock()
	e.cfg.LearningRate = clampLearningRate(lr)
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// SetEpochs stores n clamped into [MinEpochs, MaxEpochs]. A running Train
// keeps the count it started with.
func (e *Engine) SetEpochs(n int) {
	e.mu.Lock()
	e.cfg.Epochs = clampEpochs(n)
	st := e.snapshotLocked()
	e.mu.Unlock()
	e.subs.Publish(st)
}

// Config returns the current hyperparameters.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Parameters returns the slope and intercept.
func (e *Engine) Parameters() (slope, intercept float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slope, e.intercept
}

// Step returns the current position in the narrated cycle.
func (e *Engine) Step() Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// Epoch returns the number of updates since the last reset or Train call.
func (e *Engine) Epoch() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.epoch
}

// Error returns the MSE recorded by the last update.
func (e *Engine) Error() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Training reports whether Train is running.
func (e *Engine) Training() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.training
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	return State{
		Data:           append([]DataPoint(nil), e.data...),
		Slope:          e.slope,
		Intercept:      e.intercept,
		Error:          e.err,
		Epoch:          e.epoch,
		Step:           e.step,
		ShowPrediction: e.showPrediction,
		ShowErrors:     e.showErrors,
		ShowGradients:  e.showGradients,
		Training:       e.training,
		LearningRate:   e.cfg.LearningRate,
		Epochs:         e.cfg.Epochs,
		Narration:      e.narration,
	}
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func removes the subscription.
func (e *Engine) Subscribe(fn func(State)) (unsubscribe func()) {
	return e.subs.Add(fn)
}
