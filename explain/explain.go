// Package explain holds the step-by-step written explanations of each
// algorithm and a cursor for paging through them.
package explain

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm.
var ErrUnknownAlgorithm = errors.New("explain: unknown algorithm")

// Algorithm names a topic that can be explained.
type Algorithm int

const (
	KNN Algorithm = iota
	LinearRegression
	DecisionTree
)

// Algorithms lists every topic in menu order.
var Algorithms = []Algorithm{KNN, LinearRegression, DecisionTree}

func (a Algorithm) String() string {
	switch a {
	case KNN:
		return "knn"
	case LinearRegression:
		return "linear-regression"
	case DecisionTree:
		return "decision-tree"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm is the inverse of String. "regression" is accepted for
// LinearRegression.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "knn":
		return KNN, nil
	case "linear-regression", "regression":
		return LinearRegression, nil
	case "decision-tree":
		return DecisionTree, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Step is one page of an explanation.
type Step struct {
	Title       string
	Description string
}

var knnSteps = []Step{
	{"1. Data Collection", "KNN starts with a dataset of points where each point has known features and a class label. These points form our training data."},
	{"2. Distance Calculation", "When classifying a new point, KNN calculates the distance between this point and all points in the training set. Common distance metrics include Euclidean distance."},
	{"3. Finding K Nearest Neighbors", "The algorithm then finds the K training points that are closest to the new point. The value of K is crucial - too small may lead to noise sensitivity, too large may include points from other classes."},
	{"4. Majority Voting", "The new point is assigned to the class that appears most frequently among its K nearest neighbors. This is why KNN is considered a 'voting-based' classifier."},
	{"5. Prediction Result", "The final prediction is made based on the majority vote. In case of a tie, the algorithm typically chooses the class of the nearest neighbor."},
}

var regressionSteps = []Step{
	{"1. The Model", "Linear regression describes the data with a straight line y = slope * x + intercept. Training starts with both parameters at zero."},
	{"2. Prediction", "For every training point the current line predicts a y value from the point's x value."},
	{"3. Error Calculation", "The error of a point is the vertical gap between the prediction and the real y. Squaring and averaging the gaps gives the mean squared error."},
	{"4. Gradient Calculation", "The gradient tells how the mean squared error changes when the slope or the intercept is nudged. It points in the direction of increasing error."},
	{"5. Parameter Update", "Both parameters take a small step against the gradient. The learning rate sets the size of that step; repeating the cycle for many epochs walks the line onto the data."},
}

// Steps returns the explanation pages for a. DecisionTree has none yet.
func Steps(a Algorithm) []Step {
	switch a {
	case KNN:
		return append([]Step(nil), knnSteps...)
	case LinearRegression:
		return append([]Step(nil), regressionSteps...)
	}
	return nil
}

// Walkthrough pages through the steps of one algorithm. Moving past either
// end is ignored.
type Walkthrough struct {
	mu      sync.Mutex
	alg     Algorithm
	steps   []Step
	current int
}

// NewWalkthrough starts at the first step of a.
func NewWalkthrough(a Algorithm) *Walkthrough {
	return &Walkthrough{alg: a, steps: Steps(a)}
}

// Algorithm returns the topic being explained.
func (w *Walkthrough) Algorithm() Algorithm { return w.alg }

// Len returns the number of steps.
func (w *Walkthrough) Len() int { return len(w.steps) }

// Next moves forward one step and reports whether it moved.
func (w *Walkthrough) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current >= len(w.steps)-1 {
		return false
	}
	w.current++
	return true
}

// Previous moves back one step and reports whether it moved.
func (w *Walkthrough) Previous() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current <= 0 {
		return false
	}
	w.current--
	return true
}

// Current returns the step on screen. ok is false when there are no steps.
func (w *Walkthrough) Current() (step Step, index int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.steps) == 0 {
		return Step{}, 0, false
	}
	return w.steps[w.current], w.current, true
}

// Progress returns how far through the explanation the cursor is, from
// 1/len at the first step to 1 at the last. It is 0 without steps.
func (w *Walkthrough) Progress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.steps) == 0 {
		return 0
	}
	return float64(w.current+1) / float64(len(w.steps))
}
