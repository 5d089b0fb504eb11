package regression

import (
	"math"
	"time"
)

// Default and limit values for Config.
const (
	DefaultLearningRate = 0.01
	DefaultEpochs       = 100

	MinLearningRate = 0.001
	MaxLearningRate = 1.0
	MinEpochs       = 1
	MaxEpochs       = 1000
)

// Config holds the training hyperparameters.
type Config struct {
	// LearningRate scales each gradient step. Zero, NaN and infinities mean
	// DefaultLearningRate; other values are clamped into
	// [MinLearningRate, MaxLearningRate].
	LearningRate float64

	// Epochs is the number of batch updates Train runs. Zero means
	// DefaultEpochs; other values are clamped into [MinEpochs, MaxEpochs].
	Epochs int

	// EpochDelay pauses Train after every epoch so a viewer can follow the
	// line moving. Zero only yields the goroutine.
	EpochDelay time.Duration
}

// withDefaults fills zero fields and clamps the rest.
func (c Config) withDefaults() Config {
	if c.LearningRate == 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	c.LearningRate = clampLearningRate(c.LearningRate)
	c.Epochs = clampEpochs(c.Epochs)
	if c.EpochDelay < 0 {
		c.EpochDelay = 0
	}
	return c
}

func clampLearningRate(lr float64) float64 {
	if math.IsNaN(lr) || math.IsInf(lr, 0) {
		return DefaultLearningRate
	}
	return max(MinLearningRate, min(lr, MaxLearningRate))
}

func clampEpochs(n int) int {
	return max(MinEpochs, min(n, MaxEpochs))
}
