// Package config loads the learnml settings from YAML.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default. Durations are written as Go duration strings ("1.5s",
// "300ms").
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/Noofbiz/learnml/knn"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/regression"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// DefaultYAML is the content written by WriteDefault. It decodes to Default().
const DefaultYAML = `# learnml settings
seed: 0 # 0 picks a time based seed
datasets_dir: "" # custom CSVs in <dir>/classification and <dir>/regression

knn:
  k: 3
  metric: euclidean
  highlight_delay: 500ms
  phase_delay: 1.5s
  reveal_interval: 300ms
  finish_delay: 2s

regression:
  learning_rate: 0.01
  epochs: 100
  epoch_delay: 0s
`

// KNN holds the classifier and walkthrough settings.
type KNN struct {
	K              int           `yaml:"k"`
	Metric         string        `yaml:"metric"`
	HighlightDelay time.Duration `yaml:"highlight_delay"`
	PhaseDelay     time.Duration `yaml:"phase_delay"`
	RevealInterval time.Duration `yaml:"reveal_interval"`
	FinishDelay    time.Duration `yaml:"finish_delay"`
}

// Regression holds the gradient descent settings.
type Regression struct {
	LearningRate float64       `yaml:"learning_rate"`
	Epochs       int           `yaml:"epochs"`
	EpochDelay   time.Duration `yaml:"epoch_delay"`
}

// Config is the full settings file.
type Config struct {
	Seed        int64      `yaml:"seed"`
	DatasetsDir string     `yaml:"datasets_dir"`
	KNN         KNN        `yaml:"knn"`
	Regression  Regression `yaml:"regression"`
}

// Default returns the built-in settings.
func Default() Config {
	timing := knn.DefaultTiming()
	return Config{
		KNN: KNN{
			K:              knn.DefaultK,
			Metric:         points.Euclidean.String(),
			HighlightDelay: knn.DefaultHighlightDelay,
			PhaseDelay:     timing.PhaseDelay,
			RevealInterval: timing.RevealInterval,
			FinishDelay:    timing.FinishDelay,
		},
		Regression: Regression{
			LearningRate: regression.DefaultLearningRate,
			Epochs:       regression.DefaultEpochs,
		},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r over Default and validates the result. Unknown
// keys are rejected. An empty document yields Default.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalid, field, v))
	}
	if c.KNN.K < 1 {
		bad("knn.k", c.KNN.K)
	}
	if _, err := points.ParseMetric(c.KNN.Metric); err != nil {
		errs = append(errs, fmt.Errorf("%w: knn.metric: %w", ErrInvalid, err))
	}
	for field, d := range map[string]time.Duration{
		"knn.highlight_delay":    c.KNN.HighlightDelay,
		"knn.phase_delay":        c.KNN.PhaseDelay,
		"knn.reveal_interval":    c.KNN.RevealInterval,
		"knn.finish_delay":       c.KNN.FinishDelay,
		"regression.epoch_delay": c.Regression.EpochDelay,
	} {
		if d < 0 {
			bad(field, d)
		}
	}
	lr := c.Regression.LearningRate
	if math.IsNaN(lr) || lr < regression.MinLearningRate || lr > regression.MaxLearningRate {
		bad("regression.learning_rate", lr)
	}
	if n := c.Regression.Epochs; n < regression.MinEpochs || n > regression.MaxEpochs {
		bad("regression.epochs", n)
	}
	return errors.Join(errs...)
}

// Metric returns the parsed distance metric. Validate has already rejected
// unknown names, so an invalid value falls back to Euclidean.
func (c Config) Metric() points.Metric {
	m, err := points.ParseMetric(c.KNN.Metric)
	if err != nil {
		return points.Euclidean
	}
	return m
}

// EngineOptions returns the knn.Engine options for c.
func (c Config) EngineOptions() []knn.Option {
	return []knn.Option{knn.WithK(c.KNN.K), knn.WithMetric(c.Metric())}
}

// Timing returns the walkthrough delays.
func (c Config) Timing() knn.Timing {
	return knn.Timing{
		PhaseDelay:     c.KNN.PhaseDelay,
		RevealInterval: c.KNN.RevealInterval,
		FinishDelay:    c.KNN.FinishDelay,
	}
}

// RegressionConfig returns the regression engine settings.
func (c Config) RegressionConfig() regression.Config {
	return regression.Config{
		LearningRate: c.Regression.LearningRate,
		Epochs:       c.Regression.Epochs,
		EpochDelay:   c.Regression.EpochDelay,
	}
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes DefaultYAML to path unless a file already exists
// there. It reports whether it wrote the file.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(path, []byte(DefaultYAML), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config %s: %w", path, err)
	}
	return true, nil
}
