package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Noofbiz/learnml/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultYAMLMatchesDefault(t *testing.T) {
	cfg, err := Read(strings.NewReader(DefaultYAML))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, Default().Validate())
}

func TestEmptyDocumentIsDefault(t *testing.T) {
	cfg, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPartialOverride(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
knn:
  k: 5
  metric: Manhattan
  phase_delay: 250ms
regression:
  epoch_delay: 10ms
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.KNN.K)
	assert.Equal(t, points.Manhattan, cfg.Metric())
	assert.Equal(t, 250*time.Millisecond, cfg.Timing().PhaseDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Timing().RevealInterval, "untouched keys keep their default")
	assert.Equal(t, 0.01, cfg.RegressionConfig().LearningRate)
	assert.Equal(t, 10*time.Millisecond, cfg.RegressionConfig().EpochDelay)
	assert.Len(t, cfg.EngineOptions(), 2)
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := Default()
	cfg.KNN.K = 0
	cfg.KNN.Metric = "cosine"
	cfg.KNN.FinishDelay = -time.Second
	cfg.Regression.LearningRate = 3
	cfg.Regression.Epochs = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, field := range []string{"knn.k", "knn.metric", "knn.finish_delay", "regression.learning_rate", "regression.epochs"} {
		assert.Contains(t, err.Error(), field)
	}
	assert.ErrorIs(t, err, points.ErrUnknownMetric)
}

func TestValidateRejectsNaNLearningRate(t *testing.T) {
	_, err := Read(strings.NewReader("regression:\n  learning_rate: .nan\n"))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "regression.learning_rate")

	_, err = Read(strings.NewReader("regression:\n  learning_rate: .inf\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestReadRejectsUnknownKeys(t *testing.T) {
	_, err := Read(strings.NewReader("knn:\n  neighbours: 4\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("regression:\n  epochs: 5000\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMarshalReadsBack(t *testing.T) {
	cfg := Default()
	cfg.Seed = 42
	cfg.KNN.RevealInterval = 75 * time.Millisecond
	out, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "reveal_interval: 75ms")

	back, err := Read(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestWriteDefaultAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learnml.yaml")

	wrote, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	require.NoError(t, os.WriteFile(path, []byte("seed: 9\n"), 0o644))
	wrote, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, wrote, "an existing file is left alone")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 9, cfg.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
