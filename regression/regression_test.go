package regression

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyLine samples y = 2x + 1 plus a small deterministic wiggle on [-1, 1].
func noisyLine() []DataPoint {
	var data []DataPoint
	for i := -10; i <= 10; i++ {
		x := float64(i) / 10
		data = append(data, DataPoint{X: x, Y: 2*x + 1 + 0.05*math.Sin(7*x)})
	}
	return data
}

func TestConfigDefaultsAndClamping(t *testing.T) {
	cfg := NewEngine(Config{}).Config()
	assert.Equal(t, DefaultLearningRate, cfg.LearningRate)
	assert.Equal(t, DefaultEpochs, cfg.Epochs)
	assert.Zero(t, cfg.EpochDelay)

	cfg = NewEngine(Config{LearningRate: 5, Epochs: 5000, EpochDelay: -time.Second}).Config()
	assert.Equal(t, MaxLearningRate, cfg.LearningRate)
	assert.Equal(t, MaxEpochs, cfg.Epochs)
	assert.Zero(t, cfg.EpochDelay)

	cfg = NewEngine(Config{LearningRate: 1e-9, Epochs: -3}).Config()
	assert.Equal(t, MinLearningRate, cfg.LearningRate)
	assert.Equal(t, MinEpochs, cfg.Epochs)

	e := NewEngine(Config{})
	e.SetLearningRate(0)
	e.SetEpochs(0)
	assert.Equal(t, MinLearningRate, e.Config().LearningRate)
	assert.Equal(t, MinEpochs, e.Config().Epochs)
}

func TestNonFiniteLearningRateFallsBackToDefault(t *testing.T) {
	for _, lr := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, DefaultLearningRate, NewEngine(Config{LearningRate: lr}).Config().LearningRate, "lr=%v", lr)

		e := NewEngine(Config{LearningRate: 0.1})
		e.SetLearningRate(lr)
		assert.Equal(t, DefaultLearningRate, e.Config().LearningRate, "lr=%v", lr)

		e.SetData([]DataPoint{{X: 0, Y: 1}, {X: 1, Y: 3}})
		for range 5 {
			e.TrainStep()
		}
		slope, intercept := e.Parameters()
		assert.InDelta(t, 0.03, slope, 1e-9)
		assert.InDelta(t, 0.04, intercept, 1e-9)
	}
}

func TestPredictAndLinePoints(t *testing.T) {
	e := NewEngine(Config{})
	assert.Nil(t, e.LinePoints())
	assert.Zero(t, e.MSE())

	e.SetData([]DataPoint{{X: 3, Y: 1}, {X: -2, Y: 0}, {X: 1, Y: 4}})
	assert.Zero(t, e.Predict(10))
	assert.Equal(t, []DataPoint{{X: -2, Y: 0}, {X: 3, Y: 0}}, e.LinePoints())
	assert.InDelta(t, 17.0/3, e.MSE(), 1e-12)
}

func TestTrainStepCycle(t *testing.T) {
	e := NewEngine(Config{})
	e.AddPoint(0, 1)
	e.AddPoint(1, 3)

	wantFlags := []struct {
		step                 Step
		pred, errs, gradient bool
	}{
		{StepPrediction, true, false, false},
		{StepErrorCalculation, true, true, false},
		{StepGradientCalculation, true, true, true},
		{StepParameterUpdate, true, true, true},
	}
	for _, w := range wantFlags {
		require.True(t, e.TrainStep())
		st := e.Snapshot()
		assert.Equal(t, w.step, st.Step)
		assert.Equal(t, w.pred, st.ShowPrediction, "%v", w.step)
		assert.Equal(t, w.errs, st.ShowErrors, "%v", w.step)
		assert.Equal(t, w.gradient, st.ShowGradients, "%v", w.step)
		assert.Zero(t, st.Slope, "explanatory steps leave the parameters alone")
		assert.Zero(t, st.Intercept)
		assert.Zero(t, st.Epoch)
		assert.NotEmpty(t, st.Narration)
	}
	assert.Contains(t, e.Snapshot().Narration, "0.030", "the update step previews the new slope")

	require.True(t, e.TrainStep())
	st := e.Snapshot()
	assert.Equal(t, StepInitial, st.Step)
	assert.False(t, st.ShowPrediction || st.ShowErrors || st.ShowGradients)
	assert.InDelta(t, 0.03, st.Slope, 1e-12)
	assert.InDelta(t, 0.04, st.Intercept, 1e-12)
	assert.InDelta(t, 5.0, st.Error, 1e-12, "error is measured before the update")
	assert.Equal(t, 1, st.Epoch)
}

func TestStepWithoutDataIsNoop(t *testing.T) {
	e := NewEngine(Config{})
	assert.False(t, e.TrainStep())
	assert.Equal(t, StepInitial, e.Step())
	assert.Equal(t, NoDataNarration, e.Snapshot().Narration)

	require.NoError(t, e.Train(context.Background()))
	assert.Zero(t, e.Epoch())
	assert.False(t, e.Training())
}

func TestTrainConverges(t *testing.T) {
	e := NewEngine(Config{LearningRate: 0.1, Epochs: 200})
	e.SetData(noisyLine())
	before := e.MSE()

	var errs []float64
	e.Subscribe(func(st State) {
		if st.Training && st.Epoch > 0 {
			errs = append(errs, st.Error)
		}
	})
	require.NoError(t, e.Train(context.Background()))

	assert.Equal(t, 200, e.Epoch())
	assert.Less(t, e.MSE(), before)
	slope, intercept := e.Parameters()
	assert.InDelta(t, 2.0, slope, 0.2)
	assert.InDelta(t, 1.0, intercept, 0.2)

	require.Len(t, errs, 200)
	for i := 1; i < len(errs); i++ {
		assert.LessOrEqual(t, errs[i], errs[i-1]+1e-12, "epoch %d", i+1)
	}
}

func TestStopTrainingFinishesCurrentEpoch(t *testing.T) {
	e := NewEngine(Config{Epochs: 50})
	e.SetData(noisyLine())
	unsubscribe := e.Subscribe(func(st State) {
		if st.Training && st.Epoch == 3 {
			e.StopTraining()
		}
	})
	require.NoError(t, e.Train(context.Background()))
	assert.Equal(t, 3, e.Epoch())
	assert.False(t, e.Training())

	// a new run clears the stop request
	unsubscribe()
	e.SetEpochs(5)
	require.NoError(t, e.Train(context.Background()))
	assert.Equal(t, 5, e.Epoch())
}

func TestTrainRejectsConcurrentRun(t *testing.T) {
	e := NewEngine(Config{Epochs: 5})
	e.SetData(noisyLine())
	var nested error
	e.Subscribe(func(st State) {
		if st.Training && st.Epoch == 1 {
			nested = e.Train(context.Background())
		}
	})
	require.NoError(t, e.Train(context.Background()))
	assert.ErrorIs(t, nested, ErrTrainingInProgress)
	assert.Equal(t, 5, e.Epoch())
}

func TestTrainHonoursContext(t *testing.T) {
	e := NewEngine(Config{Epochs: 10})
	e.SetData(noisyLine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Train(ctx), context.Canceled)
	assert.Zero(t, e.Epoch())
	slope, intercept := e.Parameters()
	assert.Zero(t, slope)
	assert.Zero(t, intercept)

	e = NewEngine(Config{Epochs: 1000, EpochDelay: 20 * time.Millisecond})
	e.SetData(noisyLine())
	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Train(ctx), context.DeadlineExceeded)
	assert.GreaterOrEqual(t, e.Epoch(), 1)
	assert.Less(t, e.Epoch(), 1000)
}

func TestResetAndClear(t *testing.T) {
	e := NewEngine(Config{Epochs: 10})
	e.SetData(noisyLine())
	require.NoError(t, e.Train(context.Background()))
	e.TrainStep()

	e.ResetParameters()
	st := e.Snapshot()
	assert.Len(t, st.Data, 21)
	assert.Zero(t, st.Slope)
	assert.Zero(t, st.Intercept)
	assert.Zero(t, st.Error)
	assert.Zero(t, st.Epoch)
	assert.Equal(t, StepInitial, st.Step)
	assert.False(t, st.ShowPrediction)

	require.NoError(t, e.Train(context.Background()))
	e.ClearData()
	st = e.Snapshot()
	assert.Empty(t, st.Data)
	assert.Zero(t, st.Slope)
	assert.Zero(t, st.Epoch)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "gradient-calculation", StepGradientCalculation.String())
	assert.Equal(t, StepInitial, StepParameterUpdate.Next())
	assert.Equal(t, "Step(7)", Step(7).String())
}
