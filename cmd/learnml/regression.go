package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Noofbiz/learnml/datasets"
	"github.com/Noofbiz/learnml/regression"
	"github.com/Noofbiz/learnml/render"
	"github.com/Noofbiz/learnml/synth"
	"github.com/dustin/go-humanize"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var (
	regDataset string
	regCSV     string
	regSynth   int
	regLR      float64
	regEpochs  int
	regDelay   time.Duration
	regSteps   int
	regOut     string
	regSeed    int64
)

func RegressionCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runRegression,
		UsageLine: "regression [options]",
		Short:     "fits a line by gradient descent",
		Long: `
fits y = slope*x + intercept to a dataset by batch gradient descent, either
in narrated micro-steps or as a full training run (Ctrl-C stops it after the
current epoch).

	$ learnml regression -dataset "Linear Trend" -epochs 500 -lr 0.5 -out fit.png
	$ learnml regression -steps 10

`,
		Flag: *flag.NewFlagSet("regression", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&regDataset, "dataset", "", "Preset or datasets_dir dataset name (default: first regression set)")
	cmd.Flag.StringVar(&regCSV, "csv", "", "Load samples from a CSV file with x,y columns")
	cmd.Flag.IntVar(&regSynth, "synth", 0, "Generate this many samples of y = 2x + 1 with noise instead of loading data")
	cmd.Flag.Float64Var(&regLR, "lr", 0, "Learning rate (overrides config)")
	cmd.Flag.IntVar(&regEpochs, "epochs", 0, "Number of epochs (overrides config)")
	cmd.Flag.DurationVar(&regDelay, "delay", 0, "Pause after each epoch (overrides config)")
	cmd.Flag.IntVar(&regSteps, "steps", 0, "Take this many narrated micro-steps instead of training")
	cmd.Flag.StringVar(&regOut, "out", "", "Write the final fit to this image file")
	cmd.Flag.Int64Var(&regSeed, "seed", 0, "Random seed for -synth (overrides config)")
	return cmd
}

func runRegression(cmd *commander.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	set := visited(&cmd.Flag)
	if set["lr"] {
		cfg.Regression.LearningRate = regLR
	}
	if set["epochs"] {
		cfg.Regression.Epochs = regEpochs
	}
	if set["delay"] {
		cfg.Regression.EpochDelay = regDelay
	}
	if set["seed"] {
		cfg.Seed = regSeed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine := regression.NewEngine(cfg.RegressionConfig())
	if regSynth > 0 {
		engine.SetData(synth.NewGenerator(cfg.Seed).Linear(regSynth, 2, 1, 0.1))
		fmt.Printf("Generated %s samples of y = 2x + 1\n", humanize.Comma(int64(regSynth)))
	} else {
		ds, err := pickDataset(cfg, datasets.Regression, regCSV, regDataset)
		if err != nil {
			return err
		}
		engine.SetData(ds.RegressionData())
		fmt.Printf("Dataset: %s (%d points)\n", ds.Name, ds.Len())
	}
	fmt.Printf("Initial error: %.4f\n", engine.MSE())

	if regSteps > 0 {
		for i := 0; i < regSteps; i++ {
			if !engine.TrainStep() {
				break
			}
			st := engine.Snapshot()
			fmt.Printf("[%s] %s\n", st.Step, st.Narration)
		}
		return finishRegression(engine)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		engine.StopTraining()
	}()

	epochs := cfg.Regression.Epochs
	every := max(1, epochs/10)
	engine.Subscribe(func(st regression.State) {
		if st.Training && st.Epoch > 0 && (st.Epoch%every == 0 || st.Epoch == epochs) {
			fmt.Printf("%s epoch: slope %.4f, intercept %.4f, error %.5f\n",
				humanize.Ordinal(st.Epoch), st.Slope, st.Intercept, st.Error)
		}
	})
	start := time.Now()
	if err := engine.Train(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Printf("Trained %s epochs in %s\n", humanize.Comma(int64(engine.Epoch())), time.Since(start).Round(time.Millisecond))
	return finishRegression(engine)
}

func finishRegression(engine *regression.Engine) error {
	slope, intercept := engine.Parameters()
	fmt.Printf("y = %.4fx %+.4f, error %.5f\n", slope, intercept, engine.MSE())
	if regOut == "" {
		return nil
	}
	if err := render.Regression(regOut, engine.Snapshot()); err != nil {
		return err
	}
	fmt.Printf("Plot written to %s\n", regOut)
	return nil
}
