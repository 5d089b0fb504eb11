package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Noofbiz/learnml/datasets"
	"github.com/Noofbiz/learnml/knn"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/render"
	"github.com/Noofbiz/learnml/schedule"
	"github.com/Noofbiz/learnml/synth"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"k8s.io/klog/v2"
)

var (
	knnDataset  string
	knnCSV      string
	knnClusters int
	knnK        int
	knnMetric   string
	knnQuery    string
	knnAutoplay bool
	knnOut      string
	knnSeed     int64
)

func KNNCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runKNN,
		UsageLine: "knn [options]",
		Short:     "builds the KNN module chain and walks through one classification",
		Long: `
builds the KNN module chain (k selector, distance calculator, classifier),
then walks a synthesized point through the five phases of a classification.

	$ learnml knn -dataset "Iris-like Flower Data" [-k 5] [-autoplay] [-out plots]
	$ learnml knn -clusters 3 -query 0.1,0.4

`,
		Flag: *flag.NewFlagSet("knn", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&knnDataset, "dataset", "", "Preset or datasets_dir dataset name (default: first classification set)")
	cmd.Flag.StringVar(&knnCSV, "csv", "", "Load training data from a CSV file with x,y,category columns")
	cmd.Flag.IntVar(&knnClusters, "clusters", 0, "Generate this many random clusters of 8 points instead of loading data")
	cmd.Flag.IntVar(&knnK, "k", 0, "Number of neighbors (overrides config)")
	cmd.Flag.StringVar(&knnMetric, "metric", "", "Distance metric [euclidean, manhattan] (overrides config)")
	cmd.Flag.StringVar(&knnQuery, "query", "", "Classify the point x,y and exit")
	cmd.Flag.BoolVar(&knnAutoplay, "autoplay", false, "Run the timed walkthrough instead of stepping")
	cmd.Flag.StringVar(&knnOut, "out", "", "Directory for one PNG per phase")
	cmd.Flag.Int64Var(&knnSeed, "seed", 0, "Random seed (overrides config; 0 = time based)")
	return cmd
}

func runKNN(cmd *commander.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	set := visited(&cmd.Flag)
	if set["k"] {
		cfg.KNN.K = knnK
	}
	if set["metric"] {
		cfg.KNN.Metric = knnMetric
	}
	if set["seed"] {
		cfg.Seed = knnSeed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	gen := synth.NewGenerator(cfg.Seed)
	var training []*points.Point
	if knnClusters > 0 {
		training = gen.Clustered(knnClusters, 8)
		fmt.Printf("Generated %d clusters of 8 points\n", knnClusters)
	} else {
		ds, err := pickDataset(cfg, datasets.Classification, knnCSV, knnDataset)
		if err != nil {
			return err
		}
		training = ds.ClassificationPoints()
		fmt.Printf("Dataset: %s (%d points)\n", ds.Name, ds.Len())
	}

	engine := knn.NewEngine(append(cfg.EngineOptions(), knn.WithTrainingData(training))...)
	fmt.Printf("k = %d, metric = %s\n", engine.K(), engine.Metric())

	if knnQuery != "" {
		q, err := parseQuery(knnQuery)
		if err != nil {
			return err
		}
		cat, ok := engine.Classify(q)
		if !ok {
			return errors.New("nothing to classify against: the training set is empty")
		}
		fmt.Printf("(%g, %g) -> category %d\n", q.X, q.Y, cat)
		return nil
	}

	sched := schedule.Timer{}
	placement := knn.NewPlacement(engine, sched, knn.WithHighlightDelay(cfg.KNN.HighlightDelay))
	fmt.Println(placement.Instructions())
	for _, pos := range knn.Positions {
		placement.PlaceModule(pos)
		if pos == knn.KSelector {
			placement.SetK(cfg.KNN.K)
		}
		fmt.Printf("\n[%s] %s\n", pos.ModuleName(), placement.Instructions())
	}

	seq := knn.NewSequencer(engine, placement, sched, gen, knn.WithTiming(cfg.Timing()))
	var mu sync.Mutex
	frame := 0
	show := func(st knn.SequencerState) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Printf("\n%d/%d %s\n", st.Phase, knn.MaxPhase, st.Description)
		if st.Caption != "" {
			fmt.Printf("    %s\n", st.Caption)
		}
		if knnOut == "" {
			return
		}
		frame++
		path := filepath.Join(knnOut, fmt.Sprintf("knn_%02d_%s.png", frame, st.Phase))
		if err := render.KNN(path, render.SceneFromSequencer(training, st)); err != nil {
			klog.ErrorS(err, "render failed", "path", path)
		}
	}

	if !knnAutoplay {
		for seq.Phase() < knn.MaxPhase {
			seq.NextStep()
			show(seq.Snapshot())
		}
		printResult(seq.Snapshot())
		return nil
	}

	done := make(chan knn.SequencerState, 2)
	var classified knn.SequencerState
	seq.Subscribe(func(st knn.SequencerState) {
		if st.Phase == knn.PhaseClassified {
			classified = st
		}
		show(st)
		if !st.Running {
			done <- classified
		}
	})
	if !seq.Start() {
		return errors.New("walkthrough did not start")
	}
	timing := cfg.Timing()
	budget := 4*timing.PhaseDelay + time.Duration(len(training))*timing.RevealInterval + timing.FinishDelay
	select {
	case st := <-done:
		printResult(st)
	case <-time.After(2*budget + time.Second):
		seq.Reset()
		return errors.New("walkthrough timed out")
	}
	return nil
}

func printResult(st knn.SequencerState) {
	if !st.Classified {
		fmt.Println("\nNo result: the training set is empty.")
		return
	}
	fmt.Printf("\nResult: category %d\n", st.Result)
}

// parseQuery reads an "x,y" pair.
func parseQuery(s string) (*points.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("query %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", s, err)
	}
	return points.New(x, y, points.Unclassified), nil
}
