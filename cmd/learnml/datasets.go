package main

import (
	"fmt"

	"github.com/Noofbiz/learnml/datasets"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var (
	dsDir     string
	dsTensors bool
)

func DatasetsCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runDatasets,
		UsageLine: "datasets [options]",
		Short:     "lists the available datasets",
		Long: `
lists the preset datasets and any CSV datasets found under the
classification/ and regression/ subdirectories of -dir (or the config's
datasets_dir).

	$ learnml datasets [-dir data] [-tensors]

`,
		Flag: *flag.NewFlagSet("datasets", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&dsDir, "dir", "", "Directory of custom CSV datasets (overrides config)")
	cmd.Flag.BoolVar(&dsTensors, "tensors", false, "Also convert each dataset into gomlx tensors")
	return cmd
}

func runDatasets(cmd *commander.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dsDir != "" {
		cfg.DatasetsDir = dsDir
	}
	for _, kind := range []datasets.Kind{datasets.Classification, datasets.Regression} {
		cat, err := openCatalog(cfg, kind)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", kind)
		for _, ds := range cat.Datasets(kind) {
			fmt.Printf("  %-24s %3d points  %s\n", ds.Name, ds.Len(), ds.Description)
			if !dsTensors {
				continue
			}
			summary, err := tensorSummary(ds)
			if err != nil {
				fmt.Printf("    tensors: %v\n", err)
				continue
			}
			fmt.Printf("    tensors: %s\n", summary)
		}
	}
	return nil
}

// tensorSummary converts ds into gomlx tensors and describes their shapes,
// e.g. "input (Float32)[9 1], label (Float32)[9 1]".
func tensorSummary(ds datasets.Dataset) (string, error) {
	in, la, err := ds.Tensors()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("input %s, label %s", in.Shape(), la.Shape()), nil
}
