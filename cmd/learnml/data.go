package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Noofbiz/learnml/config"
	"github.com/Noofbiz/learnml/datasets"
)

// openCatalog returns the presets plus every CSV in the kind's subdirectory
// of the configured datasets directory (datasets_dir/classification,
// datasets_dir/regression).
func openCatalog(cfg config.Config, kind datasets.Kind) (*datasets.Catalog, error) {
	cat := datasets.NewCatalog()
	if cfg.DatasetsDir == "" {
		return cat, nil
	}
	dir := filepath.Join(cfg.DatasetsDir, kind.String())
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return cat, nil
	}
	custom, err := datasets.LoadDir(dir, kind)
	if err != nil {
		return nil, err
	}
	for _, ds := range custom {
		if err := cat.Add(ds); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// pickDataset resolves the -csv and -dataset flags. A CSV path wins.
func pickDataset(cfg config.Config, kind datasets.Kind, csvPath, name string) (datasets.Dataset, error) {
	if csvPath != "" {
		return datasets.LoadCSV(csvPath, kind)
	}
	cat, err := openCatalog(cfg, kind)
	if err != nil {
		return datasets.Dataset{}, err
	}
	if name == "" {
		sets := cat.Datasets(kind)
		if len(sets) == 0 {
			return datasets.Dataset{}, fmt.Errorf("no %s datasets available", kind)
		}
		return sets[0], nil
	}
	ds, ok := cat.Find(name)
	if !ok {
		return datasets.Dataset{}, fmt.Errorf("unknown dataset %q", name)
	}
	if ds.Kind != kind {
		return datasets.Dataset{}, fmt.Errorf("dataset %q is a %s dataset", name, ds.Kind)
	}
	return ds, nil
}
