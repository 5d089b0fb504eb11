package datasets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Noofbiz/learnml/points"
	"k8s.io/klog/v2"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("datasets: required column missing")

// LoadCSV reads a dataset from a CSV file. The header must name the columns
// "x" and "y"; classification files also need "category". Column order and
// case do not matter. The dataset is named after the file.
func LoadCSV(path string, kind Kind) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ds, err := ReadCSV(file, name, kind)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	ds.Description = "Loaded from " + path
	klog.V(1).InfoS("dataset loaded", "path", path, "kind", kind, "points", ds.Len())
	return ds, nil
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, name string, kind Kind) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	required := []string{"x", "y"}
	if kind == Classification {
		required = append(required, "category")
	}
	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return Dataset{}, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	catCol, hasCat := colIndex["category"]

	ds := Dataset{Name: name, Kind: kind}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		x, err := parseFloat(rec[colIndex["x"]])
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := parseFloat(rec[colIndex["y"]])
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: y: %w", line, err)
		}
		p := points.Point{X: x, Y: y, Category: points.Unclassified}
		if hasCat && kind == Classification {
			c, err := strconv.Atoi(strings.TrimSpace(rec[catCol]))
			if err != nil {
				return Dataset{}, fmt.Errorf("line %d: category: %w", line, err)
			}
			if c < 0 {
				return Dataset{}, fmt.Errorf("line %d: category %d is negative", line, c)
			}
			p.Category = c
		}
		ds.Points = append(ds.Points, p)
	}
	return ds, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// LoadDir loads every *.csv file in dir, sorted by file name.
func LoadDir(dir string, kind Kind) ([]Dataset, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	sort.Strings(matches)
	out := make([]Dataset, 0, len(matches))
	for _, m := range matches {
		ds, err := LoadCSV(m, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}
