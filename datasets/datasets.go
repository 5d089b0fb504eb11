// Package datasets supplies the preset and user-provided datasets the
// engines train on.
//
// Datasets are read-only values: every accessor hands out copies, so an
// engine can never write back into a catalog. Custom datasets are loaded from
// CSV files with an "x,y" or "x,y,category" header.
package datasets

import (
	"errors"
	"fmt"

	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/regression"
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

var (
	// ErrEmpty is returned when converting a dataset without points.
	ErrEmpty = errors.New("datasets: dataset has no points")
	// ErrDuplicate is returned by Catalog.Add for a name already present.
	ErrDuplicate = errors.New("datasets: duplicate dataset name")
	// ErrUnknownKind is returned by ParseKind.
	ErrUnknownKind = errors.New("datasets: unknown dataset kind")
)

// Kind says which engine a dataset is meant for.
type Kind int

const (
	Classification Kind = iota
	Regression
)

func (k Kind) String() string {
	switch k {
	case Classification:
		return "classification"
	case Regression:
		return "regression"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "classification" (or "knn") and "regression".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "classification", "knn":
		return Classification, nil
	case "regression":
		return Regression, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Dataset is a named list of points. Regression datasets leave Category at
// points.Unclassified.
type Dataset struct {
	Name        string
	Description string
	Kind        Kind
	Points      []points.Point
}

// Provider is the read-only dataset supplier the presentation layer reads
// from.
type Provider interface {
	// Datasets returns every dataset of the given kind, in a stable order.
	Datasets(kind Kind) []Dataset
}

// Len returns the number of points.
func (d Dataset) Len() int { return len(d.Points) }

func (d Dataset) clone() Dataset {
	d.Points = append([]points.Point(nil), d.Points...)
	return d
}

// ClassificationPoints returns fresh point handles suitable for
// knn.Engine.SetTrainingData. Selection flags are cleared.
func (d Dataset) ClassificationPoints() []*points.Point {
	out := make([]*points.Point, len(d.Points))
	for i, p := range d.Points {
		out[i] = points.New(p.X, p.Y, p.Category)
	}
	return out
}

// RegressionData returns the points as regression samples.
func (d Dataset) RegressionData() []regression.DataPoint {
	out := make([]regression.DataPoint, len(d.Points))
	for i, p := range d.Points {
		out[i] = regression.DataPoint{X: p.X, Y: p.Y}
	}
	return out
}

// Matrix returns the dataset as float32 rows. Classification datasets give
// inputs [x, y] and labels [category]; regression datasets give inputs [x]
// and labels [y].
func (d Dataset) Matrix() (inputs, labels [][]float32, err error) {
	if len(d.Points) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmpty, d.Name)
	}
	inputs = make([][]float32, len(d.Points))
	labels = make([][]float32, len(d.Points))
	for i, p := range d.Points {
		switch d.Kind {
		case Regression:
			inputs[i] = []float32{float32(p.X)}
			labels[i] = []float32{float32(p.Y)}
		default:
			inputs[i] = []float32{float32(p.X), float32(p.Y)}
			labels[i] = []float32{float32(p.Category)}
		}
	}
	return inputs, labels, nil
}

// Tensors converts Matrix into gomlx tensors of shape [n, features] and
// [n, 1].
func (d Dataset) Tensors() (inputs, labels *tensors.Tensor, err error) {
	in, la, err := d.Matrix()
	if err != nil {
		return nil, nil, err
	}
	return tensors.FromAnyValue(in), tensors.FromAnyValue(la), nil
}
