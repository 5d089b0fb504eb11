package datasets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Noofbiz/learnml/points"
)

func pt(x, y float64, cat int) points.Point { return points.Point{X: x, Y: y, Category: cat} }

func xy(x, y float64) points.Point { return pt(x, y, points.Unclassified) }

// Presets returns the built-in datasets: two classification and two
// regression sets on the unit square.
func Presets() []Dataset {
	return []Dataset{
		{
			Name:        "Iris-like Flower Data",
			Description: "A simplified version of the famous Iris dataset, showing two features of different flower types.",
			Kind:        Classification,
			Points: []points.Point{
				pt(0.2, 0.3, 0), pt(0.3, 0.4, 0), pt(0.2, 0.5, 0), pt(0.1, 0.4, 0), pt(0.25, 0.45, 0),
				pt(0.7, 0.8, 1), pt(0.8, 0.7, 1), pt(0.75, 0.75, 1), pt(0.85, 0.8, 1), pt(0.7, 0.7, 1),
			},
		},
		{
			Name:        "Circular Pattern",
			Description: "A dataset showing two classes in a circular pattern, demonstrating non-linear separation.",
			Kind:        Classification,
			Points: []points.Point{
				pt(0.5, 0.5, 0), pt(0.4, 0.5, 0), pt(0.5, 0.4, 0), pt(0.6, 0.5, 0), pt(0.5, 0.6, 0),
				pt(0.3, 0.3, 1), pt(0.3, 0.7, 1), pt(0.7, 0.3, 1), pt(0.7, 0.7, 1), pt(0.2, 0.5, 1),
			},
		},
		{
			Name:        "Linear Trend",
			Description: "A simple dataset showing a clear linear relationship with some noise.",
			Kind:        Regression,
			Points: []points.Point{
				xy(0.1, 0.2), xy(0.2, 0.3), xy(0.3, 0.35), xy(0.4, 0.5), xy(0.5, 0.55),
				xy(0.6, 0.65), xy(0.7, 0.8), xy(0.8, 0.85), xy(0.9, 0.95),
			},
		},
		{
			Name:        "Quadratic Trend",
			Description: "A dataset showing a quadratic relationship, demonstrating non-linear patterns.",
			Kind:        Regression,
			Points: []points.Point{
				xy(0.1, 0.01), xy(0.2, 0.04), xy(0.3, 0.09), xy(0.4, 0.16), xy(0.5, 0.25),
				xy(0.6, 0.36), xy(0.7, 0.49), xy(0.8, 0.64), xy(0.9, 0.81),
			},
		},
	}
}

// Catalog is an in-memory Provider seeded with Presets.
type Catalog struct {
	mu   sync.RWMutex
	sets []Dataset
}

// NewCatalog returns a catalog holding the presets.
func NewCatalog() *Catalog {
	return &Catalog{sets: Presets()}
}

// Add appends ds. Names are unique, compared case-insensitively.
func (c *Catalog) Add(ds Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.sets {
		if strings.EqualFold(s.Name, ds.Name) {
			return fmt.Errorf("%w: %q", ErrDuplicate, ds.Name)
		}
	}
	c.sets = append(c.sets, ds.clone())
	return nil
}

// Datasets implements Provider.
func (c *Catalog) Datasets(kind Kind) []Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Dataset
	for _, s := range c.sets {
		if s.Kind == kind {
			out = append(out, s.clone())
		}
	}
	return out
}

// Find looks a dataset up by name, ignoring case.
func (c *Catalog) Find(name string) (Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.sets {
		if strings.EqualFold(s.Name, name) {
			return s.clone(), true
		}
	}
	return Dataset{}, false
}
