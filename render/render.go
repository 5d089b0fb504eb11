// Package render draws the KNN and regression states as images with
// gonum/plot. The output format follows the file extension (.png, .svg,
// .pdf, ...).
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/Noofbiz/learnml/knn"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/regression"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size is the width and height of every saved plot.
var Size = 6 * vg.Inch

var palette = []color.RGBA{
	{R: 20, G: 80, B: 200, A: 220},
	{R: 200, G: 30, B: 30, A: 220},
	{R: 40, G: 150, B: 40, A: 220},
	{R: 230, G: 140, B: 20, A: 220},
	{R: 130, G: 50, B: 170, A: 220},
}

var (
	grey  = color.RGBA{R: 120, G: 120, B: 120, A: 180}
	black = color.RGBA{A: 255}
)

// CategoryColor returns the colour used for category c. Unclassified points
// are grey.
func CategoryColor(c int) color.RGBA {
	if c < 0 {
		return grey
	}
	return palette[c%len(palette)]
}

// Scene is what a KNN plot shows.
type Scene struct {
	Title    string
	Training []*points.Point
	// Query is drawn as a ring, coloured by its category once classified.
	Query *points.Point
	// Neighbors are linked to Query with a line each.
	Neighbors []*points.Point
}

// SceneFromSequencer builds a Scene for the walkthrough state st over the
// given training set. During the distance reveal only revealed distances are
// linked; afterwards the highlighted neighbors are.
func SceneFromSequencer(training []*points.Point, st knn.SequencerState) Scene {
	s := Scene{
		Title:    fmt.Sprintf("KNN: %s", st.Phase),
		Training: training,
		Query:    st.DemoPoint,
	}
	if st.Caption != "" {
		s.Title += " - " + st.Caption
	}
	switch {
	case st.Phase == knn.PhaseDistances:
		for _, nb := range st.Distances[:min(st.Revealed, len(st.Distances))] {
			s.Neighbors = append(s.Neighbors, nb.Point)
		}
	case st.Phase > knn.PhaseDistances:
		s.Neighbors = st.Highlighted
	}
	return s
}

// KNN writes the scene to path.
func KNN(path string, s Scene) error {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	var all plotter.XYs
	if s.Query != nil {
		for _, nb := range s.Neighbors {
			line, err := plotter.NewLine(plotter.XYs{{X: s.Query.X, Y: s.Query.Y}, {X: nb.X, Y: nb.Y}})
			if err != nil {
				return err
			}
			line.Color = grey
			line.Width = vg.Points(0.8)
			line.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
			p.Add(line)
		}
	}

	byCat := make(map[int]plotter.XYs)
	for _, pt := range s.Training {
		byCat[pt.Category] = append(byCat[pt.Category], plotter.XY{X: pt.X, Y: pt.Y})
	}
	cats := make([]int, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Ints(cats)
	for _, c := range cats {
		sc, err := plotter.NewScatter(byCat[c])
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = CategoryColor(c)
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("category %d", c), sc)
		all = append(all, byCat[c]...)
	}

	if len(s.Neighbors) > 0 {
		var xys plotter.XYs
		for _, nb := range s.Neighbors {
			xys = append(xys, plotter.XY{X: nb.X, Y: nb.Y})
		}
		ring, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		ring.GlyphStyle.Color = black
		ring.GlyphStyle.Radius = vg.Points(5)
		ring.GlyphStyle.Shape = draw.RingGlyph{}
		p.Add(ring)
	}

	if s.Query != nil {
		q := plotter.XYs{{X: s.Query.X, Y: s.Query.Y}}
		qs, err := plotter.NewScatter(q)
		if err != nil {
			return err
		}
		if s.Query.IsClassified() {
			qs.GlyphStyle.Color = CategoryColor(s.Query.Category)
		} else {
			qs.GlyphStyle.Color = black
		}
		qs.GlyphStyle.Radius = vg.Points(6)
		qs.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(qs)
		p.Legend.Add("query", qs)
		all = append(all, q...)
	}

	setRange(p, all)
	return save(p, path)
}

// Regression writes the data, the fitted line and, when st.ShowErrors is
// set, the residual of every point to path.
func Regression(path string, st regression.State) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Linear regression: y = %.3fx %+.3f (epoch %d)", st.Slope, st.Intercept, st.Epoch)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	data := make(plotter.XYs, len(st.Data))
	for i, d := range st.Data {
		data[i] = plotter.XY{X: d.X, Y: d.Y}
	}
	all := append(plotter.XYs(nil), data...)

	if len(data) > 0 {
		xmin, xmax := data[0].X, data[0].X
		for _, d := range data {
			xmin = math.Min(xmin, d.X)
			xmax = math.Max(xmax, d.X)
		}
		predict := func(x float64) float64 { return st.Slope*x + st.Intercept }
		fit, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: predict(xmin)}, {X: xmax, Y: predict(xmax)}})
		if err != nil {
			return err
		}
		fit.Color = palette[1]
		fit.Width = vg.Points(1.5)
		p.Add(fit)
		p.Legend.Add("fit", fit)
		all = append(all, fit.XYs...)

		if st.ShowErrors {
			for _, d := range data {
				seg, err := plotter.NewLine(plotter.XYs{d, {X: d.X, Y: predict(d.X)}})
				if err != nil {
					return err
				}
				seg.Color = grey
				seg.Width = vg.Points(0.8)
				seg.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
				p.Add(seg)
				all = append(all, plotter.XY{X: d.X, Y: predict(d.X)})
			}
		}

		sc, err := plotter.NewScatter(data)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = palette[0]
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("data", sc)
	}

	setRange(p, all)
	return save(p, path)
}

func setRange(p *plot.Plot, xys plotter.XYs) {
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = autoRange(xys)
}

func save(p *plot.Plot, path string) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := p.Save(Size, Size, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

// autoRange computes padded min/max for X and Y for a set of points.
func autoRange(xs plotter.XYs) (xmin, xmax, ymin, ymax float64) {
	if len(xs) == 0 {
		return -1, 1, -1, 1
	}
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, p := range xs {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	padx := (xmax - xmin) * 0.06
	pady := (ymax - ymin) * 0.06
	if padx == 0 {
		padx = 1.0
	}
	if pady == 0 {
		pady = 1.0
	}
	return xmin - padx, xmax + padx, ymin - pady, ymax + pady
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}
