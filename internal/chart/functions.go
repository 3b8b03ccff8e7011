package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/accident-data-etl/internal/curves"
)

const samples = 10000

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts
}

// SineFamily draws f_a(x) = a^2 sin(x) on [0, 6pi] for each a, with the area under
// every curve filled and x ticks every pi/2.
func (r *Renderer) SineFamily(file string, as []float64) (string, error) {
	return r.render("sine_family", file, func(path string) error {
		xs := curves.Linspace(0, 6*math.Pi, samples)
		ys := curves.SineFamily(as, xs)

		p := plot.New()
		p.X.Label.Text = "x"
		p.Y.Label.Text = "f(x)"
		p.X.Min, p.X.Max = 0, 6*math.Pi
		p.Legend.Top = true

		ticks := curves.PiTicks(6 * math.Pi)
		marks := make([]plot.Tick, len(ticks))
		for i, t := range ticks {
			marks[i] = plot.Tick{Value: t.Value, Label: t.Label}
		}
		p.X.Tick.Marker = plot.ConstantTicks(marks)

		for i, a := range as {
			line, err := plotter.NewLine(xys(xs, ys[i]))
			if err != nil {
				return err
			}
			c := colorAt(i)
			line.LineStyle.Color = c
			line.LineStyle.Width = vg.Points(1)
			line.FillColor = withAlpha(c, 40)
			p.Add(line)
			p.Legend.Add(fmt.Sprintf("y_%g(x) = %g² · sin(x)", a, a), line)
		}
		return p.Save(10*vg.Inch, 4*vg.Inch, path)
	})
}

var segmentColors = map[string]color.Color{
	curves.ClassAbove:     color.RGBA{G: 160, A: 255},
	curves.ClassBelowLow:  color.RGBA{R: 220, A: 255},
	curves.ClassBelowHigh: color.RGBA{R: 255, G: 140, A: 255},
}

// Composite draws f1, f2 and f3 = f1 + f2 over [0, 100] in three rows. The f3
// curve is green where it reaches f1, red below f1 left of x = 50 and orange
// below f1 from x = 50 on.
func (r *Renderer) Composite(file string) (string, error) {
	return r.render("composite", file, func(path string) error {
		s := curves.Composite(curves.Linspace(0, 100, samples))

		top, err := signalPlot("f1(x)", s.X, s.F1)
		if err != nil {
			return err
		}
		middle, err := signalPlot("f2(x)", s.X, s.F2)
		if err != nil {
			return err
		}

		bottom := plot.New()
		bottom.Y.Label.Text = "f1(x) + f2(x)"
		bottom.X.Label.Text = "t"
		bottom.X.Min, bottom.X.Max = 0, 100
		bottom.Y.Min, bottom.Y.Max = -0.8, 0.8
		bottom.Legend.Top = true
		seen := make(map[string]bool)
		n := len(s.X)
		for _, seg := range s.Split() {
			// Extend by one sample so adjacent segments join.
			to := min(seg.To+1, n)
			line, err := plotter.NewLine(xys(s.X[seg.From:to], s.F3[seg.From:to]))
			if err != nil {
				return err
			}
			line.LineStyle.Color = segmentColors[seg.Class]
			line.LineStyle.Width = vg.Points(1)
			bottom.Add(line)
			if !seen[seg.Class] {
				bottom.Legend.Add(seg.Class, line)
				seen[seg.Class] = true
			}
		}

		return savePanels(path, [][]*plot.Plot{{top}, {middle}, {bottom}}, 8*vg.Inch, 9*vg.Inch)
	})
}

func signalPlot(label string, xs, ys []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = label
	p.X.Min, p.X.Max = 0, 100
	p.Y.Min, p.Y.Max = -0.8, 0.8
	line, err := plotter.NewLine(xys(xs, ys))
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1)
	p.Add(line, plotter.NewGrid())
	return p, nil
}
