package chart

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/accident-data-etl/internal/analysis"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// AnimalHours draws the number of wild-animal accidents per hour of the day.
func (r *Renderer) AnimalHours(file string, hours []analysis.HourCount) (string, error) {
	if len(hours) == 0 {
		return "", fmt.Errorf("animal hours: %w", domain.ErrEmptyTable)
	}
	return r.render("animal_hours", file, func(path string) error {
		values := make(plotter.Values, len(hours))
		labels := make([]string, len(hours))
		for i, h := range hours {
			values[i] = float64(h.Count)
			labels[i] = strconv.Itoa(h.Hour)
		}

		bars, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return err
		}
		bars.Color = colorAt(0)
		bars.LineStyle.Width = vg.Length(0)

		p := plot.New()
		p.Title.Text = "Nehody způsobené lesní zvěří podle hodiny"
		p.X.Label.Text = "Hodina"
		p.Y.Label.Text = "Počet nehod"
		p.Add(plotter.NewGrid(), bars)
		p.NominalX(labels...)
		return p.Save(8*vg.Inch, 4*vg.Inch, path)
	})
}

// groupedBars draws one bar group per crosstab row with one bar per column.
func groupedBars(title, ylabel string, ct *analysis.Crosstab) (*plot.Plot, error) {
	rows, cols := ct.Rows(), ct.Cols()

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Legend.Top = true

	width := vg.Points(36 / float64(max(len(cols), 1)))
	for i, col := range cols {
		values := make(plotter.Values, len(rows))
		for j, row := range rows {
			values[j] = float64(ct.Get(row, col))
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, err
		}
		bars.Color = colorAt(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = width * vg.Length(float64(i)-float64(len(cols)-1)/2)
		p.Add(bars)
		p.Legend.Add(col, bars)
	}
	p.Add(plotter.NewGrid())
	p.NominalX(rows...)
	return p, nil
}

// RegionState draws accident counts per region split by road surface state.
func (r *Renderer) RegionState(file string, ct *analysis.Crosstab) (string, error) {
	if ct.Total() == 0 {
		return "", fmt.Errorf("region state: %w", domain.ErrEmptyTable)
	}
	return r.render("region_state", file, func(path string) error {
		p, err := groupedBars("Počet nehod podle stavu vozovky", "Počet nehod", ct)
		if err != nil {
			return err
		}
		p.X.Label.Text = "Kraj"
		return p.Save(14*vg.Inch, 6*vg.Inch, path)
	})
}

// Alcohol draws persons involved in alcohol-related accidents per region, by
// injury severity on top and by driver/other below.
func (r *Renderer) Alcohol(file string, impact analysis.AlcoholImpact) (string, error) {
	if impact.BySeverity.Total() == 0 && impact.ByRole.Total() == 0 {
		return "", fmt.Errorf("alcohol: %w", domain.ErrEmptyTable)
	}
	return r.render("alcohol", file, func(path string) error {
		severity, err := groupedBars("Následky nehod pod vlivem alkoholu", "Počet osob", impact.BySeverity)
		if err != nil {
			return err
		}
		role, err := groupedBars("Zúčastněné osoby", "Počet osob", impact.ByRole)
		if err != nil {
			return err
		}
		role.X.Label.Text = "Kraj"
		return savePanels(path, [][]*plot.Plot{{severity}, {role}}, 14*vg.Inch, 10*vg.Inch)
	})
}

// CollisionsOverTime draws one panel per region with a monthly line per
// collision kind. Regions are drawn in the given order.
func (r *Renderer) CollisionsOverTime(file string, regions []string, series map[string]analysis.MonthlySeries) (string, error) {
	if len(regions) == 0 {
		return "", fmt.Errorf("collisions: %w", domain.ErrEmptyTable)
	}
	return r.render("collisions", file, func(path string) error {
		panels := make([][]*plot.Plot, 0, len(regions))
		for _, region := range regions {
			p, err := monthlyPlot(region, series[region])
			if err != nil {
				return err
			}
			panels = append(panels, []*plot.Plot{p})
		}
		return savePanels(path, panels, 12*vg.Inch, vg.Length(len(regions))*3*vg.Inch)
	})
}

func monthlyPlot(title string, ms analysis.MonthlySeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Kraj: " + title
	p.Y.Label.Text = "Počet nehod"
	p.Legend.Top = true

	var ticks []plot.Tick
	for i, m := range ms.Months {
		label := ""
		if i == 0 || m.Month() == 1 || m.Month() == 7 {
			label = m.Format("01/06")
		}
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: label})
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	for i, label := range ms.Labels() {
		counts := ms.Series[label]
		pts := make(plotter.XYs, len(counts))
		for j, c := range counts {
			pts[j].X, pts[j].Y = float64(j), float64(c)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = colorAt(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(label, line)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}
