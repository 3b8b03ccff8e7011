package chart

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/geo"
)

// mapPanel creates a plot framed on env with the basemap, if any, underneath.
func (r *Renderer) mapPanel(ctx context.Context, title string, env geo.Envelope) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = env.MinX, env.MaxX
	p.Y.Min, p.Y.Max = env.MinY, env.MaxY

	if r.basemaps == nil {
		return p
	}
	bm, err := r.basemaps.Basemap(ctx, env)
	if err != nil {
		// A missing background is not worth failing the figure for.
		r.logger.Warn("basemap unavailable", "error", err)
		return p
	}
	p.Add(plotter.NewImage(bm.Image, bm.Bounds.MinX, bm.Bounds.MinY, bm.Bounds.MaxX, bm.Bounds.MaxY))
	// Keep the frame on the data, not on the tile edges.
	p.X.Min, p.X.Max = env.MinX, env.MaxX
	p.Y.Min, p.Y.Max = env.MinY, env.MaxY
	return p
}

func scatter(points []geo.Point, c color.Color, radius vg.Length) (*plotter.Scatter, error) {
	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X, pts[i].Y = pt.X, pt.Y
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

// AlcoholMap draws the alcohol-related accidents of one region, one panel per
// year, two panels per row.
func (r *Renderer) AlcoholMap(ctx context.Context, file, region string, points []geo.Point) (string, error) {
	byYear := make(map[int][]geo.Point)
	for _, p := range points {
		if !p.Accident.HasAlcohol() || p.Accident.Date.IsZero() {
			continue
		}
		y := p.Accident.Date.Year()
		byYear[y] = append(byYear[y], p)
	}
	if len(byYear) == 0 {
		return "", fmt.Errorf("alcohol map %s: %w", region, domain.ErrEmptyTable)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	return r.render("alcohol_map", file, func(path string) error {
		// One frame for every year so the panels are comparable.
		var all []geo.Point
		for _, y := range years {
			all = append(all, byYear[y]...)
		}
		env := frame(all)

		cols := min(2, len(years))
		rows := (len(years) + cols - 1) / cols
		panels := make([][]*plot.Plot, rows)
		for i := range panels {
			panels[i] = make([]*plot.Plot, cols)
		}

		for i, y := range years {
			p := r.mapPanel(ctx, region+" ("+strconv.Itoa(y)+")", env)
			s, err := scatter(byYear[y], color.RGBA{R: 200, A: 255}, vg.Points(2))
			if err != nil {
				return err
			}
			p.Add(s)
			panels[i/cols][i%cols] = p
		}
		return savePanels(path, panels, vg.Length(cols)*6*vg.Inch, vg.Length(rows)*5*vg.Inch)
	})
}

// ClusterMap draws clustered accidents, each group in its own colour with its
// convex hull shaded and its label placed at the centroid.
func (r *Renderer) ClusterMap(ctx context.Context, file, title string, groups []geo.Group) (string, error) {
	if len(groups) == 0 {
		return "", fmt.Errorf("cluster map: %w", domain.ErrEmptyTable)
	}
	return r.render("cluster_map", file, func(path string) error {
		var all []geo.Point
		for _, g := range groups {
			all = append(all, g.Points...)
		}
		p := r.mapPanel(ctx, title, frame(all))

		var centers plotter.XYs
		var labels []string
		for i, g := range groups {
			c := colorAt(i)
			if g.Hull != nil {
				ring := g.Hull.LinearRing(0).Coords()
				xy := make(plotter.XYs, len(ring))
				for j, coord := range ring {
					xy[j].X, xy[j].Y = coord.X(), coord.Y()
				}
				poly, err := plotter.NewPolygon(xy)
				if err != nil {
					return err
				}
				poly.Color = withAlpha(c, 50)
				poly.LineStyle.Color = c
				poly.LineStyle.Width = vg.Points(0.5)
				p.Add(poly)
			}

			s, err := scatter(g.Points, c, vg.Points(1.5))
			if err != nil {
				return err
			}
			p.Add(s)
			p.Legend.Add(fmt.Sprintf("%s (%d)", groupName(i, g), len(g.Points)), s)

			centers = append(centers, plotter.XY{X: g.Centroid.X(), Y: g.Centroid.Y()})
			labels = append(labels, groupName(i, g))
		}

		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: centers, Labels: labels})
		if err != nil {
			return err
		}
		p.Add(lbl)
		p.Legend.Top = true
		return p.Save(10*vg.Inch, 8*vg.Inch, path)
	})
}

func groupName(i int, g geo.Group) string {
	if g.Label != "" {
		return g.Label
	}
	return "shluk " + strconv.Itoa(i+1)
}

// frame returns the envelope of points padded by 5 %, grown to a minimum size so
// a single point still gets a visible neighbourhood.
func frame(points []geo.Point) geo.Envelope {
	env := geo.EnvelopeOf(points).Pad(0.05)
	const minSpan = 2000.0
	if w := env.MaxX - env.MinX; w < minSpan {
		env.MinX -= (minSpan - w) / 2
		env.MaxX += (minSpan - w) / 2
	}
	if h := env.MaxY - env.MinY; h < minSpan {
		env.MinY -= (minSpan - h) / 2
		env.MaxY += (minSpan - h) / 2
	}
	return env
}
