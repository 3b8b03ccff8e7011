// Package chart renders the analysis figures as PNG files.
//
// Line, bar, scatter and map figures are drawn with gonum/plot; the animal-type
// pie chart uses go-chart, which gonum/plot has no equivalent for. Map figures
// can carry a tile basemap behind the points.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/tiles"
	"github.com/couchcryptid/accident-data-etl/internal/geo"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// BasemapSource provides raster backgrounds for map panels.
type BasemapSource interface {
	Basemap(ctx context.Context, env geo.Envelope) (tiles.Basemap, error)
}

// Renderer writes figures into one output directory.
type Renderer struct {
	dir      string
	basemaps BasemapSource
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewRenderer creates a renderer writing into dir. basemaps may be nil, in which
// case map figures are drawn on a blank background.
func NewRenderer(dir string, basemaps BasemapSource, metrics *observability.Metrics, logger *slog.Logger) *Renderer {
	return &Renderer{dir: dir, basemaps: basemaps, metrics: metrics, logger: logger}
}

// Dir returns the output directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// render runs fn against the output path for file and records the outcome.
func (r *Renderer) render(name, file string, fn func(path string) error) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.dir, file)

	start := time.Now()
	if err := fn(path); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	elapsed := time.Since(start)

	r.metrics.ChartsRendered.WithLabelValues(name).Inc()
	r.metrics.RenderDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	r.logger.Info("chart rendered", "chart", name, "path", path, "duration", elapsed)
	return path, nil
}

// savePanels lays out a grid of plots on one canvas and writes it as PNG. Nil
// cells are left blank.
func savePanels(path string, panels [][]*plot.Plot, w, h vg.Length) error {
	img := vgimg.New(w, h)
	dc := draw.New(img)

	for _, row := range panels {
		for i, p := range row {
			if p == nil {
				blank := plot.New()
				blank.HideAxes()
				row[i] = blank
			}
		}
	}

	layout := draw.Tiles{
		Rows:      len(panels),
		Cols:      len(panels[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(panels, layout, dc)
	for j, row := range panels {
		for i, p := range row {
			p.Draw(canvases[j][i])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// palette cycles through a fixed set of distinguishable colours.
var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
	{R: 227, G: 119, B: 194, A: 255},
	{R: 127, G: 127, B: 127, A: 255},
	{R: 188, G: 189, B: 34, A: 255},
	{R: 23, G: 190, B: 207, A: 255},
}

func colorAt(i int) color.RGBA {
	return palette[i%len(palette)]
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
