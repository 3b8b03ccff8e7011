// Package report assembles the animal-accident report: headline statistics, the
// road-type table and the two figures that go with it.
package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/analysis"
	"github.com/couchcryptid/accident-data-etl/internal/chart"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// Output file names inside the renderer directory.
const (
	HoursFigure = "fig1.png"
	TypesFigure = "fig2.png"
	TableFile   = "table.xlsx"
)

// Report lists what CreateReport produced.
type Report struct {
	GeneratedAt time.Time
	Statistics  analysis.Statistics
	Table       []analysis.RoadTypeRow
	Files       []string
}

// Generator writes reports as text to out and files next to the renderer output.
type Generator struct {
	renderer *chart.Renderer
	out      io.Writer
	logger   *slog.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(renderer *chart.Renderer, out io.Writer, logger *slog.Logger) *Generator {
	return &Generator{renderer: renderer, out: out, logger: logger}
}

// CreateReport keeps the accidents with an animal involved, prints the statistics
// and the road-type table, exports the table as a workbook and renders the hours
// bar chart and the animal-type pie.
func (g *Generator) CreateReport(accidents []domain.Accident) (Report, error) {
	animals := analysis.Animals(accidents)
	st, err := analysis.ComputeStatistics(animals, accidents)
	if err != nil {
		return Report{}, fmt.Errorf("statistics: %w", err)
	}

	rep := Report{
		GeneratedAt: domain.Now(),
		Statistics:  st,
		Table:       analysis.RoadTypeTable(animals),
	}

	if _, err := fmt.Fprintf(g.out, "Vygenerováno: %s\n\n", rep.GeneratedAt.Format(time.RFC3339)); err != nil {
		return Report{}, err
	}
	for _, line := range st.Lines() {
		if _, err := fmt.Fprintln(g.out, line); err != nil {
			return Report{}, err
		}
	}
	if _, err := fmt.Fprintln(g.out); err != nil {
		return Report{}, err
	}

	df := RoadTypeFrame(rep.Table)
	if err := PrintTable(g.out, df); err != nil {
		return Report{}, err
	}
	if err := os.MkdirAll(g.renderer.Dir(), 0o755); err != nil {
		return Report{}, fmt.Errorf("create output dir: %w", err)
	}
	tablePath := filepath.Join(g.renderer.Dir(), TableFile)
	if err := ExportTable(tablePath, df); err != nil {
		return Report{}, err
	}
	rep.Files = append(rep.Files, tablePath)

	// Figures are best effort: a region without wild animals still gets its numbers.
	if path, err := g.renderer.AnimalHours(HoursFigure, analysis.AnimalHours(animals)); err == nil {
		rep.Files = append(rep.Files, path)
	} else if !errors.Is(err, domain.ErrEmptyTable) {
		return Report{}, err
	} else {
		g.logger.Warn("skipping figure", "figure", HoursFigure, "error", err)
	}
	if path, err := g.renderer.AnimalTypes(TypesFigure, analysis.AnimalTypes(animals)); err == nil {
		rep.Files = append(rep.Files, path)
	} else if !errors.Is(err, domain.ErrEmptyTable) {
		return Report{}, err
	} else {
		g.logger.Warn("skipping figure", "figure", TypesFigure, "error", err)
	}

	g.logger.Info("report created",
		"accidents", st.Total,
		"animal_accidents", len(animals),
		"road_types", len(rep.Table),
		"files", len(rep.Files),
	)
	return rep, nil
}
