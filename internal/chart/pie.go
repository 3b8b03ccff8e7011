package chart

import (
	"fmt"
	"os"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/accident-data-etl/internal/analysis"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// AnimalTypes draws the share of each wild-animal group as a pie chart.
func (r *Renderer) AnimalTypes(file string, counts []analysis.Count) (string, error) {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return "", fmt.Errorf("animal types: %w", domain.ErrEmptyTable)
	}

	return r.render("animal_types", file, func(path string) error {
		values := make([]gochart.Value, 0, len(counts))
		for _, c := range counts {
			if c.Count == 0 {
				continue
			}
			share := float64(c.Count) / float64(total) * 100
			values = append(values, gochart.Value{
				Value: float64(c.Count),
				Label: fmt.Sprintf("%s (%.1f %%)", c.Label, share),
			})
		}

		pie := gochart.PieChart{
			Title:  "Podíl typů zvěře",
			Width:  640,
			Height: 640,
			Values: values,
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := pie.Render(gochart.PNG, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}
