package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/analysis"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// collisionRegions are the regions drawn by the collision-kind timeline.
var collisionRegions = []string{"JHM", "MSK", "OLK", "ZLK"}

// figures maps plot names to their output files, in render order.
var figures = []struct{ name, file string }{
	{"state", "01_state.png"},
	{"alcohol", "02_alcohol.png"},
	{"type", "03_type.png"},
}

func newPlotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "plot [state|alcohol|type]...",
		Short:     "Draw the region figures; all three when none is named",
		ValidArgs: []string{"state", "alcohol", "type"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			want := make(map[string]bool, len(args))
			for _, name := range args {
				want[name] = true
			}

			ds, err := a.dataset(cmd.Context())
			if err != nil {
				return err
			}

			var files []string
			for _, f := range figures {
				if len(want) > 0 && !want[f.name] {
					continue
				}
				path, err := a.plot(f.name, f.file, ds)
				if err != nil {
					return fmt.Errorf("plot %s: %w", f.name, err)
				}
				files = append(files, path)
			}
			return a.publish(cmd.Context(), files...)
		},
	}
}

func (a *app) plot(name, file string, ds domain.Dataset) (string, error) {
	r := a.renderer()
	switch name {
	case "state":
		return r.RegionState(file, analysis.CountByRegionAndState(ds.Accidents))
	case "alcohol":
		return r.Alcohol(file, analysis.AlcoholConsequences(ds.Accidents, ds.Consequences))
	case "type":
		series := analysis.CollisionsOverTime(ds.Accidents, collisionRegions)
		return r.CollisionsOverTime(file, collisionRegions, series)
	default:
		return "", fmt.Errorf("unknown figure %q", name)
	}
}
