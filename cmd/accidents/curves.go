package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/curves"
)

// distanceExample is the pair of point sets the curves command measures.
var distanceExample = [2][][]float64{
	{{-1, -1, -1}, {0, 1, 2}, {3, -3, 1}, {-2, -2, 0}, {4, 5, 6}},
	{{1, 1, 1}, {0, 0, 0}, {3, 3, 3}, {-2, 1, 2}, {0, 0, 0}},
}

func newCurvesCmd(a *app) *cobra.Command {
	var amplitudes []float64
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Print point distances and draw the sine figures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := curves.Distance(distanceExample[0], distanceExample[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)

			r := a.renderer()
			family, err := r.SineFamily("cs.png", amplitudes)
			if err != nil {
				return err
			}
			composite, err := r.Composite("sinus.png")
			if err != nil {
				return err
			}
			return a.publish(cmd.Context(), family, composite)
		},
	}
	cmd.Flags().Float64SliceVar(&amplitudes, "amplitudes", []float64{7, 4, 3}, "amplitudes of the sine family")
	return cmd
}
