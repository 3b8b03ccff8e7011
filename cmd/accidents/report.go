package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the animal accident statistics and render the report files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.dataset(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := report.NewGenerator(a.renderer(), cmd.OutOrStdout(), a.logger).CreateReport(ds.Accidents)
			if err != nil {
				return err
			}
			return a.publish(cmd.Context(), rep.Files...)
		},
	}
}
