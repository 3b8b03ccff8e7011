package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/stations"
)

func newStationsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "Download the table of geographic stations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := stations.NewClient(a.cfg.StationsURL, a.cfg.HTTPTimeout, a.logger)
			table, err := client.Download(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(table)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "position\tlat\tlong\theight\t")
			for i := range table.Positions {
				fmt.Fprintf(tw, "%s\t%.5f\t%.5f\t%.1f\t\n", table.Positions[i], table.Lats[i], table.Longs[i], table.Heights[i])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parallel columns as JSON")
	return cmd
}
