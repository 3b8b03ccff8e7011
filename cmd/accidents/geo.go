package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/geo"
)

func newGeoCmd(a *app) *cobra.Command {
	var clusters int
	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Draw the alcohol map and the accident cluster map of a region",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if clusters <= 0 {
				clusters = a.cfg.ClusterCount
			}

			ds, err := a.dataset(ctx)
			if err != nil {
				return err
			}
			points, err := geo.FilterRegion(geo.MakeGeo(ds.Accidents, ds.Locations), a.cfg.Region)
			if err != nil {
				return err
			}
			if len(points) == 0 {
				return fmt.Errorf("region %s: %w", a.cfg.Region, domain.ErrEmptyTable)
			}
			a.logger.Info("region located", "region", a.cfg.Region, "points", len(points))

			r := a.renderer()
			var files []string
			alcohol, err := r.AlcoholMap(ctx, "geo1.png", a.cfg.Region, points)
			switch {
			case errors.Is(err, domain.ErrEmptyTable):
				a.logger.Warn("no alcohol-related accidents located, skipping map", "region", a.cfg.Region)
			case err != nil:
				return err
			default:
				files = append(files, alcohol)
			}

			groups, err := geo.Cluster(points, clusters)
			if err != nil {
				return err
			}
			if a.cfg.MapboxEnabled {
				client := mapbox.NewClient(a.cfg.MapboxToken, a.cfg.MapboxTimeout, a.metrics, a.logger)
				geo.LabelGroups(ctx, groups, mapbox.NewCachedLocator(client, a.cfg.MapboxCacheSize, a.metrics), a.logger)
			}
			title := fmt.Sprintf("Nehody v kraji %s", a.cfg.Region)
			clustered, err := r.ClusterMap(ctx, "geo2.png", title, groups)
			if err != nil {
				return err
			}
			return a.publish(ctx, append(files, clustered)...)
		},
	}
	cmd.Flags().IntVarP(&clusters, "clusters", "k", 0, "number of clusters (defaults to CLUSTER_COUNT)")
	return cmd
}
