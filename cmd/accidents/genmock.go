package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/archive"
	"github.com/couchcryptid/accident-data-etl/internal/geo"
)

// regionCenters are rough WGS84 centres of the regions, keyed by p4a.
var regionCenters = map[int][2]float64{
	0: {50.08, 14.43}, 1: {49.95, 14.60}, 2: {49.10, 14.45}, 3: {49.60, 13.30},
	4: {50.55, 13.90}, 5: {50.35, 15.80}, 6: {49.20, 16.60}, 7: {49.80, 18.20},
	14: {49.70, 17.10}, 15: {49.20, 17.70}, 16: {49.40, 15.60}, 17: {49.90, 16.10},
	18: {50.75, 15.05}, 19: {50.20, 12.80},
}

var (
	accidentHeader    = []string{"p1", "p2a", "p2b", "p4a", "p6", "p7", "p8a", "p10", "p11", "p16", "p19", "p28", "p36"}
	consequenceHeader = []string{"p1", "p59a", "p59g"}
	locationHeader    = []string{"p1", "d", "e"}
)

func newGenmockCmd(a *app) *cobra.Command {
	var (
		out   string
		rows  int
		seed  int64
		years []int
	)
	cmd := &cobra.Command{
		Use:   "genmock",
		Short: "Write a synthetic export archive in the police layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rows <= 0 {
				return fmt.Errorf("rows must be positive, got %d", rows)
			}
			if out == "" {
				out = a.cfg.ArchivePath
			}
			w, err := archive.NewWriter(a.cfg.ArchiveEncoding)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("create archive dir: %w", err)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create archive: %w", err)
			}
			defer f.Close()

			members := mockMembers(faker.NewWithSeed(rand.NewSource(seed)), years, rows)
			if err := w.Write(f, members); err != nil {
				return err
			}
			a.logger.Info("mock archive written", "path", out, "members", len(members), "rows_per_year", rows)
			return f.Close()
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "", "archive to write (defaults to ARCHIVE_PATH)")
	flags.IntVar(&rows, "rows", 500, "accidents per year")
	flags.Int64Var(&seed, "seed", 1, "random seed")
	flags.IntSliceVar(&years, "years", []int{2023, 2024}, "years to generate")
	return cmd
}

// mockMembers builds the accident, consequence and location tables of every
// year. The last accident of each year repeats an earlier id, and roughly one
// location in ten has its d and e columns swapped, as in the real exports.
func mockMembers(fake faker.Faker, years []int, rows int) []archive.Member {
	regions := make([]int, 0, len(regionCenters))
	for id := range regionCenters {
		regions = append(regions, id)
	}
	slices.Sort(regions)

	var members []archive.Member
	for _, year := range years {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 23, 59, 0, 0, time.UTC)

		var accidents, consequences, locations [][]string
		for i := 0; i < rows; i++ {
			id := strconv.Itoa(year*1_000_000 + i)
			region := regions[fake.IntBetween(0, len(regions)-1)]
			accidents = append(accidents, mockAccident(fake, id, region, from, to))
			for p := fake.IntBetween(1, 3); p > 0; p-- {
				consequences = append(consequences, []string{
					id, strconv.Itoa(fake.IntBetween(1, 4)), strconv.Itoa(fake.IntBetween(1, 4)),
				})
			}
			locations = append(locations, mockLocation(fake, id, region))
		}
		if rows > 1 {
			accidents[rows-1] = slices.Clone(accidents[fake.IntBetween(0, rows-2)])
		}

		prefix := strconv.Itoa(year)
		members = append(members,
			archive.Member{Name: prefix + "_nehody.xls", Header: accidentHeader, Rows: accidents},
			archive.Member{Name: prefix + "_nasledky.xls", Header: consequenceHeader, Rows: consequences},
			archive.Member{Name: prefix + "_lokalita.xls", Header: locationHeader, Rows: locations},
		)
	}
	return members
}

func mockAccident(fake faker.Faker, id string, region int, from, to time.Time) []string {
	code := func(lo, hi int) string { return strconv.Itoa(fake.IntBetween(lo, hi)) }

	hhmm := fake.IntBetween(0, 23)*100 + fake.IntBetween(0, 59)
	if fake.IntBetween(1, 50) == 1 {
		hhmm = 2560 // unknown time
	}
	animal := "0"
	if fake.IntBetween(1, 100) <= 30 {
		animal = code(1, 22)
	}
	return []string{
		id,
		fake.Time().TimeBetween(from, to).Format("02.01.2006"),
		strconv.Itoa(hhmm),
		strconv.Itoa(region),
		code(0, 9),
		code(0, 4),
		animal,
		code(100, 600),
		code(0, 9),
		code(1, 9),
		code(1, 7),
		code(0, 2),
		code(0, 8),
	}
}

func mockLocation(fake faker.Faker, id string, region int) []string {
	c := regionCenters[region]
	lat := c[0] + fake.Float64(4, -15, 15)/100
	lon := c[1] + fake.Float64(4, -25, 25)/100
	east, north := geo.WGS84ToKrovak(lat, lon)
	d, e := east, north
	if fake.IntBetween(1, 10) == 1 {
		d, e = e, d
	}
	return []string{id, formatCoord(d), formatCoord(e)}
}

// formatCoord writes a coordinate with the decimal comma of the exports.
func formatCoord(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
