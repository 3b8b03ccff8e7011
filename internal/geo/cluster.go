package geo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// Group is one cluster of accidents.
type Group struct {
	Points []Point
	// Centroid is the mean position in EPSG:3857 metres; Lat and Lon are the
	// same point in WGS84.
	Centroid geom.Coord
	Lat, Lon float64
	// Hull is the convex hull of the points, nil when they do not span an area.
	Hull  *geom.Polygon
	Label string
}

// Area returns the hull area in square metres of the projected plane. The hull
// ring is clockwise, so the signed polygon area is negated.
func (g Group) Area() float64 {
	if g.Hull == nil {
		return 0
	}
	return math.Abs(g.Hull.Area())
}

// observation adapts a point to the clustering library and remembers its index.
type observation struct {
	coords clusters.Coordinates
	idx    int
}

func (o observation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o observation) Distance(c clusters.Coordinates) float64 {
	return o.coords.Distance(c)
}

// Cluster partitions points into at most k groups with k-means on projected
// coordinates. Groups come back largest first; empty groups are dropped.
func Cluster(points []Point, k int) ([]Group, error) {
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if len(points) == 0 {
		return nil, domain.ErrEmptyTable
	}
	k = min(k, len(points))

	data := make(clusters.Observations, len(points))
	for i, p := range points {
		data[i] = observation{coords: clusters.Coordinates{p.X, p.Y}, idx: i}
	}

	parts, err := kmeans.New().Partition(data, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	groups := make([]Group, 0, len(parts))
	for _, part := range parts {
		if len(part.Observations) == 0 {
			continue
		}
		members := make([]Point, 0, len(part.Observations))
		for _, o := range part.Observations {
			members = append(members, points[o.(observation).idx])
		}
		g, err := newGroup(members)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(len(b.Points), len(a.Points))
	})
	return groups, nil
}

func newGroup(members []Point) (Group, error) {
	coords := make([]geom.Coord, len(members))
	for i, p := range members {
		coords[i] = geom.Coord{p.X, p.Y}
	}
	mp := geom.NewMultiPoint(geom.XY).MustSetCoords(coords)

	centroid, err := xy.Centroid(mp)
	if err != nil {
		return Group{}, fmt.Errorf("centroid: %w", err)
	}

	g := Group{Points: members, Centroid: centroid}
	g.Lat, g.Lon = FromWebMercator(centroid.X(), centroid.Y())
	if hull, ok := xy.ConvexHull(mp).(*geom.Polygon); ok {
		g.Hull = hull
	}
	return g, nil
}

// LabelGroups names every group after the place nearest to its centroid. Lookup
// failures leave the label empty.
func LabelGroups(ctx context.Context, groups []Group, places domain.PlaceLocator, logger *slog.Logger) {
	for i := range groups {
		place, err := places.NearestPlace(ctx, groups[i].Lat, groups[i].Lon)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("cluster label lookup failed", "cluster", i, "error", err)
			continue
		}
		groups[i].Label = place.Name
	}
}
