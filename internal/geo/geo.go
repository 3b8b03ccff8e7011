// Package geo attaches geometry to accident records: S-JTSK coordinates are
// reprojected to WGS84 and Web Mercator, indexed in an R-tree, filtered to a
// region and clustered.
package geo

import (
	"math"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// Plausible S-JTSK East North bounds for the Czech Republic, in metres.
const (
	minEast  = -950000
	maxEast  = -400000
	minNorth = -1250000
	maxNorth = -900000
)

// Point is an accident with a location in WGS84 degrees and EPSG:3857 metres.
type Point struct {
	Accident domain.Accident
	Lat, Lon float64
	X, Y     float64
}

// MakeGeo joins accidents with their locations on p1 and projects them. Accidents
// without a location, and locations outside the Czech Republic, are dropped. The
// source swaps the d and e columns on some rows; such rows are detected by
// |d| > |e| and swapped back.
func MakeGeo(accidents []domain.Accident, locations []domain.Location) []Point {
	byID := make(map[string]domain.Location, len(locations))
	for _, loc := range locations {
		if _, ok := byID[loc.ID]; !ok {
			byID[loc.ID] = loc
		}
	}

	out := make([]Point, 0, len(accidents))
	for _, a := range accidents {
		loc, ok := byID[a.ID]
		if !ok {
			continue
		}
		east, north, ok := normalize(loc.D, loc.E)
		if !ok {
			continue
		}
		lat, lon := KrovakToWGS84(east, north)
		x, y := ToWebMercator(lat, lon)
		out = append(out, Point{Accident: a, Lat: lat, Lon: lon, X: x, Y: y})
	}
	return out
}

// normalize returns d and e as (east, north), swapping them when they were
// exported in the wrong order.
func normalize(d, e float64) (east, north float64, ok bool) {
	if math.IsNaN(d) || math.IsNaN(e) {
		return 0, 0, false
	}
	if math.Abs(d) > math.Abs(e) {
		d, e = e, d
	}
	if d < minEast || d > maxEast || e < minNorth || e > maxNorth {
		return 0, 0, false
	}
	return d, e, true
}

// Envelope is an axis-aligned rectangle in projected metres.
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// EnvelopeOf returns the smallest envelope holding every point.
func EnvelopeOf(points []Point) Envelope {
	env := Envelope{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range points {
		env.MinX = math.Min(env.MinX, p.X)
		env.MinY = math.Min(env.MinY, p.Y)
		env.MaxX = math.Max(env.MaxX, p.X)
		env.MaxY = math.Max(env.MaxY, p.Y)
	}
	return env
}

// Empty reports whether the envelope holds no area or no points.
func (e Envelope) Empty() bool {
	return !(e.MaxX >= e.MinX && e.MaxY >= e.MinY)
}

// Contains reports whether (x, y) lies inside the envelope, borders included.
func (e Envelope) Contains(x, y float64) bool {
	return x >= e.MinX && x <= e.MaxX && y >= e.MinY && y <= e.MaxY
}

// Pad grows the envelope by frac of its size on every side.
func (e Envelope) Pad(frac float64) Envelope {
	dx := (e.MaxX - e.MinX) * frac
	dy := (e.MaxY - e.MinY) * frac
	return Envelope{MinX: e.MinX - dx, MinY: e.MinY - dy, MaxX: e.MaxX + dx, MaxY: e.MaxY + dy}
}
