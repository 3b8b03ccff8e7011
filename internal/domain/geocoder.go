package domain

import "context"

// Place is the settlement nearest to a point, as named by a place lookup.
type Place struct {
	Name     string
	District string // okres, empty when the provider does not report it
	Region   string // kraj
	Lat, Lon float64
}

// Found reports whether the lookup named a place at all.
func (p Place) Found() bool {
	return p.Name != ""
}

// PlaceLocator names the place nearest to WGS84 coordinates. The cluster map uses
// it to label cluster centroids.
type PlaceLocator interface {
	NearestPlace(ctx context.Context, lat, lon float64) (Place, error)
}
