package mapbox

import (
	"context"
	"fmt"

	"github.com/couchcryptid/accident-data-etl/internal/cache"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// CachedLocator remembers places by coordinates rounded to about 100 m for the
// life of the process. Centroids that fall into the same cell share one lookup.
type CachedLocator struct {
	inner   domain.PlaceLocator
	places  *cache.LRU[string, domain.Place]
	metrics *observability.Metrics
}

// NewCachedLocator wraps inner with an LRU of at most maxEntries places.
func NewCachedLocator(inner domain.PlaceLocator, maxEntries int, metrics *observability.Metrics) *CachedLocator {
	return &CachedLocator{
		inner:   inner,
		places:  cache.NewLRU[string, domain.Place](maxEntries),
		metrics: metrics,
	}
}

// NearestPlace returns the cached place for the cell of lat, lon, asking the
// wrapped locator on a miss.
func (c *CachedLocator) NearestPlace(ctx context.Context, lat, lon float64) (domain.Place, error) {
	key := fmt.Sprintf("%.3f,%.3f", lat, lon)
	if p, ok := c.places.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return p, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	p, err := c.inner.NearestPlace(ctx, lat, lon)
	if err != nil {
		return p, err
	}
	// Misses are retried next time.
	if p.Found() {
		c.places.Put(key, p)
	}
	return p, nil
}
