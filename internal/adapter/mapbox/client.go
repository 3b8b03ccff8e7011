package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client locates places through the Mapbox reverse geocoding endpoint. Results
// are restricted to Czech settlements and named in Czech.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox place locator.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// NearestPlace returns the settlement closest to lat, lon. A zero Place with a
// nil error means Mapbox knows nothing there.
func (c *Client) NearestPlace(ctx context.Context, lat, lon float64) (domain.Place, error) {
	params := url.Values{
		"access_token": {c.token},
		"country":      {"cz"},
		"language":     {"cs"},
		"limit":        {"1"},
		"types":        {"place,locality"},
	}
	// Mapbox takes lon,lat.
	u := fmt.Sprintf("%s/%.6f,%.6f.json?%s", c.baseURL, lon, lat, params.Encode())

	start := time.Now()
	place, err := c.lookup(ctx, u)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		c.logger.Warn("place lookup failed", "lat", lat, "lon", lon, "error", err)
	case !place.Found():
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return place, err
}

func (c *Client) lookup(ctx context.Context, u string) (domain.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Place{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Place{}, fmt.Errorf("place lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Place{}, fmt.Errorf("mapbox status %d: %s", resp.StatusCode, body)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return domain.Place{}, fmt.Errorf("decode response: %w", err)
	}
	if len(fc.Features) == 0 {
		return domain.Place{}, nil
	}
	return fc.Features[0].place(), nil
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Text    string         `json:"text"`
	Center  []float64      `json:"center"` // lon, lat
	Context []contextEntry `json:"context"`
}

// contextEntry is one enclosing area of a feature; the id prefix names its kind.
type contextEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (f feature) place() domain.Place {
	p := domain.Place{Name: f.Text}
	if len(f.Center) == 2 {
		p.Lon, p.Lat = f.Center[0], f.Center[1]
	}
	for _, e := range f.Context {
		kind, _, _ := strings.Cut(e.ID, ".")
		switch kind {
		case "district":
			p.District = e.Text
		case "region":
			p.Region = e.Text
		}
	}
	return p
}
