package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

const testToken = "test-token"

// brnoResponse is a trimmed reverse lookup of Brno city centre.
const brnoResponse = `{
  "type": "FeatureCollection",
  "features": [{
    "id": "place.123",
    "text": "Brno",
    "place_name": "Brno, okres Brno-město, Jihomoravský kraj, Česko",
    "center": [16.6068, 49.1951],
    "context": [
      {"id": "district.77", "text": "okres Brno-město"},
      {"id": "region.12", "text": "Jihomoravský kraj"},
      {"id": "country.4", "text": "Česko", "short_code": "cz"}
    ]
  }]
}`

func testClient(baseURL string) *Client {
	c := NewClient(testToken, 5*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = baseURL
	return c
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNearestPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/16.606800,49.195100.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, testToken, q.Get("access_token"))
		assert.Equal(t, "cz", q.Get("country"))
		assert.Equal(t, "cs", q.Get("language"))
		assert.Equal(t, "place,locality", q.Get("types"))
		_, _ = io.WriteString(w, brnoResponse)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	p, err := c.NearestPlace(context.Background(), 49.1951, 16.6068)
	require.NoError(t, err)

	assert.Equal(t, domain.Place{
		Name:     "Brno",
		District: "okres Brno-město",
		Region:   "Jihomoravský kraj",
		Lat:      49.1951,
		Lon:      16.6068,
	}, p)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("success")), 0)
}

func TestNearestPlace_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		outcome string
	}{
		{name: "no features", status: http.StatusOK, body: `{"features":[]}`, outcome: "empty"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Not Authorized"}`, wantErr: "401", outcome: "error"},
		{name: "bad json", status: http.StatusOK, body: "{", wantErr: "decode response", outcome: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(serve(t, tt.status, tt.body).URL)

			p, err := c.NearestPlace(context.Background(), 49.19, 16.60)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.False(t, p.Found())
			assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues(tt.outcome)), 0)
		})
	}
}

func TestNearestPlace_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.NearestPlace(context.Background(), 49.19, 16.60)
	require.Error(t, err)
}
