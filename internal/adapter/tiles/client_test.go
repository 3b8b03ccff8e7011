package tiles

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/geo"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

func tilePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
	for x := 0; x < tileSize; x++ {
		for y := 0; y < tileSize; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func tileServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	body := tilePNG(t)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
}

func testClient(url string) *Client {
	return NewClient(url+"/{z}/{x}/{y}.png", 5*time.Second, 64, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTile_CachesResponses(t *testing.T) {
	var calls atomic.Int32
	srv := tileServer(t, &calls)
	defer srv.Close()

	c := testClient(srv.URL)
	img, err := c.Tile(context.Background(), 10, 557, 349)
	require.NoError(t, err)
	assert.Equal(t, tileSize, img.Bounds().Dx())

	_, err = c.Tile(context.Background(), 10, 557, 349)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.TileCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.TileRequests.WithLabelValues("success")), 0)
}

func TestTile_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Tile(context.Background(), 1, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.TileRequests.WithLabelValues("error")), 0)
}

func TestBasemap(t *testing.T) {
	var calls atomic.Int32
	srv := tileServer(t, &calls)
	defer srv.Close()

	// Roughly the South Moravian region.
	x0, y0 := geo.ToWebMercator(48.6, 15.5)
	x1, y1 := geo.ToWebMercator(49.6, 17.6)
	env := geo.Envelope{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}

	bm, err := testClient(srv.URL).Basemap(context.Background(), env)
	require.NoError(t, err)

	tilesX := bm.Image.Bounds().Dx() / tileSize
	tilesY := bm.Image.Bounds().Dy() / tileSize
	assert.LessOrEqual(t, tilesX*tilesY, maxTiles)
	assert.Equal(t, int32(tilesX*tilesY), calls.Load())

	assert.LessOrEqual(t, bm.Bounds.MinX, env.MinX)
	assert.LessOrEqual(t, bm.Bounds.MinY, env.MinY)
	assert.GreaterOrEqual(t, bm.Bounds.MaxX, env.MaxX)
	assert.GreaterOrEqual(t, bm.Bounds.MaxY, env.MaxY)
}

func TestBasemap_EmptyEnvelope(t *testing.T) {
	_, err := testClient("http://unused").Basemap(context.Background(), geo.EnvelopeOf(nil))
	require.Error(t, err)
}

func TestTileMath(t *testing.T) {
	x, y := tileAt(0, 0, 1)
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)

	x, y = tileAt(-originShift, originShift, 3)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	minX, maxY := tileOrigin(0, 0, 0)
	assert.InDelta(t, -originShift, minX, 1e-6)
	assert.InDelta(t, originShift, maxY, 1e-6)

	// Clamped to the world.
	x, _ = tileAt(originShift+1, 0, 2)
	assert.Equal(t, 3, x)
}
