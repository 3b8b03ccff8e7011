// Package tiles fetches XYZ raster tiles and stitches them into basemaps for the
// map figures.
package tiles

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // some tile servers answer with JPEG
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/cache"
	"github.com/couchcryptid/accident-data-etl/internal/geo"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

const (
	tileSize = 256
	maxZoom  = 18
	// maxTiles bounds how many tiles one mosaic may need.
	maxTiles = 16
	// originShift is half the Web Mercator world width in metres.
	originShift = math.Pi * 6378137
)

// Client downloads tiles from a "{z}/{x}/{y}" URL template.
type Client struct {
	urlTemplate string
	userAgent   string
	httpClient  *http.Client
	cache       *cache.LRU[string, image.Image]
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a tile client. Tiles are cached in memory, up to cacheSize.
func NewClient(urlTemplate string, timeout time.Duration, cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		urlTemplate: urlTemplate,
		userAgent:   "accident-data-etl/1.0",
		httpClient:  &http.Client{Timeout: timeout},
		cache:       cache.NewLRU[string, image.Image](cacheSize),
		metrics:     metrics,
		logger:      logger,
	}
}

// Basemap is a stitched raster covering Bounds, in EPSG:3857 metres.
type Basemap struct {
	Image  image.Image
	Bounds geo.Envelope
	Zoom   int
}

// Basemap returns a mosaic of the most detailed zoom level that covers env with
// no more than 16 tiles.
func (c *Client) Basemap(ctx context.Context, env geo.Envelope) (Basemap, error) {
	if env.Empty() {
		return Basemap{}, fmt.Errorf("empty envelope")
	}
	z := zoomFor(env)
	x0, y0 := tileAt(env.MinX, env.MaxY, z)
	x1, y1 := tileAt(env.MaxX, env.MinY, z)

	mosaic := image.NewRGBA(image.Rect(0, 0, (x1-x0+1)*tileSize, (y1-y0+1)*tileSize))
	for ty := y0; ty <= y1; ty++ {
		for tx := x0; tx <= x1; tx++ {
			img, err := c.Tile(ctx, z, tx, ty)
			if err != nil {
				return Basemap{}, err
			}
			at := image.Pt((tx-x0)*tileSize, (ty-y0)*tileSize)
			draw.Draw(mosaic, image.Rectangle{Min: at, Max: at.Add(image.Pt(tileSize, tileSize))}, img, img.Bounds().Min, draw.Src)
		}
	}

	minX, maxY := tileOrigin(x0, y0, z)
	maxX, minY := tileOrigin(x1+1, y1+1, z)
	c.logger.Debug("basemap assembled", "zoom", z, "tiles", (x1-x0+1)*(y1-y0+1))
	return Basemap{
		Image:  mosaic,
		Bounds: geo.Envelope{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY},
		Zoom:   z,
	}, nil
}

// Tile returns one tile, from the cache when possible.
func (c *Client) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	if img, ok := c.cache.Get(key); ok {
		c.metrics.TileCache.WithLabelValues("hit").Inc()
		return img, nil
	}
	c.metrics.TileCache.WithLabelValues("miss").Inc()

	img, err := c.fetch(ctx, z, x, y)
	if err != nil {
		c.metrics.TileRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("tile %s: %w", key, err)
	}
	c.metrics.TileRequests.WithLabelValues("success").Inc()
	c.cache.Put(key, img)
	return img, nil
}

func (c *Client) fetch(ctx context.Context, z, x, y int) (image.Image, error) {
	u := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(c.urlTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Public tile servers reject requests without an identifying agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// zoomFor picks the deepest zoom at which env spans at most maxTiles tiles.
func zoomFor(env geo.Envelope) int {
	for z := maxZoom; z > 0; z-- {
		x0, y0 := tileAt(env.MinX, env.MaxY, z)
		x1, y1 := tileAt(env.MaxX, env.MinY, z)
		if (x1-x0+1)*(y1-y0+1) <= maxTiles {
			return z
		}
	}
	return 0
}

// tileAt returns the tile holding the Web Mercator point (x, y) at zoom z.
func tileAt(x, y float64, z int) (int, int) {
	n := 1 << z
	size := 2 * originShift / float64(n)
	tx := int(math.Floor((x + originShift) / size))
	ty := int(math.Floor((originShift - y) / size))
	return clamp(tx, 0, n-1), clamp(ty, 0, n-1)
}

// tileOrigin returns the Web Mercator coordinates of the top-left corner of tile
// (tx, ty) at zoom z.
func tileOrigin(tx, ty, z int) (float64, float64) {
	size := 2 * originShift / float64(int(1)<<z)
	return float64(tx)*size - originShift, originShift - float64(ty)*size
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
