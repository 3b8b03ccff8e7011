// Package stations scrapes the table of Czech geographic stations (zeměpisné body).
package stations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// rowSelector matches the table rows that carry station data.
const rowSelector = ".nezvyraznit"

// Client downloads and parses the station page.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a station scraper for the page at url.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Download fetches the station page and returns the parsed table. Rows whose
// numbers cannot be parsed are skipped.
func (c *Client) Download(ctx context.Context) (domain.StationTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.StationTable{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StationTable{}, fmt.Errorf("fetch stations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.StationTable{}, fmt.Errorf("fetch stations: status %d: %s", resp.StatusCode, body)
	}

	table, err := Parse(resp.Body, c.logger)
	if err != nil {
		return table, err
	}
	c.logger.Info("stations downloaded", "rows", table.Len())
	return table, nil
}

// Parse reads station rows out of an HTML document. The page is served as UTF-8.
func Parse(r io.Reader, logger *slog.Logger) (domain.StationTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.StationTable{}, fmt.Errorf("parse stations page: %w", err)
	}

	var table domain.StationTable
	doc.Find(rowSelector).Each(func(i int, row *goquery.Selection) {
		position := strings.TrimSpace(row.Find("strong").First().Text())
		cells := row.Find("td")

		lat, errLat := parseNumber(cells.Eq(2).Text(), true)
		long, errLong := parseNumber(cells.Eq(4).Text(), true)
		height, errHeight := parseNumber(cells.Eq(6).Text(), false)
		if position == "" || errLat != nil || errLong != nil || errHeight != nil {
			logger.Warn("skipping station row", "row", i, "position", position)
			return
		}
		table.Append(position, lat, long, height)
	})

	if table.Len() == 0 {
		return table, domain.ErrNoStations
	}
	return table, nil
}

// parseNumber reads a decimal-comma number. Coordinates end with a degree sign
// that is dropped.
func parseNumber(s string, coordinate bool) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if coordinate {
		s = strings.TrimSuffix(s, "°")
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
