package stations

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

const stationsPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"></head><body>
<table>
<tr><th>Název</th><th></th><th>Šířka</th><th></th><th>Délka</th><th></th><th>Výška</th></tr>
<tr class="nezvyraznit">
  <td><strong>Cheb</strong></td><td></td><td>50,0683°</td><td></td><td>12,3913°</td><td></td><td>483,20</td>
</tr>
<tr class="nezvyraznit">
  <td><strong>Praha, Karlov</strong></td><td></td><td>50,0692°</td><td></td><td>14,4275°</td><td></td><td>261,00</td>
</tr>
<tr class="nezvyraznit">
  <td><strong>Rozbitý</strong></td><td></td><td>n/a</td><td></td><td>14,0°</td><td></td><td>1</td>
</tr>
<tr class="zvyraznit">
  <td><strong>Ignored</strong></td><td></td><td>1,0°</td><td></td><td>1,0°</td><td></td><td>1</td>
</tr>
</table>
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(stationsPage), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"Cheb", "Praha, Karlov"}, table.Positions)
	assert.InDeltaSlice(t, []float64{50.0683, 50.0692}, table.Lats, 1e-9)
	assert.InDeltaSlice(t, []float64{12.3913, 14.4275}, table.Longs, 1e-9)
	assert.InDeltaSlice(t, []float64{483.2, 261}, table.Heights, 1e-9)
}

func TestParse_NoRows(t *testing.T) {
	_, err := Parse(strings.NewReader("<html><body><p>maintenance</p></body></html>"), discardLogger())
	require.ErrorIs(t, err, domain.ErrNoStations)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in         string
		coordinate bool
		want       float64
		wantErr    bool
	}{
		{"50,0683°", true, 50.0683, false},
		{" 12,5 ° ", true, 12.5, false},
		{"483,20", false, 483.2, false},
		{"abc", false, 0, true},
		{"", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNumber(tt.in, tt.coordinate)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/izv/st_zemepis_cz", r.URL.Path)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(stationsPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/izv/st_zemepis_cz", 5*time.Second, discardLogger())
	table, err := c.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestClient_Download_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.Download(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "410")
}
