package archive

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

func testLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader("windows-1250", io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	require.NoError(t, err)
	return l
}

func writeArchive(t *testing.T, members []Member) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := NewWriter("windows-1250")
	require.NoError(t, err)
	require.NoError(t, w.Write(f, members))
	return path
}

func TestLoad_ConcatenatesMembers(t *testing.T) {
	path := writeArchive(t, []Member{
		{
			Name:   "2023_nehody.xls",
			Header: []string{"p1", "p2a", "Unnamed: 3", "p4a"},
			Rows: [][]string{
				{"100", "01.02.2023", "x", "0"},
				{"101", "02.02.2023", "y", "19"},
			},
		},
		{
			Name:   "2024_01_nehody.xls",
			Header: []string{"p1", "p2a", "p4a", "p36", ""},
			Rows:   [][]string{{"200", "03.01.2024", "6", "silnice", "z"}},
		},
		{
			Name:   "2023_nasledky.xls",
			Header: []string{"p1", "p59g"},
			Rows:   [][]string{{"100", "1"}},
		},
	})

	l := testLoader(t)
	df, err := l.Load(context.Background(), path, "nehody")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2a", "p4a", "p36"}, df.Names())
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, []string{"100", "101", "200"}, df.Col("p1").Records())
	assert.Equal(t, "silnice", df.Col("p36").Records()[2])
	assert.InDelta(t, 3, testutil.ToFloat64(l.metrics.RowsLoaded.WithLabelValues("nehody")), 0)
}

func TestLoad_DecodesWindows1250(t *testing.T) {
	path := writeArchive(t, []Member{{
		Name:   "2023_lokalita.xls",
		Header: []string{"p1", "obec"},
		Rows:   [][]string{{"1", "Žďár nad Sázavou"}},
	}})

	df, err := testLoader(t).Load(context.Background(), path, "lokalita")
	require.NoError(t, err)
	assert.Equal(t, "Žďár nad Sázavou", df.Col("obec").Records()[0])
}

func TestLoad_ParsesIntoAccidents(t *testing.T) {
	path := writeArchive(t, []Member{{
		Name:   "2023_nehody.xls",
		Header: []string{"p1", "p2a", "p4a", "p8a"},
		Rows:   [][]string{{"1", "05.06.2023", "6", "1"}, {"2", "06.06.2023", "0", "0"}},
	}})

	df, err := testLoader(t).Load(context.Background(), path, "nehody")
	require.NoError(t, err)

	accidents, err := domain.ParseAccidents(df, slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	require.NoError(t, err)
	require.Len(t, accidents, 2)
	assert.Equal(t, "JHM", accidents[0].Region)
	assert.True(t, accidents[0].HasWildAnimal())
}

func TestLoad_WorkbookMember(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, v := range []string{"p1", "p2a", "p4a"} {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, wb.SetCellValue(sheet, cell, v))
	}
	require.NoError(t, wb.SetCellValue(sheet, "A2", "900"))
	require.NoError(t, wb.SetCellValue(sheet, "B2", "09.09.2024"))
	require.NoError(t, wb.SetCellValue(sheet, "C2", "7"))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("2024_nehody.xls")
	require.NoError(t, err)
	_, err = w.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	df, err := testLoader(t).Load(context.Background(), path, "nehody")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2a", "p4a"}, df.Names())
	assert.Equal(t, []string{"900"}, df.Col("p1").Records())
}

func TestLoad_NoMatchingMembers(t *testing.T) {
	path := writeArchive(t, []Member{{Name: "2023_nasledky.xls", Header: []string{"p1"}, Rows: [][]string{{"1"}}}})

	_, err := testLoader(t).Load(context.Background(), path, "nehody")
	require.ErrorIs(t, err, domain.ErrEmptyTable)
}

func TestLoad_HeaderOnlyMembers(t *testing.T) {
	path := writeArchive(t, []Member{
		{Name: "2023_nasledky.xls", Header: []string{"p1", "p59a", "p59g"}},
		{Name: "2024_nasledky.xls", Header: []string{"p1", "p59a", "p59g"}, Rows: [][]string{}},
	})

	_, err := testLoader(t).Load(context.Background(), path, "nasledky")
	require.ErrorIs(t, err, domain.ErrEmptyTable)
}

func TestLoad_MissingArchive(t *testing.T) {
	_, err := testLoader(t).Load(context.Background(), filepath.Join(t.TempDir(), "none.zip"), "nehody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open archive")
}

func TestLoad_CanceledContext(t *testing.T) {
	path := writeArchive(t, []Member{{Name: "2023_nehody.xls", Header: []string{"p1"}, Rows: [][]string{{"1"}}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testLoader(t).Load(ctx, path, "nehody")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewLoader_UnknownEncoding(t *testing.T) {
	_, err := NewLoader("klingon", io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	require.Error(t, err)
}

func TestConcat(t *testing.T) {
	got := concat([]table{
		{header: []string{"a", " b "}, rows: [][]string{{"1", "2"}, {"3"}}},
		{header: []string{"c", "a"}, rows: [][]string{{"x", "y"}}},
	})

	assert.Equal(t, [][]string{
		{"a", "b", "c"},
		{"1", "2", ""},
		{"3", "", ""},
		{"y", "", "x"},
	}, got)
}
