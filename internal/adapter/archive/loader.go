// Package archive reads the zipped police exports into data frames and writes
// archives in the same layout.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/schollz/progressbar/v3"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// zipMagic prefixes OOXML workbooks, which are zip files themselves.
var zipMagic = []byte("PK\x03\x04")

// Loader reads dataset members out of an export archive.
type Loader struct {
	enc      encoding.Encoding
	logger   *slog.Logger
	metrics  *observability.Metrics
	progress io.Writer
}

// NewLoader creates a loader that decodes HTML members with the named encoding
// ("windows-1250" for the police exports). Progress is drawn to progress, which may
// be io.Discard.
func NewLoader(encodingName string, progress io.Writer, logger *slog.Logger, metrics *observability.Metrics) (*Loader, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("archive encoding %q: %w", encodingName, err)
	}
	return &Loader{enc: enc, logger: logger, metrics: metrics, progress: progress}, nil
}

// Load concatenates every member of the archive at path whose name ends with
// "<dataset>.xls". Source row indexes are discarded, columns are the union over all
// members, and columns named "Unnamed..." or without a name are dropped. All
// columns are loaded as strings.
func (l *Loader) Load(ctx context.Context, path, dataset string) (dataframe.DataFrame, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	suffix := dataset + ".xls"
	var members []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, suffix) {
			members = append(members, f)
		}
	}
	if len(members) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: no %q members in %s", domain.ErrEmptyTable, suffix, path)
	}

	bar := progressbar.NewOptions(len(members),
		progressbar.OptionSetWriter(l.progress),
		progressbar.OptionSetDescription(dataset),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var tables []table
	for _, f := range members {
		if err := ctx.Err(); err != nil {
			return dataframe.DataFrame{}, err
		}
		t, err := l.readMember(f)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("member %s: %w", f.Name, err)
		}
		l.logger.Debug("archive member read", "member", f.Name, "rows", len(t.rows))
		tables = append(tables, t)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	records := concat(tables)
	if len(records) < 2 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %q members in %s hold no rows", domain.ErrEmptyTable, suffix, path)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("build %s table: %w", dataset, df.Err)
	}

	l.metrics.RowsLoaded.WithLabelValues(dataset).Add(float64(df.Nrow()))
	l.logger.Info("archive loaded", "dataset", dataset, "members", len(members), "rows", df.Nrow(), "columns", df.Ncol())
	return df, nil
}

// table is one parsed member: a header and its rows.
type table struct {
	header []string
	rows   [][]string
}

func (l *Loader) readMember(f *zip.File) (table, error) {
	rc, err := f.Open()
	if err != nil {
		return table{}, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return table{}, err
	}
	if bytes.HasPrefix(raw, zipMagic) {
		return readWorkbook(raw)
	}
	return readHTML(l.enc.NewDecoder().Reader(bytes.NewReader(raw)))
}

// readHTML takes the first <table> of a document. Its first row is the header.
func readHTML(r io.Reader) (table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return table{}, fmt.Errorf("parse html: %w", err)
	}

	var t table
	doc.Find("table").First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if i == 0 {
			t.header = cells
			return
		}
		t.rows = append(t.rows, cells)
	})
	if t.header == nil {
		return table{}, fmt.Errorf("%w: no table in member", domain.ErrEmptyTable)
	}
	return t, nil
}

// readWorkbook takes the first sheet of an OOXML workbook.
func readWorkbook(raw []byte) (table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, fmt.Errorf("%w: workbook has no sheets", domain.ErrEmptyTable)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return table{}, fmt.Errorf("%w: sheet %s is empty", domain.ErrEmptyTable, sheets[0])
	}
	return table{header: rows[0], rows: rows[1:]}, nil
}

// concat stacks the tables under the union of their headers, in first-seen order.
// Cells a member does not have are left empty.
func concat(tables []table) [][]string {
	var header []string
	index := make(map[string]int)
	for _, t := range tables {
		for _, name := range t.header {
			name = strings.TrimSpace(name)
			if dropColumn(name) {
				continue
			}
			if _, ok := index[name]; !ok {
				index[name] = len(header)
				header = append(header, name)
			}
		}
	}

	records := [][]string{slices.Clone(header)}
	for _, t := range tables {
		for _, row := range t.rows {
			rec := make([]string, len(header))
			for j, name := range t.header {
				pos, ok := index[strings.TrimSpace(name)]
				if !ok || j >= len(row) {
					continue
				}
				rec[pos] = row[j]
			}
			records = append(records, rec)
		}
	}
	return records
}

func dropColumn(name string) bool {
	return name == "" || strings.HasPrefix(name, "Unnamed")
}
