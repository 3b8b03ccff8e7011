package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/accident-data-etl/internal/analysis"
)

// Column headers of the road-type table.
var tableHeader = []string{
	"Typ vozovky",
	"Počet nehod",
	"Nejčastější typ zvířete (NTZ)",
	"Poměr nehod (NTZ)",
	"Nejčastější denní doba (NDD)",
	"Poměr nehod (NDD)",
}

const sheetName = "Typy vozovek"

// RoadTypeFrame turns road-type rows into a string dataframe with report headers.
func RoadTypeFrame(rows []analysis.RoadTypeRow) dataframe.DataFrame {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, tableHeader)
	for _, r := range rows {
		records = append(records, []string{
			r.RoadType,
			strconv.Itoa(r.Accidents),
			r.DominantAnimal,
			strconv.Itoa(r.DominantAnimalShare) + " %",
			r.DominantDaytime,
			strconv.Itoa(r.DominantDaytimeShare) + " %",
		})
	}
	return dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

// PrintTable writes the frame as aligned plain text without an index column.
func PrintTable(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("print table: %w", df.Err)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, rec := range df.Records() {
		for _, cell := range rec {
			if _, err := fmt.Fprint(tw, cell, "\t"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(tw); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ExportTable saves the frame into a single-sheet xlsx workbook at path.
func ExportTable(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("export table: %w", df.Err)
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for r, rec := range df.Records() {
		for c, value := range rec {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			// Keep counts numeric in the workbook.
			var v any = value
			if r > 0 && c == 1 {
				if n, err := strconv.Atoi(value); err == nil {
					v = n
				}
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	if err := f.SetColWidth(sheetName, "A", "F", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
