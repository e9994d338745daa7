// Package excel writes summary tables to spreadsheet workbooks and tidy CSV
// files for downstream review.
package excel

import (
	"encoding/csv"
	"log"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"bspace/domain/tidy"
)

// Sheet pairs a sheet (or table) name with the tidy table it renders
type Sheet struct {
	Name  string
	Table *tidy.Table
}

// WriteWorkbook writes one sheet per table into an xlsx workbook at path.
// Absent cells and NaN values are left blank, the way a human-readable
// review workbook expects.
func WriteWorkbook(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[excel] close workbook: %v", err)
		}
	}()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sh.Name); err != nil {
				return err
			}
		}
		if err := writeSheet(f, sh); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sh Sheet) error {
	cols := sh.Table.Columns()
	for c, name := range cols {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sh.Name, cell, name); err != nil {
			return err
		}
	}
	for r, rec := range sh.Table.Records {
		for c, name := range cols {
			v, ok := rec.Get(name)
			if !ok || v.IsAbsent() {
				continue
			}
			value := cellValue(v)
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sh.Name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue converts a scalar to the native type excelize stores, or nil for
// cells that should stay blank
func cellValue(v tidy.Scalar) interface{} {
	switch v.Type {
	case tidy.ScalarTypeBool:
		if v.BoolVal != nil {
			return *v.BoolVal
		}
	case tidy.ScalarTypeInt:
		if v.IntVal != nil {
			return *v.IntVal
		}
	case tidy.ScalarTypeFloat:
		if v.FloatVal != nil && !math.IsNaN(*v.FloatVal) {
			return *v.FloatVal
		}
	case tidy.ScalarTypeText:
		if v.TextVal != nil {
			return *v.TextVal
		}
	}
	return nil
}

// WriteCSV writes one tidy table as CSV: a header of every observed column
// followed by one row per record, absent cells rendered empty
func WriteCSV(path string, t *tidy.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := t.Columns()
	if err := w.Write(cols); err != nil {
		return err
	}
	for _, rec := range t.Records {
		row := make([]string, len(cols))
		for i, name := range cols {
			if v, ok := rec.Get(name); ok {
				row[i] = renderCell(v)
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTidyCSV concatenates several named tables into one machine-readable
// CSV with a leading "table" column
func WriteTidyCSV(path string, sheets []Sheet) error {
	merged := tidy.NewTable()
	for _, sh := range sheets {
		for _, rec := range sh.Table.Records {
			row := tidy.NewRecord()
			row.Set("table", tidy.NewTextScalar(sh.Name))
			for _, k := range rec.Keys() {
				v, _ := rec.Get(k)
				row.Set(k, v)
			}
			merged.Append(row)
		}
	}
	return WriteCSV(path, merged)
}

// renderCell formats a scalar for CSV output; NaN floats render empty like
// absent cells
func renderCell(v tidy.Scalar) string {
	if v.Type == tidy.ScalarTypeFloat && v.FloatVal != nil && math.IsNaN(*v.FloatVal) {
		return ""
	}
	return v.String()
}
