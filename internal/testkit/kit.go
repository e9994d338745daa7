// Package testkit builds synthetic BehaviorSpace exports for tests.
package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ExportBuilder assembles a synthetic spreadsheet export row by row
type ExportBuilder struct {
	rows [][]string
}

// NewExport starts an export with the metadata preamble the tool writes
// before any recognized section
func NewExport() *ExportBuilder {
	b := &ExportBuilder{}
	b.Row("BehaviorSpace results (NetLogo 6.2.2)")
	b.Row("lana.nlogo")
	b.Row("experiment")
	b.Row("01/15/2024 10:00:00:000 -0000")
	return b
}

// NewBareExport starts an export with no preamble rows
func NewBareExport() *ExportBuilder {
	return &ExportBuilder{}
}

// Row appends one raw row
func (b *ExportBuilder) Row(cells ...string) *ExportBuilder {
	b.rows = append(b.rows, cells)
	return b
}

// CSV renders the accumulated rows as delimited text
func (b *ExportBuilder) CSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range b.rows {
		if len(row) == 0 {
			row = []string{""}
		}
		if err := w.Write(row); err != nil {
			panic(fmt.Sprintf("testkit: write row: %v", err))
		}
	}
	w.Flush()
	return buf.String()
}

// WriteFile renders the export into dir under name and returns the path
func (b *ExportBuilder) WriteFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.CSV()), 0o644); err != nil {
		t.Fatalf("testkit: write %s: %v", path, err)
	}
	return path
}

// ReporterFinalExport builds a two-run reporter/final export with reporters
// x and y, matching the most common convention
func ReporterFinalExport() *ExportBuilder {
	return NewExport().
		Row("[reporter]", "[step]", "x", "y", "[step]", "x", "y").
		Row("[final]", "1", "10", "20", "2", "11", "21")
}

// FinalValueExport builds a single-run final-value export whose values row
// carries a leading blank padding cell
func FinalValueExport() *ExportBuilder {
	return NewExport().
		Row("[final value]", "[step]", "A", "B").
		Row("", "500", "5", "6.5")
}

// AllRunDataExport builds a two-run, three-step time-series export
func AllRunDataExport() *ExportBuilder {
	b := NewExport().
		Row("[all run data]", "[step]", "ticks", "decay-E-current", "[step]", "ticks", "decay-E-current")
	for step := 0; step < 3; step++ {
		e := 5.0
		for i := 0; i < step; i++ {
			e *= 0.99
		}
		b.Row("",
			fmt.Sprint(step), fmt.Sprint(step), fmt.Sprintf("%.4f", e),
			fmt.Sprint(step), fmt.Sprint(step), fmt.Sprintf("%.4f", e*1.1))
	}
	return b
}
