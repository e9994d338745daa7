// Package behaviorspace parses NetLogo BehaviorSpace "Spreadsheet 2.0"
// exports into tidy tables.
//
// The raw exports are "wide": each run occupies a repeated block of columns
// within a single row (or, for the time-series section, within every row).
// Three layout conventions exist across tool versions and experiment types;
// ParseFinal and ParseAllRunData recognize them by scanning row labels and
// normalize each into one record per observation.
package behaviorspace

import (
	"encoding/csv"
	"io"
	"strings"
)

// readRows loads the whole source into raw rows, preserving empty cells and
// row order exactly as stored. Rows may have differing lengths; no shape
// validation happens here. Invalid UTF-8 sequences are dropped rather than
// failing the read, since older exports occasionally carry stray bytes.
func readRows(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(strings.ToValidUTF8(string(raw), "")))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// firstCell returns the trimmed first cell of a row, or "" for empty rows
func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}
