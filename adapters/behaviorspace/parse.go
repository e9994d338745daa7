package behaviorspace

import (
	"io"
	"os"
	"strings"

	"bspace/domain/tidy"
	apperrors "bspace/internal/errors"
)

// ParseFinal parses per-run final values from an export file. It handles the
// reporter/final and final-value conventions and returns one record per run.
func ParseFinal(path string) (*tidy.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseFinalFrom(f)
	if err != nil {
		return nil, apperrors.Wrapf(err, "parse final values from %s", path)
	}
	return t, nil
}

// ParseFinalFrom is ParseFinal over an already-open source
func ParseFinalFrom(r io.Reader) (*tidy.Table, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, apperrors.Wrap(err, "read export rows")
	}

	layout, i := classify(rows)
	switch layout {
	case LayoutReporterFinal:
		header := rows[i][1:]
		j := findRow(rows, markerFinal, i+1)
		if j < 0 {
			return nil, apperrors.Newf(apperrors.CodeMalformedSection,
				"found %s at row %d but no %s row after it", markerReporter, i, markerFinal)
		}
		return segmentPair(header, rows[j][1:])

	case LayoutFinalValue:
		header := rows[i][1:]
		if i+1 >= len(rows) {
			return nil, apperrors.Newf(apperrors.CodeMalformedSection,
				"found %s at row %d but no values row follows", markerFinalValue, i)
		}
		values := rows[i+1]
		// A blank leading cell is padding under the header's label column;
		// otherwise the row carries no label cell and is used as-is.
		if len(values) > 0 && strings.TrimSpace(values[0]) == "" {
			values = values[1:]
		}
		return segmentPair(header, values)
	}

	return nil, apperrors.Newf(apperrors.CodeUnsupportedLayout,
		"unsupported export layout: no %s or %s section found", markerReporter, markerFinalValue)
}

// ParseAllRunData parses the time-series section of an export file,
// returning one record per run per recorded step.
func ParseAllRunData(path string) (*tidy.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseAllRunDataFrom(f)
	if err != nil {
		return nil, apperrors.Wrapf(err, "parse run data from %s", path)
	}
	return t, nil
}

// ParseAllRunDataFrom is ParseAllRunData over an already-open source.
// Value rows are consumed until the end of input or the start of the next
// bracketed section, whichever comes first; stopping at a section boundary
// is the documented end condition, not a failure.
func ParseAllRunDataFrom(r io.Reader) (*tidy.Table, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, apperrors.Wrap(err, "read export rows")
	}

	i := findRow(rows, markerAllRunData, 0)
	if i < 0 {
		return nil, apperrors.Newf(apperrors.CodeUnsupportedLayout,
			"unsupported export layout: no %s section found", markerAllRunData)
	}

	header := rows[i][1:]
	offsets := stepOffsets(header)
	if len(offsets) == 0 {
		return nil, apperrors.Newf(apperrors.CodeMalformedSection,
			"cannot infer block layout: no %s in %s header at row %d", markerStep, markerAllRunData, i)
	}
	width := blockWidth(offsets, len(header))

	table := tidy.NewTable()
	for _, row := range rows[i+1:] {
		if len(row) == 0 {
			continue
		}
		first := firstCell(row)
		if first != "" && strings.HasPrefix(first, "[") {
			break
		}
		values := row
		if first == "" {
			values = row[1:]
		}
		for _, rec := range segmentRow(header, values, offsets, width) {
			table.Append(rec)
		}
	}
	return table, nil
}

// segmentPair slices one header/value pair into blocks, one record each
func segmentPair(header, values []string) (*tidy.Table, error) {
	offsets := stepOffsets(header)
	if len(offsets) == 0 {
		return nil, apperrors.Newf(apperrors.CodeMalformedSection,
			"cannot infer block layout: no %s in header row", markerStep)
	}
	width := blockWidth(offsets, len(header))

	table := tidy.NewTable()
	for _, rec := range segmentRow(header, values, offsets, width) {
		table.Append(rec)
	}
	return table, nil
}
