package behaviorspace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bspace/domain/tidy"
	apperrors "bspace/internal/errors"
	"bspace/internal/testkit"
)

func TestParseFinalReporterLayout(t *testing.T) {
	csv := testkit.NewExport().
		Row("[reporter]", "[step]", "x", "y", "[step]", "x", "y").
		Row("some unrelated row").
		Row("[final]", "1", "10", "20", "2", "11", "21").
		CSV()

	table, err := ParseFinalFrom(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len(), "one record per [step] occurrence")

	first := table.Records[0]
	step, ok := first.Get("[step]")
	require.True(t, ok)
	assert.Equal(t, tidy.NewIntScalar(1), step)
	x, _ := first.Get("x")
	assert.Equal(t, tidy.NewIntScalar(10), x)
	y, _ := first.Get("y")
	assert.Equal(t, tidy.NewIntScalar(20), y)

	second := table.Records[1]
	x2, _ := second.Get("x")
	assert.Equal(t, tidy.NewIntScalar(11), x2)
	y2, _ := second.Get("y")
	assert.Equal(t, tidy.NewIntScalar(21), y2)
}

func TestParseFinalReporterWithoutFinalRow(t *testing.T) {
	csv := testkit.NewExport().
		Row("[reporter]", "[step]", "x").
		CSV()

	_, err := ParseFinalFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMalformedSection), "got %v", err)
}

func TestParseFinalFinalValueLayout(t *testing.T) {
	// Values row with a leading blank padding cell.
	padded := testkit.NewExport().
		Row("[final value]", "[step]", "A", "B").
		Row("", "500", "5", "6.5").
		CSV()

	// Variant without the padding cell; must yield the same record.
	bare := testkit.NewExport().
		Row("[final value]", "[step]", "A", "B").
		Row("500", "5", "6.5").
		CSV()

	for name, src := range map[string]string{"padded": padded, "bare": bare} {
		t.Run(name, func(t *testing.T) {
			table, err := ParseFinalFrom(strings.NewReader(src))
			require.NoError(t, err)
			require.Equal(t, 1, table.Len())

			rec := table.Records[0]
			a, _ := rec.Get("A")
			assert.Equal(t, tidy.NewIntScalar(5), a)
			b, _ := rec.Get("B")
			assert.Equal(t, tidy.NewFloatScalar(6.5), b)
		})
	}
}

func TestParseFinalFinalValueMissingValuesRow(t *testing.T) {
	csv := testkit.NewExport().
		Row("[final value]", "[step]", "A", "B").
		CSV()

	_, err := ParseFinalFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMalformedSection), "got %v", err)
}

func TestParseFinalNoStepInHeader(t *testing.T) {
	csv := testkit.NewExport().
		Row("[reporter]", "A", "B").
		Row("[final]", "1", "2").
		CSV()

	_, err := ParseFinalFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMalformedSection), "got %v", err)
}

func TestParseAllRunData(t *testing.T) {
	table, err := ParseAllRunDataFrom(strings.NewReader(testkit.AllRunDataExport().CSV()))
	require.NoError(t, err)
	// Two blocks per row, three rows.
	require.Equal(t, 6, table.Len())

	ticks := table.Float64s("ticks")
	assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, ticks)
}

func TestParseAllRunDataStopsAtNextSection(t *testing.T) {
	csv := testkit.NewExport().
		Row("[all run data]", "[step]", "ticks", "v").
		Row("", "0", "0", "1.0").
		Row("", "1", "1", "0.9").
		Row("[final value]", "[step]", "v").
		Row("", "99", "0.5").
		CSV()

	table, err := ParseAllRunDataFrom(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len(), "rows after the next bracketed section must not be consumed")
}

func TestParseAllRunDataValueRowsWithoutPadding(t *testing.T) {
	// Rows whose first cell is non-blank and unbracketed are used as-is.
	csv := testkit.NewBareExport().
		Row("[all run data]", "[step]", "ticks").
		Row("0", "7").
		CSV()

	table, err := ParseAllRunDataFrom(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	step, _ := table.Records[0].Get("[step]")
	assert.Equal(t, tidy.NewIntScalar(0), step)
	ticks, _ := table.Records[0].Get("ticks")
	assert.Equal(t, tidy.NewIntScalar(7), ticks)
}

func TestUnsupportedLayout(t *testing.T) {
	csv := testkit.NewExport().
		Row("just", "some", "cells").
		CSV()

	_, err := ParseFinalFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedLayout), "got %v", err)

	_, err = ParseAllRunDataFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedLayout), "got %v", err)
}

func TestParseFinalCrossCallOnTimeSeriesFile(t *testing.T) {
	// A file with only an [all run data] section is not a final-value
	// export; calling the wrong extractor fails explicitly.
	_, err := ParseFinalFrom(strings.NewReader(testkit.AllRunDataExport().CSV()))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedLayout), "got %v", err)
}

func TestParseDeterminism(t *testing.T) {
	src := testkit.ReporterFinalExport().CSV()

	render := func(tbl *tidy.Table) string {
		var sb strings.Builder
		for _, rec := range tbl.Records {
			for _, k := range rec.Keys() {
				v, _ := rec.Get(k)
				sb.WriteString(k)
				sb.WriteByte('=')
				sb.WriteString(v.String())
				sb.WriteByte(';')
			}
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	a, err := ParseFinalFrom(strings.NewReader(src))
	require.NoError(t, err)
	b, err := ParseFinalFrom(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, render(a), render(b))
}

func TestReadRowsTolerantOfInvalidBytes(t *testing.T) {
	src := "[final value],[step],A\n,1,\xff\xfe5\n"
	table, err := ParseFinalFrom(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	a, _ := table.Records[0].Get("A")
	assert.Equal(t, tidy.NewIntScalar(5), a, "undecodable bytes are dropped, not fatal")
}

func TestParseFinalFromFile(t *testing.T) {
	dir := t.TempDir()
	path := testkit.ReporterFinalExport().WriteFile(t, dir, "export.csv")

	table, err := ParseFinal(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	_, err = ParseFinal(path + ".missing")
	require.Error(t, err)
}
