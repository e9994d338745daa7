package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bspace/internal/testkit"
)

func writeTableFixtures(t *testing.T, in string) {
	t.Helper()
	testkit.NewExport().
		Row("[reporter]",
			"[step]", "INHIB-FRAC", "mean-firing-rate", "fano-factor", "synchrony-index",
			"[step]", "INHIB-FRAC", "mean-firing-rate", "fano-factor", "synchrony-index").
		Row("[final]",
			"1", "0.1", "0.3", "1.2", "0.5",
			"2", "0.3", "0.1", "0.9", "0.2").
		WriteFile(t, in, "N1_ei_balance.csv")

	testkit.NewExport().
		Row("[reporter]",
			"[step]", "KAPPA-E", "mean-firing-rate", "spike-cv", "is-oscillating?",
			"[step]", "KAPPA-E", "mean-firing-rate", "spike-cv", "is-oscillating?").
		Row("[final]",
			"1", "0.5", "0.1", "0.8", "false",
			"2", "2.0", "0.4", "1.4", "true").
		WriteFile(t, in, "N2_phase_transition.csv")
}

func TestRunTables(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeTableFixtures(t, in)

	require.NoError(t, runTables(in, out))

	_, err := os.Stat(filepath.Join(out, "table_summaries.xlsx"))
	assert.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(out, "table_summaries.csv"))
	require.NoError(t, err)
	csv := string(raw)
	assert.Contains(t, csv, "table,INHIB-FRAC,n,")
	assert.Contains(t, csv, "N1,0.1,1,")
	assert.Contains(t, csv, "N2,")
	assert.NotContains(t, csv, "R1,", "absent R1 export contributes no rows")
}

func TestRunTablesMissingRequiredExport(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	// Only N1 present: the N2 summary must fail the run.
	testkit.NewExport().
		Row("[reporter]", "[step]", "INHIB-FRAC", "mean-firing-rate", "fano-factor", "synchrony-index").
		Row("[final]", "1", "0.1", "0.3", "1.2", "0.5").
		WriteFile(t, in, "N1_ei_balance.csv")

	require.Error(t, runTables(in, out))
}

func TestSummarizeNetworkSizeOptional(t *testing.T) {
	// Missing file is a skip, not an error.
	table, err := summarizeNetworkSize(filepath.Join(t.TempDir(), "R1_network_size.csv"))
	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestSummarizeNetworkSizeAltSpelling(t *testing.T) {
	in := t.TempDir()
	testkit.NewExport().
		Row("[reporter]",
			"[step]", "N-NODES?", "mean-firing-rate", "synchrony-index", "fano-factor", "active-neuron-fraction").
		Row("[final]", "1", "500", "0.2", "0.4", "1.1", "0.8").
		WriteFile(t, in, "R1_network_size.csv")

	table, err := summarizeNetworkSize(filepath.Join(in, "R1_network_size.csv"))
	require.NoError(t, err)
	require.NotNil(t, table)
	require.Equal(t, 1, table.Len())

	cv, ok := table.Records[0].Get("mean-firing-rate_cv_pct")
	require.True(t, ok)
	f, _ := cv.Float64()
	assert.Equal(t, 0.0, f, "single run has sd 0, so cv 0")
}
