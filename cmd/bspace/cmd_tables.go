package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bspace/adapters/behaviorspace"
	"bspace/adapters/excel"
	"bspace/domain/tidy"
	"bspace/internal/summary"
)

func newTablesCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Build the summary workbook and tidy CSV from raw exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(input, output)
			return runTables(cfg.Paths.InputDir, cfg.Paths.OutputDir)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Path to the raw exports folder")
	cmd.Flags().StringVar(&output, "output", "", "Path to the processed output folder")
	return cmd
}

func runTables(inDir, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	var n1Sum, n2Sum, r1Sum *tidy.Table

	// The experiment files are independent; parse and summarize them
	// concurrently.
	var g errgroup.Group
	g.Go(func() error {
		n1, err := behaviorspace.ParseFinal(filepath.Join(inDir, "N1_ei_balance.csv"))
		if err != nil {
			return err
		}
		n1Sum, err = summary.SummarizeBy(n1, "INHIB-FRAC",
			[]string{"mean-firing-rate", "fano-factor", "synchrony-index"})
		return err
	})
	g.Go(func() error {
		n2, err := behaviorspace.ParseFinal(filepath.Join(inDir, "N2_phase_transition.csv"))
		if err != nil {
			return err
		}
		summary.DeriveBoolColumn(n2, "is-oscillating?", "oscillatory")
		n2Sum, err = summary.SummarizeBy(n2, "KAPPA-E",
			[]string{"mean-firing-rate", "spike-cv", "oscillatory"})
		return err
	})
	g.Go(func() error {
		var err error
		r1Sum, err = summarizeNetworkSize(filepath.Join(inDir, "R1_network_size.csv"))
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sheets := []excel.Sheet{
		{Name: "N1_EI_balance", Table: n1Sum},
		{Name: "N2_phase_transition", Table: n2Sum},
	}
	tidySheets := []excel.Sheet{
		{Name: "N1", Table: n1Sum},
		{Name: "N2", Table: n2Sum},
	}
	if r1Sum != nil {
		sheets = append(sheets, excel.Sheet{Name: "R1_network_size", Table: r1Sum})
		tidySheets = append(tidySheets, excel.Sheet{Name: "R1", Table: r1Sum})
	}

	xlsxPath := filepath.Join(outDir, "table_summaries.xlsx")
	if err := excel.WriteWorkbook(xlsxPath, sheets); err != nil {
		return err
	}
	if err := excel.WriteTidyCSV(filepath.Join(outDir, "table_summaries.csv"), tidySheets); err != nil {
		return err
	}
	log.Printf("[tables] wrote %s", xlsxPath)
	return nil
}

// summarizeNetworkSize handles the optional R1 experiment: the export may be
// missing entirely, and the varied parameter appears under two spellings.
// It returns (nil, nil) when the experiment cannot contribute a table.
func summarizeNetworkSize(path string) (*tidy.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	r1, err := behaviorspace.ParseFinal(path)
	if err != nil {
		return nil, err
	}
	by := "N-NODES"
	if !r1.HasColumn(by) {
		by = "N-NODES?"
		if !r1.HasColumn(by) {
			log.Printf("[tables] skipping R1: no N-NODES column in %s", path)
			return nil, nil
		}
	}
	r1Sum, err := summary.SummarizeBy(r1, by,
		[]string{"mean-firing-rate", "synchrony-index", "fano-factor", "active-neuron-fraction"})
	if err != nil {
		return nil, err
	}
	// Coefficient of variation for the firing rate, matching the
	// manuscript's Table 8 convention.
	for _, rec := range r1Sum.Records {
		mean, _ := rec.Get("mean-firing-rate_mean")
		sd, _ := rec.Get("mean-firing-rate_sd")
		m, okM := mean.Float64()
		s, okS := sd.Float64()
		if okM && okS {
			rec.Set("mean-firing-rate_cv_pct", tidy.NewFloatScalar(summary.CVPercent(m, s)))
		}
	}
	return r1Sum, nil
}
