// Package figures builds the data series behind the manuscript's
// data-driven figures (Figures 2-10): grouped means with 95% interval
// half-widths, plus the analytic theory curves they are compared against.
// Each series is written as one tidy CSV; chart rendering happens elsewhere.
package figures

import (
	"log"
	"math"
	"os"
	"path/filepath"

	"bspace/adapters/behaviorspace"
	"bspace/adapters/excel"
	"bspace/domain/tidy"
	apperrors "bspace/internal/errors"
	"bspace/internal/summary"
)

// Energy-decay model constants for the V2 verification experiment.
const (
	decayRho = 0.01
	decayE0  = 5.0
)

// Series names one figure's data file and how to build it
type Series struct {
	Name     string
	File     string
	Optional bool
	Build    func(inDir string) (*tidy.Table, error)
}

// All returns every figure series in manuscript order
func All() []Series {
	return []Series{
		{Name: "V1 chain speed", File: "Fig02_V1_chain_speed_reproduced.csv", Build: v1ChainSpeed},
		{Name: "V2 energy decay", File: "Fig03_V2_energy_decay_reproduced.csv", Build: v2EnergyDecay},
		{Name: "M1 threshold bifurcation", File: "Fig04_M1_threshold_bifurcation_reproduced.csv", Build: m1Threshold},
		{Name: "M2 refractory", File: "Fig05_M2_refractory_reproduced.csv", Build: m2Refractory},
		{Name: "N1 EI balance", File: "Fig06_N1_ei_balance_reproduced.csv", Build: n1Balance},
		{Name: "N2 regime shift", File: "Fig07_N2_regime_shift_reproduced.csv", Build: n2RegimeShift},
		{Name: "GSA effect sizes", File: "Fig08_GSA_effect_sizes_reproduced.csv", Build: gsaEffectSizes},
		{Name: "R1 network size", File: "Fig09_R1_network_size_reproduced.csv", Optional: true, Build: r1NetworkSize},
		{Name: "R2 plasticity convergence", File: "Fig10_R2_plasticity_convergence_reproduced.csv", Build: r2Plasticity},
	}
}

// WriteAll builds every series from the raw exports in inDir and writes the
// CSVs into outDir. Optional series whose input export is absent are skipped
// with a log line; anything else failing aborts the run.
func WriteAll(inDir, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, s := range All() {
		table, err := s.Build(inDir)
		if err != nil {
			if s.Optional && apperrors.HasCode(err, apperrors.CodeNotFound) {
				log.Printf("[figures] skipping %s: %v", s.Name, err)
				continue
			}
			return apperrors.Wrapf(err, "build series %q", s.Name)
		}
		path := filepath.Join(outDir, s.File)
		if err := excel.WriteCSV(path, table); err != nil {
			return apperrors.Wrapf(err, "write series %q", s.Name)
		}
		log.Printf("[figures] wrote %s (%d rows)", path, table.Len())
	}
	return nil
}

// groupedSeries parses a final-value export and summarizes one metric over
// one parameter, optionally appending a theory column computed from the
// parameter level
func groupedSeries(path, by, metric string, theory func(x float64) float64) (*tidy.Table, error) {
	df, err := behaviorspace.ParseFinal(path)
	if err != nil {
		return nil, err
	}
	g, err := summary.SummarizeBy(df, by, []string{metric})
	if err != nil {
		return nil, err
	}
	if theory != nil {
		for _, rec := range g.Records {
			level, _ := rec.Get(by)
			if x, ok := level.Float64(); ok {
				rec.Set("theory", tidy.NewFloatScalar(theory(x)))
			} else {
				rec.Set("theory", tidy.NewAbsentScalar())
			}
		}
	}
	return g, nil
}

func v1ChainSpeed(inDir string) (*tidy.Table, error) {
	return groupedSeries(filepath.Join(inDir, "V1_chain_delay.csv"),
		"FIXED-DELAY", "chain-speed", func(x float64) float64 { return 1.0 / x })
}

func v2EnergyDecay(inDir string) (*tidy.Table, error) {
	df, err := behaviorspace.ParseAllRunData(filepath.Join(inDir, "V2_energy_decay.csv"))
	if err != nil {
		return nil, err
	}
	g, err := summary.SummarizeBy(df, "ticks", []string{"decay-E-current"})
	if err != nil {
		return nil, err
	}
	for _, rec := range g.Records {
		level, _ := rec.Get("ticks")
		if t, ok := level.Float64(); ok {
			rec.Set("theory", tidy.NewFloatScalar(decayE0*math.Pow(1-decayRho, t)))
		}
	}
	return g, nil
}

func m1Threshold(inDir string) (*tidy.Table, error) {
	return groupedSeries(filepath.Join(inDir, "M1_threshold_bifurcation.csv"),
		"STIM-AMP", "mean-firing-rate", nil)
}

func m2Refractory(inDir string) (*tidy.Table, error) {
	return groupedSeries(filepath.Join(inDir, "M2_refractory.csv"),
		"POp", "global-min-isi", func(x float64) float64 { return x + 1 })
}

func n1Balance(inDir string) (*tidy.Table, error) {
	return groupedSeries(filepath.Join(inDir, "N1_ei_balance.csv"),
		"INHIB-FRAC", "mean-firing-rate", nil)
}

// n2RegimeShift covers both panels of the N2 figure: spike-count CV and the
// fraction of oscillatory-like runs, per coupling level
func n2RegimeShift(inDir string) (*tidy.Table, error) {
	df, err := behaviorspace.ParseFinal(filepath.Join(inDir, "N2_phase_transition.csv"))
	if err != nil {
		return nil, err
	}
	summary.DeriveBoolColumn(df, "is-oscillating?", "oscillatory")

	g, err := summary.SummarizeBy(df, "KAPPA-E", []string{"mean-firing-rate", "spike-cv", "oscillatory"})
	if err != nil {
		return nil, err
	}
	for _, rec := range g.Records {
		if frac, ok := rec.Get("oscillatory_mean"); ok {
			if f, ok := frac.Float64(); ok {
				rec.Set("oscillatory_pct", tidy.NewFloatScalar(100*f))
			}
		}
	}
	return g, nil
}

func gsaEffectSizes(inDir string) (*tidy.Table, error) {
	df, err := behaviorspace.ParseFinal(filepath.Join(inDir, "GSA_sensitivity.csv"))
	if err != nil {
		return nil, err
	}
	outcomes := []summary.Outcome{
		{Label: "FR", Column: "mean-firing-rate"},
		{Label: "Spikes", Column: "final-total-spikes"},
		{Label: "Active", Column: "active-neuron-fraction"},
		{Label: "Synchrony", Column: "synchrony-index"},
		{Label: "Mean weight", Column: "mean-weight"},
	}
	return summary.EffectSizes(df, outcomes, []string{"KAPPA-E", "RHO", "THRESHOLD"})
}

// r1NetworkSize is optional: older exports lack the experiment, and the
// varied parameter appears under two spellings
func r1NetworkSize(inDir string) (*tidy.Table, error) {
	path := filepath.Join(inDir, "R1_network_size.csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NotFound(path)
	}
	df, err := behaviorspace.ParseFinal(path)
	if err != nil {
		return nil, err
	}
	by := "N-NODES"
	if !df.HasColumn(by) {
		by = "N-NODES?"
		if !df.HasColumn(by) {
			return nil, apperrors.NotFound("N-NODES column")
		}
	}
	return summary.SummarizeBy(df, by, []string{"mean-firing-rate"})
}

func r2Plasticity(inDir string) (*tidy.Table, error) {
	df, err := behaviorspace.ParseAllRunData(filepath.Join(inDir, "R2_plasticity.csv"))
	if err != nil {
		return nil, err
	}
	return summary.SummarizeBy(df, "ticks", []string{"mean-weight"})
}
