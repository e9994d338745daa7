// Package summary aggregates tidy tables into the grouped statistics the
// manuscript tables and figure series are built from.
package summary

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"bspace/domain/tidy"
	apperrors "bspace/internal/errors"
)

// z for a two-sided 95% normal interval
var z95 = distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.975)

// MeanSDCI returns the mean, sample standard deviation, and 95% confidence
// half-width of xs. Empty input yields a NaN triple; a single observation
// yields sd = ci = 0.
func MeanSDCI(xs []float64) (mean, sd, ci float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	mean, _ = stats.Mean(xs)
	if len(xs) < 2 {
		return mean, 0, 0
	}
	sd, _ = stats.StandardDeviationSample(xs)
	ci = z95 * sd / math.Sqrt(float64(len(xs)))
	return mean, sd, ci
}

// CVPercent returns the coefficient of variation (sd over mean) in percent,
// or NaN when the mean is zero
func CVPercent(mean, sd float64) float64 {
	if mean == 0 {
		return math.NaN()
	}
	return 100 * sd / mean
}

// DeriveBoolColumn adds dst to every record carrying src, mapping boolean
// true/false to 1/0. Records without src, or with a non-boolean src, get an
// absent dst so their shape stays uniform.
func DeriveBoolColumn(t *tidy.Table, src, dst string) {
	for _, rec := range t.Records {
		v, ok := rec.Get(src)
		if ok && v.Type == tidy.ScalarTypeBool && v.BoolVal != nil {
			f := 0.0
			if *v.BoolVal {
				f = 1.0
			}
			rec.Set(dst, tidy.NewFloatScalar(f))
			continue
		}
		rec.Set(dst, tidy.NewAbsentScalar())
	}
}

type group struct {
	level tidy.Scalar
	size  int
	xs    map[string][]float64
}

// SummarizeBy groups t by the given column and emits one record per level,
// carrying n plus <metric>_mean, <metric>_sd and <metric>_ci95 for every
// metric. Levels sort numerically when every level is numeric, lexically
// otherwise, so the output order is reproducible.
func SummarizeBy(t *tidy.Table, by string, metrics []string) (*tidy.Table, error) {
	if !t.HasColumn(by) {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "grouping column %q not found", by)
	}

	groups := make(map[string]*group)
	var order []string
	for _, rec := range t.Records {
		level, ok := rec.Get(by)
		if !ok || level.IsAbsent() {
			continue
		}
		key := level.String()
		g, ok := groups[key]
		if !ok {
			g = &group{level: level, xs: make(map[string][]float64)}
			groups[key] = g
			order = append(order, key)
		}
		g.size++
		for _, m := range metrics {
			if v, ok := rec.Get(m); ok {
				if f, ok := v.Float64(); ok && !math.IsNaN(f) {
					g.xs[m] = append(g.xs[m], f)
				}
			}
		}
	}

	sortLevels(order, groups)

	out := tidy.NewTable()
	for _, key := range order {
		g := groups[key]
		rec := tidy.NewRecord()
		rec.Set(by, g.level)
		rec.Set("n", tidy.NewIntScalar(int64(g.size)))
		for _, m := range metrics {
			mean, sd, ci := MeanSDCI(g.xs[m])
			rec.Set(m+"_mean", tidy.NewFloatScalar(mean))
			rec.Set(m+"_sd", tidy.NewFloatScalar(sd))
			rec.Set(m+"_ci95", tidy.NewFloatScalar(ci))
		}
		out.Append(rec)
	}
	return out, nil
}

// sortLevels orders level keys numerically when every level parses as a
// number, lexically otherwise
func sortLevels(order []string, groups map[string]*group) {
	numeric := true
	nums := make(map[string]float64, len(order))
	for _, key := range order {
		f, ok := groups[key].level.Float64()
		if !ok {
			var err error
			f, err = strconv.ParseFloat(key, 64)
			if err != nil {
				numeric = false
				break
			}
		}
		nums[key] = f
	}
	sort.SliceStable(order, func(i, j int) bool {
		if numeric {
			return nums[order[i]] < nums[order[j]]
		}
		return order[i] < order[j]
	})
}

// Outcome names one output column for the effect-size computation
type Outcome struct {
	Label  string
	Column string
}

// EffectSizes computes, for every (outcome, parameter) pair, the main effect
// size: the spread of the per-level means of the outcome across the
// parameter's levels, normalized by the outcome's grand mean, in percent.
// A zero grand mean yields NaN for that outcome.
func EffectSizes(t *tidy.Table, outcomes []Outcome, params []string) (*tidy.Table, error) {
	out := tidy.NewTable()
	for _, oc := range outcomes {
		xs := t.Float64s(oc.Column)
		grand, _ := stats.Mean(xs)
		for _, p := range params {
			perLevel, err := SummarizeBy(t, p, []string{oc.Column})
			if err != nil {
				return nil, err
			}
			means := perLevel.Float64s(oc.Column + "_mean")
			es := math.NaN()
			if len(means) > 0 && grand != 0 {
				lo, _ := stats.Min(means)
				hi, _ := stats.Max(means)
				es = (hi - lo) / grand * 100
			}
			rec := tidy.NewRecord()
			rec.Set("outcome", tidy.NewTextScalar(oc.Label))
			rec.Set("param", tidy.NewTextScalar(p))
			rec.Set("effect_pct", tidy.NewFloatScalar(es))
			out.Append(rec)
		}
	}
	return out, nil
}
