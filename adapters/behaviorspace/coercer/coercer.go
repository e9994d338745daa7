// Package coercer converts raw export cells into typed scalars.
//
// Coercion is deliberately narrow: it implements exactly the conventions the
// BehaviorSpace spreadsheet export uses, nothing more. The check order
// matters — boolean and missing markers must be recognized before the
// numeric attempt, and the "." / "e" sniff keeps integer columns (run
// indices, tick counts) from being promoted to floating point.
package coercer

import (
	"strconv"
	"strings"

	"bspace/domain/tidy"
)

// Coerce deterministically converts one raw cell into a typed scalar.
// It is pure and total: ambiguous input falls back to text, never an error.
func Coerce(raw string) tidy.Scalar {
	s := strings.TrimSpace(raw)

	if s == "" {
		return tidy.NewAbsentScalar()
	}
	lower := strings.ToLower(s)
	switch lower {
	case "na", "nan":
		return tidy.NewAbsentScalar()
	case "true":
		return tidy.NewBoolScalar(true)
	case "false":
		return tidy.NewBoolScalar(false)
	}

	if strings.Contains(lower, ".") || strings.Contains(lower, "e") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return tidy.NewFloatScalar(f)
		}
		return tidy.NewTextScalar(s)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return tidy.NewIntScalar(n)
	}
	return tidy.NewTextScalar(s)
}
