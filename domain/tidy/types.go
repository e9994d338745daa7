// Package tidy defines the normalized row-per-observation table produced by
// the export parsers: typed scalars, insertion-ordered records, and the table
// helpers the summary and output layers build on.
package tidy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ScalarType defines the storage type for coerced cell values
type ScalarType string

const (
	ScalarTypeAbsent ScalarType = "absent"
	ScalarTypeBool   ScalarType = "bool"
	ScalarTypeInt    ScalarType = "int"
	ScalarTypeFloat  ScalarType = "float"
	ScalarTypeText   ScalarType = "text"
)

// Scalar is a typed cell value. Exactly one of the value fields is set,
// according to Type; an absent scalar sets none.
type Scalar struct {
	Type     ScalarType `json:"type"`
	BoolVal  *bool      `json:"bool_val,omitempty"`
	IntVal   *int64     `json:"int_val,omitempty"`
	FloatVal *float64   `json:"float_val,omitempty"`
	TextVal  *string    `json:"text_val,omitempty"`
}

// NewAbsentScalar creates an absent (missing/NA) scalar
func NewAbsentScalar() Scalar {
	return Scalar{Type: ScalarTypeAbsent}
}

// NewBoolScalar creates a boolean scalar
func NewBoolScalar(b bool) Scalar {
	return Scalar{Type: ScalarTypeBool, BoolVal: &b}
}

// NewIntScalar creates an integer scalar
func NewIntScalar(n int64) Scalar {
	return Scalar{Type: ScalarTypeInt, IntVal: &n}
}

// NewFloatScalar creates a floating-point scalar
func NewFloatScalar(f float64) Scalar {
	return Scalar{Type: ScalarTypeFloat, FloatVal: &f}
}

// NewTextScalar creates a text scalar
func NewTextScalar(s string) Scalar {
	return Scalar{Type: ScalarTypeText, TextVal: &s}
}

// IsAbsent returns true for the absent scalar
func (s Scalar) IsAbsent() bool {
	return s.Type == ScalarTypeAbsent
}

// IsNumeric returns true for integer and floating-point scalars
func (s Scalar) IsNumeric() bool {
	return s.Type == ScalarTypeInt || s.Type == ScalarTypeFloat
}

// Float64 returns the numeric value of the scalar. Integers promote to
// float64; every other type reports ok=false.
func (s Scalar) Float64() (float64, bool) {
	switch s.Type {
	case ScalarTypeInt:
		if s.IntVal != nil {
			return float64(*s.IntVal), true
		}
	case ScalarTypeFloat:
		if s.FloatVal != nil {
			return *s.FloatVal, true
		}
	}
	return 0, false
}

// String renders the scalar the way the output writers print it
func (s Scalar) String() string {
	switch s.Type {
	case ScalarTypeBool:
		if s.BoolVal != nil {
			return strconv.FormatBool(*s.BoolVal)
		}
	case ScalarTypeInt:
		if s.IntVal != nil {
			return strconv.FormatInt(*s.IntVal, 10)
		}
	case ScalarTypeFloat:
		if s.FloatVal != nil {
			return strconv.FormatFloat(*s.FloatVal, 'g', -1, 64)
		}
	case ScalarTypeText:
		if s.TextVal != nil {
			return *s.TextVal
		}
	case ScalarTypeAbsent:
		return ""
	}
	return ""
}

// GoString implements fmt.GoStringer so test failures print readable scalars
func (s Scalar) GoString() string {
	if s.IsAbsent() {
		return "tidy.Absent"
	}
	return fmt.Sprintf("tidy.%s(%s)", s.Type, s.String())
}

// Record is an insertion-ordered mapping from column label to scalar.
// Setting an existing key overwrites the value but keeps the key's
// original position, so identical input always serializes identically.
type Record struct {
	keys   []string
	values map[string]Scalar
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]Scalar)}
}

// Set stores a value under key, reporting whether the key already existed
func (r *Record) Set(key string, v Scalar) (overwrote bool) {
	if _, ok := r.values[key]; ok {
		r.values[key] = v
		return true
	}
	r.keys = append(r.keys, key)
	r.values[key] = v
	return false
}

// Get looks up a column by name
func (r *Record) Get(key string) (Scalar, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the record carries the named column
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the column labels in insertion order
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns in the record
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON renders the record as a JSON object with keys in insertion
// order. Absent cells and NaN floats marshal as null.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].jsonValue()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Scalar) jsonValue() ([]byte, error) {
	switch s.Type {
	case ScalarTypeBool:
		if s.BoolVal != nil {
			return json.Marshal(*s.BoolVal)
		}
	case ScalarTypeInt:
		if s.IntVal != nil {
			return json.Marshal(*s.IntVal)
		}
	case ScalarTypeFloat:
		if s.FloatVal != nil && !math.IsNaN(*s.FloatVal) && !math.IsInf(*s.FloatVal, 0) {
			return json.Marshal(*s.FloatVal)
		}
	case ScalarTypeText:
		if s.TextVal != nil {
			return json.Marshal(*s.TextVal)
		}
	}
	return []byte("null"), nil
}

// Table is an ordered sequence of records, one per observation
type Table struct {
	Records []*Record
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// Append adds a record to the end of the table
func (t *Table) Append(r *Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Records)
}

// Columns returns every column label observed across the table, in order
// of first appearance
func (t *Table) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Records {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// HasColumn reports whether any record carries the named column
func (t *Table) HasColumn(name string) bool {
	for _, r := range t.Records {
		if r.Has(name) {
			return true
		}
	}
	return false
}

// Column returns the named column across all records; records without the
// column contribute an absent scalar
func (t *Table) Column(name string) []Scalar {
	out := make([]Scalar, 0, len(t.Records))
	for _, r := range t.Records {
		v, ok := r.Get(name)
		if !ok {
			v = NewAbsentScalar()
		}
		out = append(out, v)
	}
	return out
}

// Float64s returns the numeric values of the named column, dropping
// absent and non-numeric cells
func (t *Table) Float64s(name string) []float64 {
	var out []float64
	for _, r := range t.Records {
		if v, ok := r.Get(name); ok {
			if f, ok := v.Float64(); ok {
				out = append(out, f)
			}
		}
	}
	return out
}
