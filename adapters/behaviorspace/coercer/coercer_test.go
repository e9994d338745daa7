package coercer

import (
	"testing"

	"bspace/domain/tidy"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want tidy.Scalar
	}{
		{"empty is absent", "", tidy.NewAbsentScalar()},
		{"whitespace is absent", "   ", tidy.NewAbsentScalar()},
		{"na is absent", "na", tidy.NewAbsentScalar()},
		{"NA is absent", "NA", tidy.NewAbsentScalar()},
		{"NaN is absent", "NaN", tidy.NewAbsentScalar()},
		{"true is bool", "true", tidy.NewBoolScalar(true)},
		{"TRUE is bool", "TRUE", tidy.NewBoolScalar(true)},
		{"false is bool", "false", tidy.NewBoolScalar(false)},
		{"False is bool", "False", tidy.NewBoolScalar(false)},
		{"plain integer", "3", tidy.NewIntScalar(3)},
		{"negative integer", "-42", tidy.NewIntScalar(-42)},
		{"decimal is float", "3.0", tidy.NewFloatScalar(3.0)},
		{"scientific is float", "3e2", tidy.NewFloatScalar(300.0)},
		{"upper scientific is float", "1.5E-3", tidy.NewFloatScalar(0.0015)},
		{"text stays text", "abc", tidy.NewTextScalar("abc")},
		{"e-bearing non-number is text", "abe", tidy.NewTextScalar("abe")},
		{"dot-bearing non-number is text", "v1.2.3", tidy.NewTextScalar("v1.2.3")},
		{"digit prefix is text", "12px", tidy.NewTextScalar("12px")},
		{"trims before typing", " 7 ", tidy.NewIntScalar(7)},
		{"trimmed text fallback", "  hello world  ", tidy.NewTextScalar("hello world")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.in)
			if got.Type != tt.want.Type {
				t.Fatalf("Coerce(%q) type = %s, want %s", tt.in, got.Type, tt.want.Type)
			}
			if got.String() != tt.want.String() {
				t.Fatalf("Coerce(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceKeepsIntegersIntegral(t *testing.T) {
	// Run indices must survive as integers; a universal float-first parse
	// would silently promote them.
	got := Coerce("12")
	if got.Type != tidy.ScalarTypeInt {
		t.Fatalf("Coerce(\"12\") type = %s, want %s", got.Type, tidy.ScalarTypeInt)
	}
	if f, ok := got.Float64(); !ok || f != 12 {
		t.Fatalf("Float64() = %v, %v; want 12, true", f, ok)
	}
}

func TestCoerceIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		a := Coerce("3.25")
		b := Coerce("3.25")
		if a.String() != b.String() || a.Type != b.Type {
			t.Fatalf("coercion not deterministic: %#v vs %#v", a, b)
		}
	}
}
