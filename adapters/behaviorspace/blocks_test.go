package behaviorspace

import (
	"reflect"
	"testing"

	"bspace/domain/tidy"
)

func TestStepOffsets(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []int
	}{
		{
			name:   "repeated markers",
			header: []string{"a", "b", "[step]", "x", "y", "z", "w", "u", "v", "[step]", "x", "y", "z", "w", "u", "v", "[step]", "x"},
			want:   []int{2, 9, 16},
		},
		{
			name:   "single marker",
			header: []string{"[step]", "x", "y"},
			want:   []int{0},
		},
		{
			name:   "marker needs trimming",
			header: []string{" [step] ", "x", "[step]", "y"},
			want:   []int{0, 2},
		},
		{
			name:   "no markers",
			header: []string{"a", "b", "c"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stepOffsets(tt.header)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("stepOffsets(%v) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestBlockWidth(t *testing.T) {
	// Two or more markers: distance between the first two.
	if w := blockWidth([]int{2, 9, 16}, 18); w != 7 {
		t.Fatalf("blockWidth = %d, want 7", w)
	}
	// Single marker: remainder of the header.
	if w := blockWidth([]int{3}, 10); w != 7 {
		t.Fatalf("blockWidth single marker = %d, want 7", w)
	}
}

func TestSegmentRowUniformBlocks(t *testing.T) {
	header := []string{"[step]", "x", "y", "[step]", "x", "y"}
	values := []string{"1", "10", "20", "2", "11", "21"}
	offsets := stepOffsets(header)

	records := segmentRow(header, values, offsets, blockWidth(offsets, len(header)))
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	wantSteps := []int64{1, 2}
	wantX := []int64{10, 11}
	for i, rec := range records {
		step, ok := rec.Get("[step]")
		if !ok || step.IntVal == nil || *step.IntVal != wantSteps[i] {
			t.Fatalf("record %d: [step] = %#v, want %d", i, step, wantSteps[i])
		}
		x, ok := rec.Get("x")
		if !ok || x.IntVal == nil || *x.IntVal != wantX[i] {
			t.Fatalf("record %d: x = %#v, want %d", i, x, wantX[i])
		}
	}
}

func TestSegmentRowShortFinalBlock(t *testing.T) {
	// Header shorter than a full final block yields a narrower block,
	// never an error.
	header := []string{"[step]", "x", "y", "[step]", "x"}
	values := []string{"1", "10", "20", "2", "11"}
	offsets := stepOffsets(header)

	records := segmentRow(header, values, offsets, blockWidth(offsets, len(header)))
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Len() != 2 {
		t.Fatalf("final block has %d columns, want 2", records[1].Len())
	}
	if records[1].Has("y") {
		t.Fatal("final block should not carry column y")
	}
}

func TestBlockRecordShortValueRow(t *testing.T) {
	// Missing trailing values become absent fields, not errors.
	header := []string{"[step]", "x", "y"}
	values := []string{"1", "10"}

	rec := blockRecord(header, values, 0, 3)
	y, ok := rec.Get("y")
	if !ok {
		t.Fatal("column y missing from record")
	}
	if !y.IsAbsent() {
		t.Fatalf("y = %#v, want absent", y)
	}
}

func TestBlockRecordSkipsBlankLabels(t *testing.T) {
	header := []string{"[step]", "", "y", "  "}
	values := []string{"1", "ignored", "20", "also ignored"}

	rec := blockRecord(header, values, 0, 4)
	if rec.Len() != 2 {
		t.Fatalf("record has %d columns, want 2 (blank labels dropped)", rec.Len())
	}
	if got := rec.Keys(); got[0] != "[step]" || got[1] != "y" {
		t.Fatalf("keys = %v", got)
	}
}

func TestBlockRecordDuplicateLabelLastWins(t *testing.T) {
	header := []string{"[step]", "x", "x"}
	values := []string{"1", "first", "second"}

	rec := blockRecord(header, values, 0, 3)
	if rec.Len() != 2 {
		t.Fatalf("record has %d columns, want 2", rec.Len())
	}
	x, _ := rec.Get("x")
	if x.Type != tidy.ScalarTypeText || *x.TextVal != "second" {
		t.Fatalf("x = %#v, want text \"second\"", x)
	}
	// Overwriting keeps the key's original position.
	if got := rec.Keys(); got[1] != "x" {
		t.Fatalf("keys = %v, want x second", got)
	}
}
