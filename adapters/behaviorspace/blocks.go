package behaviorspace

import (
	"log"
	"strings"

	"bspace/adapters/behaviorspace/coercer"
	"bspace/domain/tidy"
)

// stepOffsets returns every header position whose trimmed label is [step].
// These are the block start offsets within a wide row.
func stepOffsets(header []string) []int {
	var offsets []int
	for i, h := range header {
		if strings.TrimSpace(h) == markerStep {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

// blockWidth infers the width of every block from the marker offsets. With
// two or more markers the width is the distance between the first two; with
// one it is the remaining header length. The export format guarantees a
// uniform width per row: every run reports the same reporters.
func blockWidth(offsets []int, headerLen int) int {
	if len(offsets) >= 2 {
		return offsets[1] - offsets[0]
	}
	return headerLen - offsets[0]
}

// blockRecord builds one record from the block starting at offset start.
// Labels and values zip positionally to the shorter of the two slices, so a
// value row shorter than the header yields absent trailing fields rather
// than an error. Blank labels are padding and are skipped. Duplicate labels
// within a block keep the last value; the collision is logged because it
// usually means the upstream export format changed.
func blockRecord(header, values []string, start, width int) *tidy.Record {
	end := start + width
	if end > len(header) {
		end = len(header)
	}

	rec := tidy.NewRecord()
	for i := start; i < end; i++ {
		key := strings.TrimSpace(header[i])
		if key == "" {
			continue
		}
		raw := ""
		if i < len(values) {
			raw = values[i]
		}
		if rec.Set(key, coercer.Coerce(raw)) {
			log.Printf("[behaviorspace] duplicate label %q in block at offset %d; keeping last value", key, start)
		}
	}
	return rec
}

// segmentRow slices one aligned header/value pair into blocks and emits one
// record per block, in ascending offset order
func segmentRow(header, values []string, offsets []int, width int) []*tidy.Record {
	records := make([]*tidy.Record, 0, len(offsets))
	for _, start := range offsets {
		records = append(records, blockRecord(header, values, start, width))
	}
	return records
}
