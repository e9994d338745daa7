package behaviorspace

// Section markers emitted by the export tool. Matching is case-sensitive on
// the trimmed first cell of a row.
const (
	markerReporter   = "[reporter]"
	markerFinal      = "[final]"
	markerFinalValue = "[final value]"
	markerAllRunData = "[all run data]"
	markerStep       = "[step]"
)

// Layout identifies which export convention a file uses
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutReporterFinal
	LayoutFinalValue
	LayoutAllRunData
)

func (l Layout) String() string {
	switch l {
	case LayoutReporterFinal:
		return "reporter/final"
	case LayoutFinalValue:
		return "final value"
	case LayoutAllRunData:
		return "all run data"
	}
	return "unknown"
}

// findRow returns the index of the first row at or after from whose trimmed
// first cell equals marker, or -1
func findRow(rows [][]string, marker string, from int) int {
	for i := from; i < len(rows); i++ {
		if firstCell(rows[i]) == marker {
			return i
		}
	}
	return -1
}

// classify scans row labels once and reports which convention is present,
// in detection priority order, along with the header row index. It never
// guesses: an export with no recognized marker classifies as LayoutUnknown.
func classify(rows [][]string) (Layout, int) {
	if i := findRow(rows, markerReporter, 0); i >= 0 {
		return LayoutReporterFinal, i
	}
	if i := findRow(rows, markerFinalValue, 0); i >= 0 {
		return LayoutFinalValue, i
	}
	if i := findRow(rows, markerAllRunData, 0); i >= 0 {
		return LayoutAllRunData, i
	}
	return LayoutUnknown, -1
}
