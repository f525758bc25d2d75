package derived

import (
	"strings"

	"engcli/internal/table"
)

// SampleTimeHeader is the raw timestamp header of the telemetry logs
const SampleTimeHeader = "Sample Time"

// SplitTarget moves the columns whose header contains Keyword to Asset
type SplitTarget struct {
	Asset   string
	Keyword string
}

// Splitter separates logs that carry several engines in one file. It maps
// a source serial to its embedded engines.
type Splitter map[string][]SplitTarget

// Part is one engine's share of a split log
type Part struct {
	Asset string
	Table *table.Table
}

// DefaultSplitter returns the multi-engine logs known to the engine
func DefaultSplitter() Splitter {
	return Splitter{
		"S2K00384": {{"S1M06675", "Genset PS"}, {"S1M07112", "Genset ST"}},
		"S2K00386": {{"S1M06678", "Genset PS"}, {"S1M06672", "Genset ST"}},
		"RPM00819": {{"D1K01363", "C4.4"}},
	}
}

// Split returns one part per embedded engine followed by the remainder for
// the source asset. Targets are taken in order and each consumes its columns,
// so a header matching two keywords goes to the first. Logs of assets that
// are not multi-engine come back as a single part.
func (s Splitter) Split(asset string, raw *table.Table) []Part {
	targets, ok := s[asset]
	if !ok {
		return []Part{{Asset: asset, Table: raw}}
	}
	parts := make([]Part, 0, len(targets)+1)
	remaining := raw
	for _, target := range targets {
		taken := []string{SampleTimeHeader}
		var kept []string
		for _, name := range remaining.Names() {
			switch {
			case strings.Contains(name, target.Keyword):
				taken = append(taken, name)
			default:
				kept = append(kept, name)
			}
		}
		parts = append(parts, Part{Asset: target.Asset, Table: remaining.Select(taken)})
		remaining = remaining.Select(kept)
	}
	return append(parts, Part{Asset: asset, Table: remaining})
}
