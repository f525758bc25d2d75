package harmonize

import (
	"context"
	"fmt"
	"log/slog"

	"engcli/internal/table"
)

// Report describes what harmonization did to one asset's raw table.
type Report struct {
	Asset string
	// Mapping holds raw name to canonical name for every renamed column
	Mapping map[string]string
	// Added lists canonical columns that were absent and filled with nulls
	Added []string
	// Missing lists the added columns that belong to the essential set
	Missing []string
}

// Harmonizer renames raw telemetry headers to the canonical vocabulary.
// It holds only read-only lookup tables and is safe to reuse across assets.
type Harmonizer struct {
	synonyms  SynonymTable
	overrides Overrides
	essential map[string]bool
	logger    *slog.Logger
}

// New creates a Harmonizer. A nil essential slice uses DefaultEssential.
func New(synonyms SynonymTable, overrides Overrides, essential []string, logger *slog.Logger) *Harmonizer {
	if logger == nil {
		logger = slog.Default()
	}
	if essential == nil {
		essential = DefaultEssential
	}
	ess := make(map[string]bool, len(essential))
	for _, e := range essential {
		ess[e] = true
	}
	if overrides == nil {
		overrides = Overrides{}
	}
	return &Harmonizer{
		synonyms:  synonyms,
		overrides: overrides,
		essential: ess,
		logger:    logger,
	}
}

// Canonical returns the canonical column names in vocabulary order
func (h *Harmonizer) Canonical() []string {
	return h.synonyms.Canonical()
}

// Harmonize maps the raw columns of one asset onto canonical names.
//
// Overrides of the asset whose raw column exists are applied first and
// satisfy their target. Each remaining canonical name is satisfied by a raw
// column already carrying it, else by the first listed synonym present.
// Unsatisfied canonical names are added as all-null columns. Columns that
// match nothing keep their raw names.
func (h *Harmonizer) Harmonize(ctx context.Context, raw *table.Table, asset string) (*table.Table, Report, error) {
	report := Report{Asset: asset, Mapping: make(map[string]string)}

	satisfied := make(map[string]bool)
	consumed := make(map[string]bool)
	var drop []string

	for _, o := range h.overrides[asset] {
		if !raw.Has(o.Raw) || consumed[o.Raw] || satisfied[o.Canonical] {
			continue
		}
		consumed[o.Raw] = true
		satisfied[o.Canonical] = true
		if o.Raw == o.Canonical {
			continue
		}
		report.Mapping[o.Raw] = o.Canonical
		// an unrelated column already named like the target loses to the override
		if raw.Has(o.Canonical) && !consumed[o.Canonical] {
			drop = append(drop, o.Canonical)
			consumed[o.Canonical] = true
		}
	}

	for _, syn := range h.synonyms {
		if satisfied[syn.Canonical] {
			continue
		}
		if raw.Has(syn.Canonical) && !consumed[syn.Canonical] {
			satisfied[syn.Canonical] = true
			consumed[syn.Canonical] = true
			continue
		}
		for _, src := range syn.Sources {
			if raw.Has(src) && !consumed[src] {
				report.Mapping[src] = syn.Canonical
				consumed[src] = true
				satisfied[syn.Canonical] = true
				break
			}
		}
	}

	out, err := raw.Drop(drop...).Rename(report.Mapping)
	if err != nil {
		return nil, report, fmt.Errorf("harmonize asset %s: %w", asset, err)
	}

	for _, syn := range h.synonyms {
		if satisfied[syn.Canonical] {
			continue
		}
		out = out.MustWith(table.NullColumn(syn.Canonical, out.Len()))
		report.Added = append(report.Added, syn.Canonical)
		if h.essential[syn.Canonical] {
			report.Missing = append(report.Missing, syn.Canonical)
		}
	}

	if len(report.Missing) > 0 {
		h.logger.WarnContext(ctx, "essential columns not found for asset, check the rename overrides",
			slog.String("asset", asset),
			slog.Any("missing", report.Missing))
	}

	return out, report, nil
}
