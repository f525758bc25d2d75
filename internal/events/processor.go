package events

import (
	"context"
	"log/slog"

	"engcli/internal/cleaning"
	"engcli/internal/dataprocessing"
	"engcli/internal/store"
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// serialLength is the number of trailing sheet name characters that form
// the asset serial
const serialLength = 8

// Result is the merged events history and the units that were skipped
type Result struct {
	Events      *table.Table
	Units       int
	Diagnostics []domain.Diagnostic
}

// Processor reads unit sheets of an events workbook
type Processor struct {
	summarySheet string
	deny         cleaning.Denylist
	logger       *slog.Logger
}

// NewProcessor creates a processor reading the given summary sheet
func NewProcessor(summarySheet string, deny cleaning.Denylist, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{summarySheet: summarySheet, deny: deny, logger: logger}
}

// SerialFromSheet returns the asset serial encoded in a unit sheet name
func SerialFromSheet(name string) string {
	if len(name) <= serialLength {
		return name
	}
	return name[len(name)-serialLength:]
}

// Process merges every alerting unit of the workbook at path into prior.
// Units whose serial is not registered are skipped with a diagnostic.
func (p *Processor) Process(ctx context.Context, path string, assets *domain.AssetRegistry, prior *table.Table) (*Result, error) {
	wb, err := dataprocessing.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	units, err := dataprocessing.ReadEventUnits(wb, p.summarySheet)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	merged := prior
	if merged == nil {
		merged = table.Empty(domain.EventColumns...)
	}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		serial := SerialFromSheet(unit)
		if !assets.Contains(serial) {
			p.diagnose(ctx, res, serial, "asset not in registry")
			continue
		}

		sheet, err := dataprocessing.ReadEventSheet(wb, unit)
		if err != nil {
			return nil, err
		}

		events, ok := p.clean(sheet, serial)
		if !ok {
			p.diagnose(ctx, res, serial, "no Code column")
			continue
		}

		merged, err = store.Merge(merged, events)
		if err != nil {
			return nil, err
		}
		res.Units++

		p.logger.DebugContext(ctx, "Unit events merged",
			slog.String("asset", serial),
			slog.Int("rows", events.Len()))
	}

	res.Events = store.DedupRows(merged).SortBy(domain.EventColAsset, domain.EventColTimestamp)

	p.logger.InfoContext(ctx, "Events processed",
		slog.Int("units", res.Units),
		slog.Int("rows", res.Events.Len()),
		slog.Int("skipped", len(res.Diagnostics)))

	return res, nil
}

// clean scrubs denylisted values, drops events without a code, tags the
// asset and conforms the sheet to the events layout
func (p *Processor) clean(sheet *table.Table, serial string) (*table.Table, bool) {
	scrubbed := cleaning.Scrub(sheet, p.deny)

	code := scrubbed.Column(domain.EventColCode)
	if code == nil {
		return nil, false
	}
	coded := scrubbed.Filter(func(i int) bool { return !code.IsNull(i) })

	asset := make([]any, coded.Len())
	for i := range asset {
		asset[i] = serial
	}
	tagged := coded.MustWith(table.NewColumn(domain.EventColAsset, table.KindText, asset))

	return conform(tagged, domain.EventColumns), true
}

// conform selects names in order, adding null columns for absent ones
func conform(t *table.Table, names []string) *table.Table {
	cols := make([]*table.Column, len(names))
	for i, name := range names {
		if c := t.Column(name); c != nil {
			cols[i] = c
		} else {
			cols[i] = table.NullColumn(name, t.Len())
		}
	}
	return table.MustNew(cols...)
}

func (p *Processor) diagnose(ctx context.Context, res *Result, asset, reason string) {
	res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
		Asset:  asset,
		Stage:  domain.StageEvents,
		Reason: reason,
	})
	p.logger.WarnContext(ctx, "Events skipped",
		slog.String("asset", asset),
		slog.String("reason", reason))
}
