package events

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engcli/internal/cleaning"
	"engcli/internal/config"
	apperrors "engcli/internal/errors"
	"engcli/internal/shared/testutil"
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

var eventHeader = []any{"Sample Time", "Type", "Source", "Code", "Severity", "Description", "Vessel"}

func writeEvents(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.xlsx")
	testutil.WriteWorkbook(t, path,
		testutil.Sheet{Name: config.SheetEventSummary, Rows: [][]any{
			{"Unit Name", "High Severity Count", "Medium Severity Count", "Low Severity Count"},
			{"Boat 1 - AAAA0001", 1, 0, 1},
			{"Boat 2 - BBBB0002", 0, 0, 0},
			{"Boat 9 - ZZZZ9999", 0, 2, 0},
			{"Totals", 1, 2, 1},
		}},
		testutil.Sheet{Name: "Boat 1 - AAAA0001", Rows: [][]any{
			eventHeader,
			{"2024-03-01 10:00:00", "Event", "ECM", 111, "High", "Overspeed", "Boat 1"},
			{"2024-03-01 11:00:00", "Event", "ECM", nil, "Low", "No code", "Boat 1"},
			{"2024-03-01 09:00:00", "Diagnostic", "ECM", 222, "Low", "Test Alert", "Boat 1"},
			{"2024-03-01 10:00:00", "Event", "ECM", 111, "High", "Overspeed", "Boat 1"},
		}},
		testutil.Sheet{Name: "Boat 2 - BBBB0002", Rows: [][]any{
			eventHeader,
			{"2024-03-02 10:00:00", "Event", "ECM", 333, "High", "Never read", "Boat 2"},
		}},
	)
	return path
}

func registry() *domain.AssetRegistry {
	return domain.NewAssetRegistry([]domain.Asset{
		{Serial: "AAAA0001", Model: "C32"},
		{Serial: "BBBB0002", Model: "C32"},
	})
}

func TestSerialFromSheet(t *testing.T) {
	tests := map[string]string{
		"Boat 1 - AAAA0001": "AAAA0001",
		"AAAA0001":          "AAAA0001",
		"short":             "short",
	}
	for name, want := range tests {
		assert.Equal(t, want, SerialFromSheet(name))
	}
}

func TestProcess(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	deny := cleaning.NewDenylist([]any{"Test Alert"})
	p := NewProcessor(config.SheetEventSummary, deny, logger)

	res, err := p.Process(context.Background(), writeEvents(t), registry(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Units, "only alerting registered units are read")
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.Diagnostic{Asset: "ZZZZ9999", Stage: domain.StageEvents, Reason: "asset not in registry"}, res.Diagnostics[0])
	assert.True(t, handler.ContainsMessage("Events skipped"))

	ev := res.Events
	assert.Equal(t, domain.EventColumns, ev.Names())
	require.Equal(t, 2, ev.Len(), "the duplicate row and the row without a code are dropped")

	first, _ := ev.Column(domain.EventColTimestamp).Time(0)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), first)
	assert.Nil(t, ev.Value(domain.EventColDescription, 0), "denylisted text is scrubbed")
	assert.Equal(t, 222.0, ev.Value(domain.EventColCode, 0))
	assert.Equal(t, "Overspeed", ev.Value(domain.EventColDescription, 1))
	assert.Equal(t, "AAAA0001", ev.Value(domain.EventColAsset, 1))
}

func TestProcessMergesPrior(t *testing.T) {
	prior := table.MustNew(
		table.TimeColumn(domain.EventColTimestamp, []time.Time{
			time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		}),
		table.TextColumn(domain.EventColType, []string{"Event", "Event"}),
		table.TextColumn(domain.EventColSource, []string{"ECM", "ECM"}),
		table.FloatColumn(domain.EventColCode, []float64{111, 999}),
		table.TextColumn(domain.EventColSeverity, []string{"High", "Low"}),
		table.TextColumn(domain.EventColDescription, []string{"Overspeed", "Old"}),
		table.TextColumn(domain.EventColAsset, []string{"AAAA0001", "AAAA0001"}),
	)

	p := NewProcessor(config.SheetEventSummary, cleaning.Denylist{}, nil)
	res, err := p.Process(context.Background(), writeEvents(t), registry(), prior)
	require.NoError(t, err)

	require.Equal(t, 3, res.Events.Len(), "the prior copy of the Overspeed event is deduplicated")
	assert.Equal(t, "Old", res.Events.Value(domain.EventColDescription, 0))
}

func TestProcessMissingWorkbook(t *testing.T) {
	p := NewProcessor(config.SheetEventSummary, cleaning.Denylist{}, nil)
	_, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), registry(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestProcessMissingSummaryColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: config.SheetEventSummary, Rows: [][]any{
		{"Unit Name", "High Severity Count"},
	}})

	p := NewProcessor(config.SheetEventSummary, cleaning.Denylist{}, nil)
	_, err := p.Process(context.Background(), path, registry(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}
