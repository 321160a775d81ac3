package history

import (
	"strings"
	"testing"
	"time"

	"github.com/averlow/healthdash/internal/app"
	"github.com/averlow/healthdash/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func TestMergeRowsJoinsByDay(t *testing.T) {
	d1 := day(2026, 6, 1)
	d2 := day(2026, 6, 2)

	metrics := []models.DailyMetric{
		{Day: d1, Steps: models.Int64Ptr(9000)},
		{Day: d2, Weight: models.Float64Ptr(180)},
	}
	spend := []models.DailySpendSummary{
		{Day: d2, TotalAmount: 45.50, OrderCount: 2},
		{Day: day(2026, 6, 3), TotalAmount: 12.00, OrderCount: 1},
	}

	rows := mergeRows(metrics, spend)
	if len(rows) != 3 {
		t.Fatalf("expected 3 merged rows, got %d", len(rows))
	}

	// Newest first.
	if !rows[0].day.Equal(day(2026, 6, 3)) {
		t.Errorf("expected newest row first, got %v", rows[0].day)
	}

	// d2 carries both sources.
	if rows[1].metric == nil || rows[1].spend == nil {
		t.Error("expected middle row to have both metric and spend")
	}
	if rows[2].spend != nil {
		t.Error("expected oldest row to have no spend")
	}
}

func TestViewRendersRows(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)

	m.rows = mergeRows(
		[]models.DailyMetric{{
			Day:          day(2026, 6, 2),
			Weight:       models.Float64Ptr(181.5),
			Steps:        models.Int64Ptr(10500),
			SleepMinutes: models.Float64Ptr(450),
		}},
		[]models.DailySpendSummary{{Day: day(2026, 6, 2), TotalAmount: 33.25, OrderCount: 2}},
	)

	out := m.View()
	for _, want := range []string{"2026-06-02", "181.5 lbs", "10500", "7.5h", "$33.25"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in history view", want)
		}
	}
}

func TestViewEmptyState(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 30)

	if out := m.View(); !strings.Contains(out, "No records yet") {
		t.Error("expected empty-state message")
	}
}

func TestAppHistoryLoadedMsgReplacesRows(t *testing.T) {
	m := New(app.NewState(), nil)
	m.loading = true

	m.Update(app.HistoryLoadedMsg{
		Metrics: []models.DailyMetric{{Day: day(2026, 6, 4), Steps: models.Int64Ptr(4000)}},
	})

	if m.loading {
		t.Error("expected loading cleared")
	}
	if len(m.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(m.rows))
	}
}
