package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDay(s)
	if err != nil {
		t.Fatalf("Bad day %q: %v", s, err)
	}
	return d
}

func TestUpsertDailyMetricInsert(t *testing.T) {
	database := newTestDB(t)

	metric := models.DailyMetric{
		Day:    day(t, "2026-08-01"),
		Weight: models.Float64Ptr(182.4),
		Steps:  models.Int64Ptr(9500),
	}
	if err := database.UpsertDailyMetric(metric); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	got, err := database.AllMetrics()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 metric, got %d", len(got))
	}
	if got[0].Weight == nil || *got[0].Weight != 182.4 {
		t.Errorf("Expected weight 182.4, got %v", got[0].Weight)
	}
	if got[0].ActiveEnergy != nil {
		t.Errorf("Expected absent active energy, got %v", *got[0].ActiveEnergy)
	}
}

func TestUpsertDailyMetricFieldMerge(t *testing.T) {
	database := newTestDB(t)
	d := day(t, "2026-08-01")

	existing := models.DailyMetric{
		Day:          d,
		Weight:       models.Float64Ptr(180.0),
		SleepMinutes: models.Float64Ptr(420),
	}
	if err := database.UpsertDailyMetric(existing); err != nil {
		t.Fatalf("Failed to upsert existing: %v", err)
	}

	// Incoming record carries only steps; weight and sleep must survive.
	incoming := models.DailyMetric{
		Day:   d,
		Steps: models.Int64Ptr(12000),
	}
	if err := database.UpsertDailyMetric(incoming); err != nil {
		t.Fatalf("Failed to upsert incoming: %v", err)
	}

	got, err := database.AllMetrics()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 metric, got %d", len(got))
	}
	m := got[0]
	if m.Weight == nil || *m.Weight != 180.0 {
		t.Errorf("Expected weight 180.0 preserved, got %v", m.Weight)
	}
	if m.SleepMinutes == nil || *m.SleepMinutes != 420 {
		t.Errorf("Expected sleep minutes 420 preserved, got %v", m.SleepMinutes)
	}
	if m.Steps == nil || *m.Steps != 12000 {
		t.Errorf("Expected steps 12000 updated, got %v", m.Steps)
	}
}

func TestUpsertDailyMetricOverwritesPresentFields(t *testing.T) {
	database := newTestDB(t)
	d := day(t, "2026-08-02")

	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:    d,
		Weight: models.Float64Ptr(181.0),
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:    d,
		Weight: models.Float64Ptr(179.5),
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	got, err := database.AllMetrics()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if got[0].Weight == nil || *got[0].Weight != 179.5 {
		t.Errorf("Expected weight 179.5, got %v", got[0].Weight)
	}
}

func TestMetricsInRangeHalfOpen(t *testing.T) {
	database := newTestDB(t)

	for _, s := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		if err := database.UpsertDailyMetric(models.DailyMetric{
			Day:   day(t, s),
			Steps: models.Int64Ptr(1000),
		}); err != nil {
			t.Fatalf("Failed to upsert %s: %v", s, err)
		}
	}

	got, err := database.MetricsInRange(day(t, "2026-08-01"), day(t, "2026-08-03"))
	if err != nil {
		t.Fatalf("Failed to query range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 metrics in [08-01, 08-03), got %d", len(got))
	}
	for _, m := range got {
		if models.DayString(m.Day) == "2026-08-03" {
			t.Error("Range end should be exclusive")
		}
	}
}

func TestLatestWeightBefore(t *testing.T) {
	database := newTestDB(t)

	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:    day(t, "2026-08-01"),
		Weight: models.Float64Ptr(183.0),
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	// Later day with no weight must not shadow the concrete one.
	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:   day(t, "2026-08-03"),
		Steps: models.Int64Ptr(5000),
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	w, err := database.LatestWeightBefore(day(t, "2026-08-05"))
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if w == nil || *w != 183.0 {
		t.Errorf("Expected 183.0, got %v", w)
	}

	// Strictly before: the record's own day does not count.
	w, err = database.LatestWeightBefore(day(t, "2026-08-01"))
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if w != nil {
		t.Errorf("Expected nil weight before first record, got %v", *w)
	}
}

func TestSleepTimesRoundTrip(t *testing.T) {
	database := newTestDB(t)

	start := time.Date(2026, 8, 1, 23, 15, 42, 0, time.Local)
	end := time.Date(2026, 8, 2, 6, 50, 3, 0, time.Local)

	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:          day(t, "2026-08-02"),
		SleepMinutes: models.Float64Ptr(432.5),
		SleepStart:   models.TimePtr(start),
		SleepEnd:     models.TimePtr(end),
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	got, err := database.AllMetrics()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	m := got[0]
	if m.SleepStart == nil || !m.SleepStart.Equal(start) {
		t.Errorf("Expected sleep start %v, got %v", start, m.SleepStart)
	}
	if m.SleepEnd == nil || !m.SleepEnd.Equal(end) {
		t.Errorf("Expected sleep end %v, got %v", end, m.SleepEnd)
	}
}

func TestUpsertDailySpendReplaces(t *testing.T) {
	database := newTestDB(t)
	d := day(t, "2026-08-01")

	if err := database.UpsertDailySpend(models.DailySpendSummary{
		Day: d, TotalAmount: 54.20, OrderCount: 3,
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := database.UpsertDailySpend(models.DailySpendSummary{
		Day: d, TotalAmount: 31.00, OrderCount: 2,
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	got, err := database.AllSpend()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(got))
	}
	if got[0].TotalAmount != 31.00 || got[0].OrderCount != 2 {
		t.Errorf("Expected full replace (31.00, 2), got (%v, %v)",
			got[0].TotalAmount, got[0].OrderCount)
	}
}

func TestSpendInRange(t *testing.T) {
	database := newTestDB(t)

	for i, s := range []string{"2026-07-30", "2026-08-01", "2026-08-02"} {
		if err := database.UpsertDailySpend(models.DailySpendSummary{
			Day: day(t, s), TotalAmount: float64(i + 1), OrderCount: 1,
		}); err != nil {
			t.Fatalf("Failed to upsert %s: %v", s, err)
		}
	}

	got, err := database.SpendInRange(day(t, "2026-08-01"), day(t, "2026-08-03"))
	if err != nil {
		t.Fatalf("Failed to query range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(got))
	}
}
