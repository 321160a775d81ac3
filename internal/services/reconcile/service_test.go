package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/averlow/healthdash/internal/db"
	"github.com/averlow/healthdash/internal/models"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return New(database), database
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDay(s)
	if err != nil {
		t.Fatalf("Bad day %q: %v", s, err)
	}
	return d
}

func weightOf(t *testing.T, database *db.DB, dayStr string) *float64 {
	t.Helper()
	metrics, err := database.AllMetrics()
	if err != nil {
		t.Fatalf("Failed to query metrics: %v", err)
	}
	for _, m := range metrics {
		if models.DayString(m.Day) == dayStr {
			return m.Weight
		}
	}
	t.Fatalf("No record for %s", dayStr)
	return nil
}

func TestApplyCarryForward(t *testing.T) {
	svc, database := newTestService(t)

	// Seed: three days ago has a concrete weight.
	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:    day(t, "2026-08-10"),
		Weight: models.Float64Ptr(150.0),
	}); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	batch := []models.DailyMetric{
		{Day: day(t, "2026-08-11"), Steps: models.Int64Ptr(8000)},
		{Day: day(t, "2026-08-12"), Weight: models.Float64Ptr(152.0)},
		{Day: day(t, "2026-08-13"), Steps: models.Int64Ptr(4000)},
	}

	written, err := svc.Apply(batch)
	if err != nil {
		t.Fatalf("Failed to apply: %v", err)
	}
	if written != 3 {
		t.Errorf("Expected 3 days written, got %d", written)
	}

	cases := []struct {
		day    string
		weight float64
	}{
		{"2026-08-11", 150.0},
		{"2026-08-12", 152.0},
		{"2026-08-13", 152.0},
	}
	for _, c := range cases {
		w := weightOf(t, database, c.day)
		if w == nil || *w != c.weight {
			t.Errorf("Day %s: expected weight %v, got %v", c.day, c.weight, w)
		}
	}
}

func TestApplyNoEarlierWeight(t *testing.T) {
	svc, database := newTestService(t)

	batch := []models.DailyMetric{
		{Day: day(t, "2026-08-01"), Steps: models.Int64Ptr(5000)},
		{Day: day(t, "2026-08-02"), Steps: models.Int64Ptr(6000)},
	}

	if _, err := svc.Apply(batch); err != nil {
		t.Fatalf("Failed to apply: %v", err)
	}

	// History starts without a weight sample: nothing to carry forward,
	// and no default is invented.
	for _, d := range []string{"2026-08-01", "2026-08-02"} {
		if w := weightOf(t, database, d); w != nil {
			t.Errorf("Day %s: expected absent weight, got %v", d, *w)
		}
	}
}

func TestApplyUnsortedBatch(t *testing.T) {
	svc, database := newTestService(t)

	// Out-of-order input must still carry forward chronologically.
	batch := []models.DailyMetric{
		{Day: day(t, "2026-08-03"), Steps: models.Int64Ptr(100)},
		{Day: day(t, "2026-08-01"), Weight: models.Float64Ptr(170.0)},
		{Day: day(t, "2026-08-02"), Steps: models.Int64Ptr(200)},
	}

	if _, err := svc.Apply(batch); err != nil {
		t.Fatalf("Failed to apply: %v", err)
	}

	for _, d := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		w := weightOf(t, database, d)
		if w == nil || *w != 170.0 {
			t.Errorf("Day %s: expected weight 170.0, got %v", d, w)
		}
	}
}

func TestApplyMergesNonWeightFields(t *testing.T) {
	svc, database := newTestService(t)
	d := day(t, "2026-08-05")

	if err := database.UpsertDailyMetric(models.DailyMetric{
		Day:          d,
		SleepMinutes: models.Float64Ptr(400),
	}); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	if _, err := svc.Apply([]models.DailyMetric{
		{Day: d, Steps: models.Int64Ptr(7500)},
	}); err != nil {
		t.Fatalf("Failed to apply: %v", err)
	}

	metrics, err := database.AllMetrics()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(metrics))
	}
	if metrics[0].SleepMinutes == nil || *metrics[0].SleepMinutes != 400 {
		t.Errorf("Expected sleep minutes preserved, got %v", metrics[0].SleepMinutes)
	}
	if metrics[0].Steps == nil || *metrics[0].Steps != 7500 {
		t.Errorf("Expected steps 7500, got %v", metrics[0].Steps)
	}
}

func TestApplyEmptyBatch(t *testing.T) {
	svc, _ := newTestService(t)

	written, err := svc.Apply(nil)
	if err != nil {
		t.Fatalf("Empty batch should not error: %v", err)
	}
	if written != 0 {
		t.Errorf("Expected 0 days written, got %d", written)
	}
}

func TestApplyCarryForwardAcrossBatches(t *testing.T) {
	svc, database := newTestService(t)

	if _, err := svc.Apply([]models.DailyMetric{
		{Day: day(t, "2026-08-01"), Weight: models.Float64Ptr(160.0)},
	}); err != nil {
		t.Fatalf("Failed to apply first batch: %v", err)
	}

	// Second batch starts after the first; the seed comes from the store.
	if _, err := svc.Apply([]models.DailyMetric{
		{Day: day(t, "2026-08-04"), Steps: models.Int64Ptr(3000)},
	}); err != nil {
		t.Fatalf("Failed to apply second batch: %v", err)
	}

	w := weightOf(t, database, "2026-08-04")
	if w == nil || *w != 160.0 {
		t.Errorf("Expected carried weight 160.0 across batches, got %v", w)
	}
}
