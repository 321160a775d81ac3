// Package export writes JSON snapshots of the record store for diagnostics.
// Snapshots are one-way: nothing re-imports them.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// DefaultWindowDays is the trailing window a snapshot covers.
const DefaultWindowDays = 7

// Store is the read-only store slice the exporter needs.
type Store interface {
	MetricsInRange(from, to time.Time) ([]models.DailyMetric, error)
	SpendInRange(from, to time.Time) ([]models.DailySpendSummary, error)
}

// Snapshot is the exported JSON shape.
type Snapshot struct {
	FoodOrders    []models.DailySpendSummary `json:"foodOrders"`
	HealthMetrics []models.DailyMetric       `json:"healthMetrics"`
}

// Build collects the trailing windowDays of records ending at now, both
// kinds sorted ascending by day.
func Build(store Store, now time.Time, windowDays int) (*Snapshot, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	today := models.DayKey(now)
	from := today.AddDate(0, 0, -windowDays)
	to := today.AddDate(0, 0, 1) // include today

	metrics, err := store.MetricsInRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to collect metrics for snapshot: %w", err)
	}
	spend, err := store.SpendInRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to collect spend for snapshot: %w", err)
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Day.Before(metrics[j].Day) })
	sort.Slice(spend, func(i, j int) bool { return spend[i].Day.Before(spend[j].Day) })

	return &Snapshot{
		FoodOrders:    spend,
		HealthMetrics: metrics,
	}, nil
}

// Marshal renders a snapshot as pretty-printed JSON. Dates encode as
// ISO-8601 via the standard time.Time encoding.
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Parse decodes a snapshot produced by Marshal. Used by tests to verify
// round-trip fidelity; the application itself never re-imports snapshots.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// WriteFile builds a snapshot and writes it to path.
func WriteFile(store Store, path string, now time.Time, windowDays int) error {
	snapshot, err := Build(store, now, windowDays)
	if err != nil {
		return err
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", path, err)
	}
	return nil
}
