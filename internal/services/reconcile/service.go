// Package reconcile merges freshly fetched daily samples into the record
// store, applying the weight carry-forward policy.
package reconcile

import (
	"sort"
	"time"

	"github.com/averlow/healthdash/internal/logger"
	"github.com/averlow/healthdash/internal/models"
)

// Store is the slice of the record store the reconciler needs.
type Store interface {
	LatestWeightBefore(day time.Time) (*float64, error)
	UpsertDailyMetric(metric models.DailyMetric) error
}

// Service applies fetched batches to the store. It holds no state between
// calls; all merge state is local to one Apply.
type Service struct {
	store Store
}

// New creates a reconciler backed by the given store.
func New(store Store) *Service {
	return &Service{store: store}
}

// Apply merges a batch of daily metrics into the store and returns the
// number of days written.
//
// The batch is walked chronologically. A day whose own weight is absent
// inherits the most recent earlier concrete weight, seeded from the store
// for days before the batch; a day with its own weight resets the seed. If
// no earlier weight exists anywhere, the field simply stays absent; no
// default is fabricated. Non-weight fields rely on the store's field-merge
// upsert, so absent fields never clobber previously stored values.
func (s *Service) Apply(batch []models.DailyMetric) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	sorted := make([]models.DailyMetric, len(batch))
	copy(sorted, batch)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day.Before(sorted[j].Day) })

	lastKnownWeight, err := s.store.LatestWeightBefore(sorted[0].Day)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, metric := range sorted {
		metric.Day = models.DayKey(metric.Day)

		if metric.Weight == nil {
			metric.Weight = lastKnownWeight
		} else {
			lastKnownWeight = metric.Weight
		}

		if err := s.store.UpsertDailyMetric(metric); err != nil {
			// Per-call upserts are atomic, so days already written stay
			// written; the failure propagates without rollback.
			return written, err
		}
		written++
	}

	logger.Debug("reconciled metric batch", "days", written)
	return written, nil
}
