package health

import (
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// SleepInterval is one raw sleep segment as reported by the provider.
type SleepInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Stage string    `json:"stage"`
}

// Nightly window: sleep credited to a day spans 18:00 the previous evening
// through 18:00 on the day itself.
const nightlyWindowHour = 18

// asleepStage reports whether an interval counts as actual sleep. In-bed
// and awake segments are excluded from the nightly total.
func asleepStage(stage string) bool {
	switch stage {
	case "asleep", "core", "deep", "rem":
		return true
	default:
		return false
	}
}

// AggregateSleepNight folds raw intervals into one night's totals for the
// given day: total asleep minutes inside the nightly window, plus the first
// sleep start and last sleep end among qualifying intervals. Returns zero
// minutes and nil bounds when no interval qualifies.
func AggregateSleepNight(day time.Time, intervals []SleepInterval) (float64, *time.Time, *time.Time) {
	dayKey := models.DayKey(day)
	windowEnd := dayKey.Add(nightlyWindowHour * time.Hour)
	windowStart := windowEnd.Add(-24 * time.Hour)

	var (
		totalMinutes float64
		firstStart   *time.Time
		lastEnd      *time.Time
	)

	for _, iv := range intervals {
		if !asleepStage(iv.Stage) {
			continue
		}
		if !iv.End.After(iv.Start) {
			continue
		}

		// Clip to the nightly window; intervals straddling a boundary
		// contribute only their overlapping portion.
		start, end := iv.Start, iv.End
		if start.Before(windowStart) {
			start = windowStart
		}
		if end.After(windowEnd) {
			end = windowEnd
		}
		if !end.After(start) {
			continue
		}

		totalMinutes += end.Sub(start).Minutes()

		if firstStart == nil || start.Before(*firstStart) {
			s := start
			firstStart = &s
		}
		if lastEnd == nil || end.After(*lastEnd) {
			e := end
			lastEnd = &e
		}
	}

	return totalMinutes, firstStart, lastEnd
}
