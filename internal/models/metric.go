// Package models defines data structures and domain types.
package models

import "time"

// DayLayout is the canonical encoding for calendar-day keys.
const DayLayout = "2006-01-02"

// DailyMetric is one day's worth of health samples. Day is the uniqueness
// key, normalized to local midnight. Every other field may be absent: nil
// means no sample was received for that day, which is distinct from zero.
type DailyMetric struct {
	Day          time.Time  `json:"day"`
	Weight       *float64   `json:"weight,omitempty"`
	Steps        *int64     `json:"steps,omitempty"`
	ActiveEnergy *float64   `json:"activeEnergy,omitempty"`
	SleepMinutes *float64   `json:"sleepMinutes,omitempty"`
	SleepStart   *time.Time `json:"sleepStart,omitempty"`
	SleepEnd     *time.Time `json:"sleepEnd,omitempty"`
}

// IsEmpty reports whether the metric carries no sample at all.
func (m DailyMetric) IsEmpty() bool {
	return m.Weight == nil && m.Steps == nil && m.ActiveEnergy == nil &&
		m.SleepMinutes == nil && m.SleepStart == nil && m.SleepEnd == nil
}

// DayKey normalizes t to local midnight so it can be used as a calendar-day
// key. All store lookups and comparisons go through this.
func DayKey(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// DayString encodes t's calendar day for storage.
func DayString(t time.Time) string {
	return DayKey(t).Format(DayLayout)
}

// ParseDay decodes a stored day key back to local midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.Local)
}

// DaysBetween returns the number of whole calendar days from a to b,
// ignoring time-of-day. Negative when b is before a. Days are compared as
// UTC dates so DST transitions cannot shorten a day.
func DaysBetween(a, b time.Time) int {
	ad, bd := a.Local(), b.Local()
	au := time.Date(ad.Year(), ad.Month(), ad.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(bd.Year(), bd.Month(), bd.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// Float64Ptr returns a pointer to v. Convenience for building sparse metrics.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
