package models

import "time"

// ChartPoint is one day in the 14-day dashboard chart. Spend is nil for days
// without any recorded orders so the chart can leave a gap instead of a zero.
type ChartPoint struct {
	Date       time.Time
	Energy     float64
	SleepHours float64
	Spend      *float64
}

// IndicatorSet bundles the derived dashboard indicators. All values are
// recomputed from the store on demand; nothing here is persisted.
type IndicatorSet struct {
	ActiveDays     string
	EnergyTrend    string
	SpendTrend     string
	CleanStreak    string
	WeightTrend    string
	GoalGap        string
	WakeStdDevMin  float64
	SleepStdDevMin float64
	Chart          []ChartPoint
	ComputedAt     time.Time
}
