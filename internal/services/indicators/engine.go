// Package indicators derives the dashboard's rolling statistics from the
// record store. The engine holds no state: every function recomputes from
// stored records and an explicit "now", so results are reproducible in
// tests.
//
// Unless a function says otherwise, day windows are half-open [start, now)
// and exclude today, so a partially elapsed day cannot skew a week-style
// average.
package indicators

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// Sentinel outputs for undefined ratios and unbounded streaks.
const (
	SentinelNA       = "N/A"
	SentinelInfinity = "∞"
	SentinelNoWeight = "No Weight Data"
)

// Store is the read-only slice of the record store the engine needs.
type Store interface {
	MetricsInRange(from, to time.Time) ([]models.DailyMetric, error)
	AllMetrics() ([]models.DailyMetric, error)
	SpendInRange(from, to time.Time) ([]models.DailySpendSummary, error)
	AllSpend() ([]models.DailySpendSummary, error)
}

// Engine computes indicators over a store.
type Engine struct {
	store         Store
	goalWeight    float64
	stepThreshold int64
}

// New creates an engine. goalWeight and stepThreshold come from config.
func New(store Store, goalWeight float64, stepThreshold int64) *Engine {
	return &Engine{
		store:         store,
		goalWeight:    goalWeight,
		stepThreshold: stepThreshold,
	}
}

// PctChange formats the percentage change from previous to current. A
// non-positive previous value makes the ratio undefined and yields "N/A";
// otherwise the rounded absolute change is prefixed with ▲ or ▼.
func PctChange(current, previous float64) string {
	if previous <= 0 {
		return SentinelNA
	}
	pct := (current - previous) / previous * 100
	symbol := "▲"
	if pct < 0 {
		symbol = "▼"
	}
	return fmt.Sprintf("%s%d%%", symbol, int(math.Round(math.Abs(pct))))
}

// ActiveDays counts days in the trailing week whose step count cleared the
// activity threshold, rendered as "{count}/7 Days".
func (e *Engine) ActiveDays(now time.Time) (string, error) {
	today := models.DayKey(now)
	metrics, err := e.store.MetricsInRange(today.AddDate(0, 0, -7), today)
	if err != nil {
		return "", err
	}

	count := 0
	for _, m := range metrics {
		if m.Steps != nil && *m.Steps > e.stepThreshold {
			count++
		}
	}
	return fmt.Sprintf("%d/7 Days", count), nil
}

// EnergyTrend compares active energy burned over the two trailing 7-day
// windows, rendered as "{recentSum} Kcal ({change})".
func (e *Engine) EnergyTrend(now time.Time) (string, error) {
	today := models.DayKey(now)

	recent, err := e.sumEnergy(today.AddDate(0, 0, -7), today)
	if err != nil {
		return "", err
	}
	prior, err := e.sumEnergy(today.AddDate(0, 0, -14), today.AddDate(0, 0, -7))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d Kcal (%s)", int(recent), PctChange(recent, prior)), nil
}

func (e *Engine) sumEnergy(from, to time.Time) (float64, error) {
	metrics, err := e.store.MetricsInRange(from, to)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, m := range metrics {
		if m.ActiveEnergy != nil {
			sum += *m.ActiveEnergy
		}
	}
	return sum, nil
}

// SleepConsistency returns the standard deviation of wake time (minutes
// since midnight) and of sleep duration over the trailing week's nights.
// Fewer than two qualifying nights yields (0, 0).
func (e *Engine) SleepConsistency(now time.Time) (wakeStd, durationStd float64, err error) {
	today := models.DayKey(now)
	metrics, err := e.store.MetricsInRange(today.AddDate(0, 0, -7), today)
	if err != nil {
		return 0, 0, err
	}

	var durations, wakes []float64
	for _, m := range metrics {
		if m.SleepMinutes == nil || *m.SleepMinutes <= 0 {
			continue
		}
		durations = append(durations, *m.SleepMinutes)
		if m.SleepEnd != nil {
			end := m.SleepEnd.Local()
			wakes = append(wakes, float64(end.Hour()*60+end.Minute())+float64(end.Second())/60)
		}
	}

	if len(durations) < 2 {
		return 0, 0, nil
	}
	return stddev(wakes), stddev(durations), nil
}

// stddev is the n-1 formula; fewer than two samples yields 0.
func stddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)

	var sumSq float64
	for _, x := range xs {
		sumSq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// SpendTrend renders delivery spend for the trailing 30 days and 365 days,
// each with its change against the preceding window of the same length:
// "${last30} ({mom}) • ${last365} ({yoy})".
func (e *Engine) SpendTrend(now time.Time) (string, error) {
	today := models.DayKey(now)

	last30, err := e.sumSpend(today.AddDate(0, 0, -30), today)
	if err != nil {
		return "", err
	}
	prior30, err := e.sumSpend(today.AddDate(0, 0, -60), today.AddDate(0, 0, -30))
	if err != nil {
		return "", err
	}
	last365, err := e.sumSpend(today.AddDate(0, 0, -365), today)
	if err != nil {
		return "", err
	}
	prior365, err := e.sumSpend(today.AddDate(0, 0, -730), today.AddDate(0, 0, -365))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("$%.2f (%s) • $%.2f (%s)",
		last30, PctChange(last30, prior30),
		last365, PctChange(last365, prior365)), nil
}

func (e *Engine) sumSpend(from, to time.Time) (float64, error) {
	summaries, err := e.store.SpendInRange(from, to)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range summaries {
		sum += s.TotalAmount
	}
	return sum, nil
}

// CleanStreak is the number of days since the most recent recorded food
// order. A history with no orders at all renders the unbounded sentinel.
func (e *Engine) CleanStreak(now time.Time) (string, error) {
	summaries, err := e.store.AllSpend()
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return SentinelInfinity, nil
	}

	latest := summaries[0].Day
	for _, s := range summaries[1:] {
		if s.Day.After(latest) {
			latest = s.Day
		}
	}

	days := models.DaysBetween(latest, now)
	if days < 0 {
		days = 0
	}
	return fmt.Sprintf("%d Days", days), nil
}

// WeightTrend is the gap between the most recent weight anywhere in history
// and the peak weight over the trailing 45 days. The window includes today:
// this indicator wants the freshest record regardless of date.
func (e *Engine) WeightTrend(now time.Time) (string, error) {
	today := models.DayKey(now)
	window, err := e.store.MetricsInRange(today.AddDate(0, 0, -45), today.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}

	peak := math.Inf(-1)
	found := false
	for _, m := range window {
		if m.Weight != nil && *m.Weight > peak {
			peak = *m.Weight
			found = true
		}
	}
	if !found {
		return SentinelNoWeight, nil
	}

	current, err := e.mostRecentWeight()
	if err != nil {
		return "", err
	}
	if current == nil {
		// Window had weights but the full history scan found none; only
		// reachable if the store changed between the two reads.
		return SentinelNA, nil
	}

	return fmt.Sprintf("%+.1f lbs", *current-peak), nil
}

// GoalGap is the distance from the most recent weight to the goal weight.
func (e *Engine) GoalGap(now time.Time) (string, error) {
	current, err := e.mostRecentWeight()
	if err != nil {
		return "", err
	}
	if current == nil {
		return SentinelNoWeight, nil
	}
	return fmt.Sprintf("%+.1f lbs", *current-e.goalWeight), nil
}

// mostRecentWeight scans the entire history for the chronologically latest
// concrete weight, keyed by day rather than by fetch time.
func (e *Engine) mostRecentWeight() (*float64, error) {
	metrics, err := e.store.AllMetrics()
	if err != nil {
		return nil, err
	}

	var (
		latest time.Time
		weight *float64
	)
	for _, m := range metrics {
		if m.Weight == nil {
			continue
		}
		if weight == nil || m.Day.After(latest) {
			latest = m.Day
			w := *m.Weight
			weight = &w
		}
	}
	return weight, nil
}

// ChartData builds the trailing 14-day chart series: per-day energy, sleep
// hours (0 when absent) and spend (nil when the day has no orders), sorted
// ascending by date.
func (e *Engine) ChartData(now time.Time) ([]models.ChartPoint, error) {
	today := models.DayKey(now)
	from := today.AddDate(0, 0, -14)

	metrics, err := e.store.MetricsInRange(from, today)
	if err != nil {
		return nil, err
	}
	spend, err := e.store.SpendInRange(from, today)
	if err != nil {
		return nil, err
	}

	points := make(map[string]*models.ChartPoint)
	point := func(day time.Time) *models.ChartPoint {
		key := models.DayString(day)
		if p, ok := points[key]; ok {
			return p
		}
		p := &models.ChartPoint{Date: models.DayKey(day)}
		points[key] = p
		return p
	}

	for _, m := range metrics {
		p := point(m.Day)
		if m.ActiveEnergy != nil {
			p.Energy = *m.ActiveEnergy
		}
		if m.SleepMinutes != nil {
			p.SleepHours = *m.SleepMinutes / 60
		}
	}
	for _, s := range spend {
		if s.TotalAmount > 0 {
			amount := s.TotalAmount
			point(s.Day).Spend = &amount
		}
	}

	result := make([]models.ChartPoint, 0, len(points))
	for _, p := range points {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// Compute evaluates every indicator at once for the dashboard.
func (e *Engine) Compute(now time.Time) (*models.IndicatorSet, error) {
	set := &models.IndicatorSet{ComputedAt: now}
	var err error

	if set.ActiveDays, err = e.ActiveDays(now); err != nil {
		return nil, err
	}
	if set.EnergyTrend, err = e.EnergyTrend(now); err != nil {
		return nil, err
	}
	if set.WakeStdDevMin, set.SleepStdDevMin, err = e.SleepConsistency(now); err != nil {
		return nil, err
	}
	if set.SpendTrend, err = e.SpendTrend(now); err != nil {
		return nil, err
	}
	if set.CleanStreak, err = e.CleanStreak(now); err != nil {
		return nil, err
	}
	if set.WeightTrend, err = e.WeightTrend(now); err != nil {
		return nil, err
	}
	if set.GoalGap, err = e.GoalGap(now); err != nil {
		return nil, err
	}
	if set.Chart, err = e.ChartData(now); err != nil {
		return nil, err
	}

	return set, nil
}
