package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// UpsertDailyMetric inserts or merges one day's metrics. Fields that are nil
// on the incoming value leave the stored value untouched; present fields
// overwrite. The statement is a single atomic write.
func (db *DB) UpsertDailyMetric(metric models.DailyMetric) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := `
		INSERT INTO daily_metrics (day, weight, steps, active_energy, sleep_minutes, sleep_start, sleep_end)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			weight = COALESCE(excluded.weight, daily_metrics.weight),
			steps = COALESCE(excluded.steps, daily_metrics.steps),
			active_energy = COALESCE(excluded.active_energy, daily_metrics.active_energy),
			sleep_minutes = COALESCE(excluded.sleep_minutes, daily_metrics.sleep_minutes),
			sleep_start = COALESCE(excluded.sleep_start, daily_metrics.sleep_start),
			sleep_end = COALESCE(excluded.sleep_end, daily_metrics.sleep_end),
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := db.ExecContext(context.Background(), query,
		models.DayString(metric.Day),
		nullFloat(metric.Weight),
		nullInt(metric.Steps),
		nullFloat(metric.ActiveEnergy),
		nullFloat(metric.SleepMinutes),
		nullTime(metric.SleepStart),
		nullTime(metric.SleepEnd),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily metric for %s: %w", models.DayString(metric.Day), err)
	}

	return nil
}

// MetricsInRange returns metrics whose day falls in [from, to). No ordering
// is guaranteed; callers needing chronological order sort explicitly.
func (db *DB) MetricsInRange(from, to time.Time) ([]models.DailyMetric, error) {
	query := `
		SELECT day, weight, steps, active_energy, sleep_minutes, sleep_start, sleep_end
		FROM daily_metrics
		WHERE day >= ? AND day < ?
	`
	return db.queryMetrics(query, models.DayString(from), models.DayString(to))
}

// AllMetrics returns every stored daily metric.
func (db *DB) AllMetrics() ([]models.DailyMetric, error) {
	query := `
		SELECT day, weight, steps, active_energy, sleep_minutes, sleep_start, sleep_end
		FROM daily_metrics
	`
	return db.queryMetrics(query)
}

// LatestWeightBefore returns the weight of the most recent record strictly
// before day that has a concrete weight, or nil if no such record exists.
func (db *DB) LatestWeightBefore(day time.Time) (*float64, error) {
	query := `
		SELECT weight FROM daily_metrics
		WHERE day < ? AND weight IS NOT NULL
		ORDER BY day DESC
		LIMIT 1
	`

	var weight float64
	err := db.QueryRowContext(context.Background(), query, models.DayString(day)).Scan(&weight)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest weight before %s: %w", models.DayString(day), err)
	}
	return &weight, nil
}

func (db *DB) queryMetrics(query string, args ...any) ([]models.DailyMetric, error) {
	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []models.DailyMetric
	for rows.Next() {
		var (
			metric     models.DailyMetric
			dayStr     string
			weight     sql.NullFloat64
			steps      sql.NullInt64
			energy     sql.NullFloat64
			sleepMin   sql.NullFloat64
			sleepStart sql.NullString
			sleepEnd   sql.NullString
		)

		err := rows.Scan(&dayStr, &weight, &steps, &energy, &sleepMin, &sleepStart, &sleepEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}

		metric.Day, err = models.ParseDay(dayStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt day key %q: %w", dayStr, err)
		}

		if weight.Valid {
			metric.Weight = &weight.Float64
		}
		if steps.Valid {
			metric.Steps = &steps.Int64
		}
		if energy.Valid {
			metric.ActiveEnergy = &energy.Float64
		}
		if sleepMin.Valid {
			metric.SleepMinutes = &sleepMin.Float64
		}
		if metric.SleepStart, err = parseNullTime(sleepStart); err != nil {
			return nil, err
		}
		if metric.SleepEnd, err = parseNullTime(sleepEnd); err != nil {
			return nil, err
		}

		metrics = append(metrics, metric)
	}

	return metrics, rows.Err()
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp %q: %w", s.String, err)
	}
	local := t.Local()
	return &local, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(time.RFC3339)
}
