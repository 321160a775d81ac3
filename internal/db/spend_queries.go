package db

import (
	"context"
	"fmt"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// UpsertDailySpend inserts or fully replaces one day's spend summary. Unlike
// metric upserts there is no field merge: every feed import recomputes the
// whole aggregate from source, so both fields are overwritten together.
func (db *DB) UpsertDailySpend(summary models.DailySpendSummary) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := `
		INSERT INTO daily_spend (day, total_amount, order_count)
		VALUES (?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			total_amount = excluded.total_amount,
			order_count = excluded.order_count,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := db.ExecContext(context.Background(), query,
		models.DayString(summary.Day),
		summary.TotalAmount,
		summary.OrderCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily spend for %s: %w", models.DayString(summary.Day), err)
	}

	return nil
}

// SpendInRange returns spend summaries whose day falls in [from, to).
func (db *DB) SpendInRange(from, to time.Time) ([]models.DailySpendSummary, error) {
	query := `
		SELECT day, total_amount, order_count
		FROM daily_spend
		WHERE day >= ? AND day < ?
	`
	return db.querySpend(query, models.DayString(from), models.DayString(to))
}

// AllSpend returns every stored spend summary.
func (db *DB) AllSpend() ([]models.DailySpendSummary, error) {
	query := `
		SELECT day, total_amount, order_count
		FROM daily_spend
	`
	return db.querySpend(query)
}

func (db *DB) querySpend(query string, args ...any) ([]models.DailySpendSummary, error) {
	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily spend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []models.DailySpendSummary
	for rows.Next() {
		var (
			summary models.DailySpendSummary
			dayStr  string
		)

		if err := rows.Scan(&dayStr, &summary.TotalAmount, &summary.OrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily spend: %w", err)
		}

		summary.Day, err = models.ParseDay(dayStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt day key %q: %w", dayStr, err)
		}

		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}
