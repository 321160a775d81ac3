package models

import "time"

// DailySpendSummary is the per-day aggregate of the food-order feed.
// OrderCount is the number of distinct idempotency keys folded into the day
// during one import pass; re-importing the same key must not double count.
type DailySpendSummary struct {
	Day         time.Time `json:"day"`
	TotalAmount float64   `json:"totalAmount"`
	OrderCount  int64     `json:"orderCount"`
}

// RawSpendRow is one parsed line of the spend feed. It is never persisted;
// rows exist only between parsing and aggregation.
type RawSpendRow struct {
	Day    time.Time
	Amount float64
	Key    string
}
