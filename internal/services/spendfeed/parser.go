// Package spendfeed imports the food-order CSV feed into daily spend
// summaries.
package spendfeed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/averlow/healthdash/internal/logger"
	"github.com/averlow/healthdash/internal/models"
)

// ParseError means the feed itself is unusable (bad URL, non-200 response,
// undecodable bytes, missing required header columns). It aborts the whole
// import; malformed individual rows are skipped instead.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("spend feed unusable: %s", e.Reason)
}

// Column names accepted for the idempotency key, checked in order. The feed
// has appeared with two header conventions over time; both are handled.
var keyColumnNames = []string{"messageid", "message_id", "id", "transactionid", "orderid"}

// columnLayout maps the required fields to column positions in one feed.
type columnLayout struct {
	date   int
	amount int
	key    int
}

// dateLayouts are the formats the feed has been observed to use.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// locateColumns resolves the layout from a header row by case-insensitive
// name. When the header carries none of the expected names, a plain
// 3-column feed is assumed (date, amount, key in that order); anything else
// is a ParseError.
func locateColumns(header []string) (columnLayout, bool, error) {
	layout := columnLayout{date: -1, amount: -1, key: -1}

	for i, col := range header {
		switch name := strings.ToLower(strings.TrimSpace(col)); {
		case name == "date":
			layout.date = i
		case name == "amount":
			layout.amount = i
		default:
			for _, keyName := range keyColumnNames {
				if name == keyName {
					layout.key = i
					break
				}
			}
		}
	}

	named := layout.date >= 0 || layout.amount >= 0 || layout.key >= 0
	if named {
		if layout.date < 0 || layout.amount < 0 || layout.key < 0 {
			return layout, false, &ParseError{
				Reason: fmt.Sprintf("header %v is missing a required column (date, amount, id)", header),
			}
		}
		return layout, true, nil
	}

	// Positional fallback: the legacy 3-column feed has no recognizable
	// header names. The first row may still be a header; it is detected
	// later by its non-numeric amount field and skipped as a bad row.
	if len(header) == 3 {
		return columnLayout{date: 0, amount: 1, key: 2}, false, nil
	}

	return layout, false, &ParseError{
		Reason: fmt.Sprintf("cannot locate columns in header %v", header),
	}
}

// parseRow converts one record to a RawSpendRow. The bool result is false
// for malformed rows, which callers skip with a warning.
func parseRow(layout columnLayout, record []string) (models.RawSpendRow, bool) {
	max := layout.date
	if layout.amount > max {
		max = layout.amount
	}
	if layout.key > max {
		max = layout.key
	}
	if len(record) <= max {
		return models.RawSpendRow{}, false
	}

	day, ok := parseFeedDate(strings.TrimSpace(record[layout.date]))
	if !ok {
		return models.RawSpendRow{}, false
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(record[layout.amount]), 64)
	if err != nil {
		return models.RawSpendRow{}, false
	}

	key := strings.TrimSpace(record[layout.key])
	if key == "" {
		return models.RawSpendRow{}, false
	}

	return models.RawSpendRow{Day: day, Amount: amount, Key: key}, true
}

func parseFeedDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return models.DayKey(t), true
		}
	}
	return time.Time{}, false
}

// ParseRecords converts raw CSV records (header included) into spend rows.
// Malformed rows are dropped with a warning; a missing or unusable header
// is fatal.
func ParseRecords(records [][]string) ([]models.RawSpendRow, error) {
	if len(records) == 0 {
		return nil, nil
	}

	layout, hasNamedHeader, err := locateColumns(records[0])
	if err != nil {
		return nil, err
	}

	body := records
	if hasNamedHeader {
		body = records[1:]
	}

	var rows []models.RawSpendRow
	for i, record := range body {
		row, ok := parseRow(layout, record)
		if !ok {
			// The positional variant's header lands here too: its amount
			// field is non-numeric, so it is skipped like any bad row.
			if !(i == 0 && !hasNamedHeader) {
				logger.Warn("skipping malformed feed row", "line", i+1, "fields", len(record))
			}
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Aggregate folds parsed rows into one summary per calendar day. Within a
// pass, rows with an already-seen idempotency key for that day contribute
// nothing: the total includes each key's amount exactly once and the count
// is the size of the deduplicated key set.
func Aggregate(rows []models.RawSpendRow) []models.DailySpendSummary {
	type dayAgg struct {
		total float64
		seen  map[string]struct{}
	}

	byDay := make(map[string]*dayAgg)
	days := make(map[string]time.Time)

	for _, row := range rows {
		dayStr := models.DayString(row.Day)
		agg, ok := byDay[dayStr]
		if !ok {
			agg = &dayAgg{seen: make(map[string]struct{})}
			byDay[dayStr] = agg
			days[dayStr] = models.DayKey(row.Day)
		}

		if _, dup := agg.seen[row.Key]; dup {
			continue
		}
		agg.seen[row.Key] = struct{}{}
		agg.total += row.Amount
	}

	summaries := make([]models.DailySpendSummary, 0, len(byDay))
	for dayStr, agg := range byDay {
		summaries = append(summaries, models.DailySpendSummary{
			Day:         days[dayStr],
			TotalAmount: agg.total,
			OrderCount:  int64(len(agg.seen)),
		})
	}

	return summaries
}
