package spendfeed

import (
	"errors"
	"testing"

	"github.com/averlow/healthdash/internal/models"
)

func TestLocateColumnsNamed(t *testing.T) {
	layout, named, err := locateColumns([]string{"MessageID", "Date", "Amount"})
	if err != nil {
		t.Fatalf("Failed to locate columns: %v", err)
	}
	if !named {
		t.Error("Expected named header to be recognized")
	}
	if layout.key != 0 || layout.date != 1 || layout.amount != 2 {
		t.Errorf("Unexpected layout: %+v", layout)
	}
}

func TestLocateColumnsMissingRequired(t *testing.T) {
	_, _, err := locateColumns([]string{"date", "amount", "notes"})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError for missing key column, got %v", err)
	}
}

func TestLocateColumnsPositionalFallback(t *testing.T) {
	layout, named, err := locateColumns([]string{"2026-08-01", "12.50", "msg-1"})
	if err != nil {
		t.Fatalf("Expected positional fallback, got %v", err)
	}
	if named {
		t.Error("Expected positional layout, not named")
	}
	if layout.date != 0 || layout.amount != 1 || layout.key != 2 {
		t.Errorf("Unexpected layout: %+v", layout)
	}
}

func TestParseRecordsSkipsMalformedRows(t *testing.T) {
	records := [][]string{
		{"date", "amount", "messageid"},
		{"2026-08-01", "12.50", "msg-1"},
		{"not-a-date", "9.00", "msg-2"},
		{"2026-08-01", "abc", "msg-3"},
		{"2026-08-01", "5.00", ""},
		{"2026-08-01", "5.00"}, // wrong column count
		{"2026-08-02", "20.00", "msg-4"},
	}

	rows, err := ParseRecords(records)
	if err != nil {
		t.Fatalf("Per-row damage must not be fatal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 valid rows, got %d", len(rows))
	}
	if rows[0].Key != "msg-1" || rows[1].Key != "msg-4" {
		t.Errorf("Unexpected rows: %+v", rows)
	}
}

func TestParseRecordsPositionalHeaderSkipped(t *testing.T) {
	records := [][]string{
		{"date", "amount", "messageid"}, // named header path
	}
	rows, err := ParseRecords(records)
	if err != nil {
		t.Fatalf("Header-only feed should parse: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}

	// Legacy variant: header names unrecognized, amount field non-numeric.
	records = [][]string{
		{"when", "total", "ref"},
		{"2026-08-01", "12.50", "msg-1"},
	}
	rows, err = ParseRecords(records)
	if err != nil {
		t.Fatalf("Legacy feed should parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row with positional header skipped, got %d", len(rows))
	}
}

func TestParseRecordsUSDateFormat(t *testing.T) {
	records := [][]string{
		{"date", "amount", "messageid"},
		{"08/15/2026", "7.25", "msg-1"},
	}

	rows, err := ParseRecords(records)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if models.DayString(rows[0].Day) != "2026-08-15" {
		t.Errorf("Expected 2026-08-15, got %s", models.DayString(rows[0].Day))
	}
}

func TestParseRecordsEmpty(t *testing.T) {
	rows, err := ParseRecords(nil)
	if err != nil {
		t.Fatalf("Empty feed should not error: %v", err)
	}
	if rows != nil {
		t.Errorf("Expected nil rows, got %v", rows)
	}
}

func TestAggregateDedupByKey(t *testing.T) {
	day, _ := models.ParseDay("2026-08-01")

	rows := []models.RawSpendRow{
		{Day: day, Amount: 10.00, Key: "msg-1"},
		{Day: day, Amount: 10.00, Key: "msg-1"}, // duplicate key
		{Day: day, Amount: 5.50, Key: "msg-2"},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 day, got %d", len(summaries))
	}

	s := summaries[0]
	if s.OrderCount != 2 {
		t.Errorf("Expected 2 distinct orders, got %d", s.OrderCount)
	}
	if s.TotalAmount != 15.50 {
		t.Errorf("Expected duplicate amount counted once (15.50), got %v", s.TotalAmount)
	}
}

func TestAggregateGroupsByDay(t *testing.T) {
	day1, _ := models.ParseDay("2026-08-01")
	day2, _ := models.ParseDay("2026-08-02")

	rows := []models.RawSpendRow{
		{Day: day1, Amount: 10.00, Key: "a"},
		{Day: day2, Amount: 20.00, Key: "b"},
		{Day: day2, Amount: 30.00, Key: "c"},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(summaries))
	}

	byDay := make(map[string]models.DailySpendSummary)
	for _, s := range summaries {
		byDay[models.DayString(s.Day)] = s
	}

	if s := byDay["2026-08-01"]; s.TotalAmount != 10.00 || s.OrderCount != 1 {
		t.Errorf("Day 1: got (%v, %v)", s.TotalAmount, s.OrderCount)
	}
	if s := byDay["2026-08-02"]; s.TotalAmount != 50.00 || s.OrderCount != 2 {
		t.Errorf("Day 2: got (%v, %v)", s.TotalAmount, s.OrderCount)
	}
}

func TestAggregateSameKeyDifferentDays(t *testing.T) {
	day1, _ := models.ParseDay("2026-08-01")
	day2, _ := models.ParseDay("2026-08-02")

	// Dedup is per-day: the same key on two days counts on both.
	rows := []models.RawSpendRow{
		{Day: day1, Amount: 10.00, Key: "x"},
		{Day: day2, Amount: 12.00, Key: "x"},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(summaries))
	}
	for _, s := range summaries {
		if s.OrderCount != 1 {
			t.Errorf("Day %s: expected 1 order, got %d", models.DayString(s.Day), s.OrderCount)
		}
	}
}
