package spendfeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/averlow/healthdash/internal/db"
	"github.com/averlow/healthdash/internal/models"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func writeFeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write feed file: %v", err)
	}
	return path
}

func TestImportFromFile(t *testing.T) {
	database := newTestDB(t)
	feed := writeFeedFile(t,
		"date,amount,messageid\n"+
			"2026-08-01,12.50,msg-1\n"+
			"2026-08-01,12.50,msg-1\n"+
			"2026-08-02,8.00,msg-2\n")

	svc := New(database, feed)
	if !svc.IsLocalFile() {
		t.Error("Expected file path to be treated as local")
	}

	days, err := svc.Import(context.Background())
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}
	if days != 2 {
		t.Errorf("Expected 2 days written, got %d", days)
	}

	summaries, err := database.AllSpend()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	for _, s := range summaries {
		if models.DayString(s.Day) == "2026-08-01" {
			if s.TotalAmount != 12.50 || s.OrderCount != 1 {
				t.Errorf("Expected deduped (12.50, 1), got (%v, %v)", s.TotalAmount, s.OrderCount)
			}
		}
	}
}

func TestImportFromHTTP(t *testing.T) {
	database := newTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "date,amount,messageid\n2026-08-03,22.10,msg-9\n")
	}))
	t.Cleanup(srv.Close)

	svc := New(database, srv.URL)
	if svc.IsLocalFile() {
		t.Error("Expected URL source to be non-local")
	}

	days, err := svc.Import(context.Background())
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}
	if days != 1 {
		t.Errorf("Expected 1 day written, got %d", days)
	}
}

func TestImportReplacesPriorAggregate(t *testing.T) {
	database := newTestDB(t)
	feed := writeFeedFile(t, "date,amount,messageid\n2026-08-01,10.00,a\n2026-08-01,5.00,b\n")

	svc := New(database, feed)
	if _, err := svc.Import(context.Background()); err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	// The next fetch no longer contains row "a"; the day's aggregate is
	// recomputed from what the feed currently says.
	if err := os.WriteFile(feed, []byte("date,amount,messageid\n2026-08-01,5.00,b\n"), 0o600); err != nil {
		t.Fatalf("Failed to rewrite feed: %v", err)
	}
	if _, err := svc.Import(context.Background()); err != nil {
		t.Fatalf("Failed to re-import: %v", err)
	}

	summaries, err := database.AllSpend()
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].TotalAmount != 5.00 || summaries[0].OrderCount != 1 {
		t.Errorf("Expected replaced aggregate (5.00, 1), got (%v, %v)",
			summaries[0].TotalAmount, summaries[0].OrderCount)
	}
}

func TestImportEmptyFeed(t *testing.T) {
	database := newTestDB(t)
	feed := writeFeedFile(t, "date,amount,messageid\n")

	days, err := New(database, feed).Import(context.Background())
	if err != nil {
		t.Fatalf("Empty feed must be a no-op, got error: %v", err)
	}
	if days != 0 {
		t.Errorf("Expected 0 days written, got %d", days)
	}
}

func TestImportMissingFile(t *testing.T) {
	database := newTestDB(t)
	svc := New(database, filepath.Join(t.TempDir(), "does-not-exist.csv"))

	_, err := svc.Import(context.Background())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError for missing file, got %v", err)
	}
}

func TestImportBadStatus(t *testing.T) {
	database := newTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := New(database, srv.URL).Import(context.Background())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError for non-200 response, got %v", err)
	}
}

func TestImportMissingHeaderColumn(t *testing.T) {
	database := newTestDB(t)
	feed := writeFeedFile(t, "date,amount,notes\n2026-08-01,10.00,lunch\n")

	_, err := New(database, feed).Import(context.Background())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError for missing key column, got %v", err)
	}
}
