package spendfeed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/averlow/healthdash/internal/logger"
	"github.com/averlow/healthdash/internal/models"
)

// Store is the slice of the record store the importer needs.
type Store interface {
	UpsertDailySpend(summary models.DailySpendSummary) error
}

// Service fetches, parses and aggregates the spend feed. The feed source is
// either an http(s) URL or a local file path.
type Service struct {
	store      Store
	source     string
	httpClient *http.Client
}

// New creates a feed importer for the given source.
func New(store Store, source string) *Service {
	return &Service{
		store:  store,
		source: source,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Source returns the configured feed source.
func (s *Service) Source() string {
	return s.source
}

// IsLocalFile reports whether the feed source is a filesystem path.
func (s *Service) IsLocalFile() bool {
	return !strings.HasPrefix(s.source, "http://") && !strings.HasPrefix(s.source, "https://")
}

// Import fetches the feed, aggregates it and upserts one summary per day
// present in the feed. It returns the number of days written.
func (s *Service) Import(ctx context.Context) (int, error) {
	rows, err := s.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return s.StoreRows(rows)
}

// Fetch retrieves and parses the feed without touching the store, so the
// orchestrator can run it concurrently with other fetches and merge later.
func (s *Service) Fetch(ctx context.Context) ([]models.RawSpendRow, error) {
	records, err := s.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	return ParseRecords(records)
}

// StoreRows aggregates parsed rows and upserts one summary per day.
//
// Every import re-reads the full feed and replaces each covered day's
// stored aggregate. A day whose rows have rolled off the feed's retention
// window keeps its last stored aggregate only until the feed next mentions
// that day; this mirrors the feed's published semantics and is deliberately
// not "fixed" here.
func (s *Service) StoreRows(rows []models.RawSpendRow) (int, error) {
	if len(rows) == 0 {
		// An empty feed is a no-op, not an error.
		logger.Info("spend feed empty, nothing to import")
		return 0, nil
	}

	summaries := Aggregate(rows)
	written := 0
	for _, summary := range summaries {
		if err := s.store.UpsertDailySpend(summary); err != nil {
			return written, err
		}
		written++
	}

	logger.Info("imported spend feed", "rows", len(rows), "days", written)
	return written, nil
}

func (s *Service) fetchRecords(ctx context.Context) ([][]string, error) {
	var reader io.ReadCloser

	if s.IsLocalFile() {
		f, err := os.Open(s.source)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("cannot open feed file: %v", err)}
		}
		reader = f
	} else {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("bad feed URL: %v", err)}
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("feed fetch failed: %v", err)}
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, &ParseError{Reason: fmt.Sprintf("feed returned status %d", resp.StatusCode)}
		}
		reader = resp.Body
	}
	defer func() { _ = reader.Close() }()

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // rows with wrong column counts are skipped per-row
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("undecodable feed: %v", err)}
	}

	return records, nil
}
