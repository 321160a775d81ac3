package spendfeed

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.csv")
	if err := os.WriteFile(path, []byte("date,amount,messageid\n"), 0o600); err != nil {
		t.Fatalf("Failed to write feed file: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(path, []byte("date,amount,messageid\n2026-08-01,5.00,a\n"), 0o600); err != nil {
		t.Fatalf("Failed to rewrite feed file: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a change signal after writing the feed file")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.csv")
	if err := os.WriteFile(path, []byte("date,amount,messageid\n"), 0o600); err != nil {
		t.Fatalf("Failed to write feed file: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(other, []byte("noise"), 0o600); err != nil {
		t.Fatalf("Failed to write other file: %v", err)
	}

	select {
	case <-w.Changes():
		t.Error("Expected no signal for unrelated file writes")
	case <-time.After(500 * time.Millisecond):
	}
}
