// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"golang.org/x/sync/errgroup"

	"github.com/averlow/healthdash/internal/config"
	"github.com/averlow/healthdash/internal/db"
	"github.com/averlow/healthdash/internal/export"
	"github.com/averlow/healthdash/internal/logger"
	"github.com/averlow/healthdash/internal/models"
	"github.com/averlow/healthdash/internal/services/health"
	"github.com/averlow/healthdash/internal/services/indicators"
	"github.com/averlow/healthdash/internal/services/reconcile"
	"github.com/averlow/healthdash/internal/services/spendfeed"
)

// fetchWindowDays is how far back each sync asks the provider for samples.
const fetchWindowDays = 30

// ErrSyncInProgress is returned when Sync is called while another sync is
// still running. Syncs are never queued or interleaved.
var ErrSyncInProgress = errors.New("sync already in progress")

type (
	// SyncStartedEvent is emitted when a sync begins.
	SyncStartedEvent struct{}

	// MetricsSyncedEvent is emitted after provider samples are merged.
	MetricsSyncedEvent struct {
		Days int
	}

	// SpendSyncedEvent is emitted after the feed import is merged.
	SpendSyncedEvent struct {
		Days int
	}

	// SyncCompletedEvent is emitted when a full sync finishes.
	SyncCompletedEvent struct {
		FinishedAt time.Time
	}

	// SyncErrorEvent is emitted when a sync stage fails structurally.
	SyncErrorEvent struct {
		Stage string
		Err   error
	}

	// FeedChangedEvent is emitted when the watched local feed file changes.
	FeedChangedEvent struct{}

	// IndicatorsUpdatedEvent carries freshly computed indicators.
	IndicatorsUpdatedEvent struct {
		Set *models.IndicatorSet
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SyncStartedEvent) isServiceEvent()       {}
func (MetricsSyncedEvent) isServiceEvent()     {}
func (SpendSyncedEvent) isServiceEvent()       {}
func (SyncCompletedEvent) isServiceEvent()     {}
func (SyncErrorEvent) isServiceEvent()         {}
func (FeedChangedEvent) isServiceEvent()       {}
func (IndicatorsUpdatedEvent) isServiceEvent() {}

// Manager wires the provider, the feed importer, the reconciler and the
// indicator engine together and owns the sync sequence.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	provider    health.Provider
	reconciler  *reconcile.Service
	feed        *spendfeed.Service
	engine      *indicators.Engine
	watcher     *spendfeed.Watcher
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	syncing     atomic.Bool
	notify      func(title, body string)
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		notify: func(title, body string) {
			_ = beeep.Notify(title, body, "")
		},
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.provider = health.NewClient(cfg.HealthEndpoint)
	m.reconciler = reconcile.New(m.database)
	m.feed = spendfeed.New(m.database, cfg.SpendFeedURL)
	m.engine = indicators.New(m.database, cfg.GoalWeight, cfg.ActiveStepThreshold)

	if m.feed.IsLocalFile() {
		m.watcher, err = spendfeed.NewWatcher(cfg.SpendFeedURL)
		if err != nil {
			// The feed stays manually refreshable without a watcher.
			logger.Warn("feed watcher unavailable", "error", err)
			m.watcher = nil
		}
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents forwards watcher signals to subscribers.
func (m *Manager) routeEvents() {
	var changes <-chan struct{}
	if m.watcher != nil {
		changes = m.watcher.Changes()
	}

	for {
		select {
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			m.broadcast(FeedChangedEvent{})

		case <-m.stopChan:
			return
		}
	}
}

// Sync runs one full synchronization: provider authorization, concurrent
// provider and feed fetches joined fail-fast, then sequential merges and an
// indicator recompute. Re-entrant calls are rejected, not queued.
//
// Upserts already written when a later stage fails stay written; per-record
// atomicity is the store's job, cross-sync rollback is nobody's.
func (m *Manager) Sync(ctx context.Context) error {
	if !m.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer m.syncing.Store(false)

	if m.cfg.SyncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.SyncTimeout)
		defer cancel()
	}

	m.broadcast(SyncStartedEvent{})

	if err := m.provider.RequestAccess(ctx); err != nil {
		return m.failSync("auth", err)
	}

	now := time.Now()
	from := models.DayKey(now).AddDate(0, 0, -fetchWindowDays)

	weightBefore := m.latestWeight()

	// The two sources touch disjoint external resources; fetch them
	// concurrently and merge sequentially once both are in hand.
	var (
		batch []models.DailyMetric
		rows  []models.RawSpendRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batch, err = m.provider.FetchDailySamples(gctx, from, now)
		return wrapStage("provider", err)
	})
	g.Go(func() error {
		var err error
		rows, err = m.feed.Fetch(gctx)
		return wrapStage("feed", err)
	})
	if err := g.Wait(); err != nil {
		var stageErr *stageError
		if errors.As(err, &stageErr) {
			return m.failSync(stageErr.stage, stageErr.err)
		}
		return m.failSync("fetch", err)
	}

	metricDays, err := m.reconciler.Apply(batch)
	if err != nil {
		return m.failSync("reconcile", err)
	}
	m.broadcast(MetricsSyncedEvent{Days: metricDays})

	spendDays, err := m.feed.StoreRows(rows)
	if err != nil {
		return m.failSync("spend", err)
	}
	m.broadcast(SpendSyncedEvent{Days: spendDays})

	m.checkGoalWeight(weightBefore)

	if set, err := m.engine.Compute(now); err != nil {
		logger.Error("failed to recompute indicators", "error", err)
	} else {
		m.broadcast(IndicatorsUpdatedEvent{Set: set})
	}

	m.broadcast(SyncCompletedEvent{FinishedAt: time.Now()})
	logger.Info("sync completed", "metricDays", metricDays, "spendDays", spendDays)
	return nil
}

// stageError tags a fetch failure with the stage it happened in.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return fmt.Sprintf("%s: %v", e.stage, e.err) }
func (e *stageError) Unwrap() error { return e.err }

func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: stage, err: err}
}

func (m *Manager) failSync(stage string, err error) error {
	logger.Error("sync failed", "stage", stage, "error", err)
	m.broadcast(SyncErrorEvent{Stage: stage, Err: err})
	m.notify("Sync failed", fmt.Sprintf("%s: %v", stage, err))
	return err
}

// latestWeight returns the most recent stored weight, or nil.
func (m *Manager) latestWeight() *float64 {
	tomorrow := models.DayKey(time.Now()).AddDate(0, 0, 1)
	w, err := m.database.LatestWeightBefore(tomorrow)
	if err != nil {
		logger.Error("failed to read latest weight", "error", err)
		return nil
	}
	return w
}

// checkGoalWeight sends a desktop notification the first time the stored
// weight crosses the goal downwards.
func (m *Manager) checkGoalWeight(before *float64) {
	after := m.latestWeight()
	if after == nil || *after > m.cfg.GoalWeight {
		return
	}
	if before != nil && *before <= m.cfg.GoalWeight {
		return // already at goal before this sync
	}
	m.notify("Goal weight reached",
		fmt.Sprintf("Latest weight %.1f lbs is at or below your %.1f lbs goal.", *after, m.cfg.GoalWeight))
}

// Indicators recomputes the full indicator set as of now.
func (m *Manager) Indicators() (*models.IndicatorSet, error) {
	return m.engine.Compute(time.Now())
}

// Export writes a JSON snapshot of the trailing week to the configured path.
func (m *Manager) Export() (string, error) {
	path := m.cfg.ExportPath
	if err := export.WriteFile(m.database, path, time.Now(), export.DefaultWindowDays); err != nil {
		return "", err
	}
	return path, nil
}

// RecentMetrics returns the trailing days of health records, for history
// views. Records come back unordered; the caller sorts.
func (m *Manager) RecentMetrics(days int) ([]models.DailyMetric, error) {
	today := models.DayKey(time.Now())
	return m.database.MetricsInRange(today.AddDate(0, 0, -days), today.AddDate(0, 0, 1))
}

// RecentSpend returns the trailing days of spend summaries.
func (m *Manager) RecentSpend(days int) ([]models.DailySpendSummary, error) {
	today := models.DayKey(time.Now())
	return m.database.SpendInRange(today.AddDate(0, 0, -days), today.AddDate(0, 0, 1))
}

// Syncing reports whether a sync is currently running.
func (m *Manager) Syncing() bool {
	return m.syncing.Load()
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Engine returns the indicator engine.
func (m *Manager) Engine() *indicators.Engine {
	return m.engine
}

// Config returns the loaded configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
