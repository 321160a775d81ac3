// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Sync    bool
	History bool
	Export  bool
}

// State holds the shared application state read by every tab.
type State struct {
	mu sync.RWMutex

	Indicators *models.IndicatorSet
	Metrics    []models.DailyMetric
	Spend      []models.DailySpendSummary

	Loading LoadingState

	LastSynced  time.Time
	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "sync":
		s.Loading.Sync = loading
	case "history":
		s.Loading.History = loading
	case "export":
		s.Loading.Export = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Sync ||
		s.Loading.History ||
		s.Loading.Export
}

// IsSyncing returns true while a sync is in flight.
func (s *State) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Sync
}

// SetIndicators replaces the current indicator set.
func (s *State) SetIndicators(set *models.IndicatorSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Indicators = set
	s.LastUpdated = time.Now()
}

// GetIndicators returns the current indicator set, or nil before the first
// compute completes.
func (s *State) GetIndicators() *models.IndicatorSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Indicators
}

// SetHistory replaces the cached daily records shown in the history tab.
func (s *State) SetHistory(metrics []models.DailyMetric, spend []models.DailySpendSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metrics = metrics
	s.Spend = spend
	s.LastUpdated = time.Now()
}

// GetMetrics returns a copy of the cached daily metrics.
func (s *State) GetMetrics() []models.DailyMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make([]models.DailyMetric, len(s.Metrics))
	copy(metrics, s.Metrics)
	return metrics
}

// GetSpend returns a copy of the cached daily spend summaries.
func (s *State) GetSpend() []models.DailySpendSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spend := make([]models.DailySpendSummary, len(s.Spend))
	copy(spend, s.Spend)
	return spend
}

// SetLastSynced records when the most recent sync finished.
func (s *State) SetLastSynced(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastSynced = t
}

// GetLastSynced returns when the most recent sync finished.
func (s *State) GetLastSynced() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastSynced
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
