package app

import (
	"time"

	"github.com/averlow/healthdash/internal/models"
	"github.com/averlow/healthdash/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// IndicatorsLoadedMsg contains a freshly computed indicator set.
type IndicatorsLoadedMsg struct {
	Set   *models.IndicatorSet
	Error error
}

// HistoryLoadedMsg contains the trailing daily records for the history tab.
type HistoryLoadedMsg struct {
	Metrics []models.DailyMetric
	Spend   []models.DailySpendSummary
	Error   error
}

// SyncRequestedMsg requests a full synchronization.
type SyncRequestedMsg struct{}

// SyncResultMsg contains the outcome of a synchronization.
type SyncResultMsg struct {
	Error error
}

// ExportRequestedMsg requests a JSON snapshot export.
type ExportRequestedMsg struct{}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Path  string
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
