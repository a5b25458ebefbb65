package app

import (
	"time"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/services"
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

// LoginSubmitMsg carries credentials submitted from the login screen.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// LoginResultMsg contains the outcome of a login attempt.
type LoginResultMsg struct {
	Success bool
	User    *models.User
	Error   string
}

// SessionRestoredMsg contains the outcome of restoring a stored session.
type SessionRestoredMsg struct {
	Success bool
	User    *models.User
}

// LogoutMsg requests ending the current session.
type LogoutMsg struct{}

// StatsLoadedMsg contains the currently cached statistics.
type StatsLoadedMsg struct {
	Downloads   *models.DownloadStats
	Evaluations *models.EvaluationStats
	Errors      *models.ErrorStats
}

// LoadHistoryMsg requests loading snapshot history for a resource.
type LoadHistoryMsg struct {
	Resource  string
	TimeRange models.TimeRange
}

// HistoryLoadedMsg contains loaded snapshot history.
type HistoryLoadedMsg struct {
	Resource  string
	TimeRange models.TimeRange
	Snapshots []models.StatSnapshot
	Error     error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all" or "stats"
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

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
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

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}
