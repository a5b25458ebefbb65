// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
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
	Auth    bool
	Stats   bool
	History bool
}

// State is the shared application state read by all tabs.
type State struct {
	mu sync.RWMutex

	User          *models.User
	Authenticated bool

	Downloads   *models.DownloadStats
	Evaluations *models.EvaluationStats
	Errors      *models.ErrorStats

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "auth":
		s.Loading.Auth = loading
	case "stats":
		s.Loading.Stats = loading
	case "history":
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Auth || s.Loading.Stats || s.Loading.History
}

// IsStatsLoading returns true if statistics are still being fetched.
func (s *State) IsStatsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Stats
}

// SetAuthenticated records whether a session is active. Kept separate
// from the user profile: the profile fetch is best-effort and may land
// after the session is already established, or not at all.
func (s *State) SetAuthenticated(authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Authenticated = authenticated
}

// SetUser stores the user profile.
func (s *State) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.User = user
}

// GetUser returns the authenticated user, or nil when signed out.
func (s *State) GetUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.User
}

// IsAuthenticated returns true when a user session is active.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

// ClearSession wipes the user and all cached statistics.
func (s *State) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.User = nil
	s.Authenticated = false
	s.Downloads = nil
	s.Evaluations = nil
	s.Errors = nil
}

// SetDownloads updates the cached download statistics.
func (s *State) SetDownloads(stats *models.DownloadStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Downloads = stats
	s.LastUpdated = time.Now()
}

// SetEvaluations updates the cached evaluation statistics.
func (s *State) SetEvaluations(stats *models.EvaluationStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Evaluations = stats
	s.LastUpdated = time.Now()
}

// SetErrors updates the cached error statistics.
func (s *State) SetErrors(stats *models.ErrorStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = stats
	s.LastUpdated = time.Now()
}

// GetDownloads returns the cached download statistics.
func (s *State) GetDownloads() *models.DownloadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Downloads
}

// GetEvaluations returns the cached evaluation statistics.
func (s *State) GetEvaluations() *models.EvaluationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Evaluations
}

// GetErrors returns the cached error statistics.
func (s *State) GetErrors() *models.ErrorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Errors
}

// HasStats returns true once at least one resource has data.
func (s *State) HasStats() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Downloads != nil || s.Evaluations != nil || s.Errors != nil
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

// GetLastUpdated returns the last time statistics were updated.
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
