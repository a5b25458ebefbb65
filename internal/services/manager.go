// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"golang.org/x/sync/singleflight"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/api"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/auth"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/config"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/db"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/services/poller"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/session"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/stats"
)

// errorSpikeFactor triggers a desktop notification when the error count
// grows by at least this factor between two refreshes.
const errorSpikeFactor = 1.5

// snapshotRetentionDays bounds the local history database; older
// snapshots are pruned at startup.
const snapshotRetentionDays = 90

type (
	// AuthenticatedEvent is emitted after a successful login or session restore.
	AuthenticatedEvent struct {
		User *models.User
	}

	// SessionEndedEvent is emitted when the session expired or was revoked.
	SessionEndedEvent struct{}

	// StatsUpdatedEvent is emitted when one resource's stats were refreshed.
	// Exactly one of the stat pointers is set, matching Resource.
	StatsUpdatedEvent struct {
		Resource    string
		Downloads   *models.DownloadStats
		Evaluations *models.EvaluationStats
		Errors      *models.ErrorStats
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (AuthenticatedEvent) isServiceEvent() {}
func (SessionEndedEvent) isServiceEvent()  {}
func (StatsUpdatedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()         {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	auth        *auth.Manager
	client      *api.Client
	poller      *poller.Service
	database    *db.DB
	store       *session.Store
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	expiredGroup   singleflight.Group
	previousErrors *models.ErrorStats
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}

	m.store = session.New(cfg.SessionPath)

	m.auth = auth.New(auth.Config{
		AuthURL:      cfg.APIAuthURL,
		BaseURL:      cfg.APIBaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, m.store, nil)

	// Re-broadcast when the background profile fetch after a session
	// restore completes, so the UI can fill in the user.
	m.auth.OnProfile(func(user *models.User) {
		m.broadcast(AuthenticatedEvent{User: user})
	})

	m.client = api.New(cfg.APIBaseURL, m.auth,
		api.WithSessionExpiredHook(m.onSessionExpired))

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.poller = poller.New(stats.NewService(m.client), poller.Config{
		PollInterval:   cfg.StatsRefreshInterval,
		MaxConcurrent:  3,
		RequestTimeout: 30 * time.Second,
	})

	if pruned, err := m.database.PruneSnapshots(snapshotRetentionDays); err != nil {
		logger.Warn("failed to prune snapshot history", "error", err)
	} else if pruned > 0 {
		logger.Info("pruned old snapshots", "rows", pruned)
	}

	// Seed the spike baseline from the last recorded errors snapshot so
	// the first refresh after a restart still has something to compare to.
	if last, err := m.database.GetLatestSnapshot(stats.ResourceErrors); err == nil && last != nil {
		m.previousErrors = &models.ErrorStats{
			Total:   last.Total,
			Android: int(last.Android),
			IOS:     int(last.IOS),
			Exact:   last.Exact,
		}
	}

	go m.routeEvents()

	return m, nil
}

// Auth exposes the session state machine to the UI.
func (m *Manager) Auth() *auth.Manager {
	return m.auth
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.poller.Events():
			m.handlePollerEvent(event)

		case event := <-m.store.Events():
			m.handleStoreEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handlePollerEvent converts and broadcasts stat refresh events.
func (m *Manager) handlePollerEvent(event poller.Event) {
	switch event.Type {
	case poller.EventStatsUpdated:
		m.broadcast(StatsUpdatedEvent{
			Resource:    event.Resource,
			Downloads:   event.Downloads,
			Evaluations: event.Evaluations,
			Errors:      event.Errors,
		})

		go m.persistSnapshot(event)

		if event.Errors != nil {
			m.checkErrorSpike(event.Errors)
		}

	case poller.EventStatsError:
		if api.KindOf(event.Error) == api.KindSessionExpired {
			// The client hook already broadcast the session end
			return
		}
		m.broadcast(ErrorEvent{
			Service: "stats",
			Error:   event.Error,
		})
	}
}

// handleStoreEvent reacts to external changes of the session file, e.g.
// another process signing out.
func (m *Manager) handleStoreEvent(event session.Event) {
	switch event.Type {
	case session.EventChanged, session.EventCleared:
		if !m.auth.Authenticated() {
			return
		}
		if !m.auth.CheckSession(context.Background()) {
			m.auth.Logout()
			m.poller.Stop()
			m.broadcast(SessionEndedEvent{})
		}

	case session.EventError:
		m.broadcast(ErrorEvent{
			Service: "session",
			Error:   event.Error,
		})
	}
}

// persistSnapshot records one refreshed stat in the local history database.
func (m *Manager) persistSnapshot(event poller.Event) {
	snapshot := models.StatSnapshot{Resource: event.Resource}

	switch {
	case event.Downloads != nil:
		snapshot.Total = event.Downloads.Total
		snapshot.Android = float64(event.Downloads.Android)
		snapshot.IOS = float64(event.Downloads.IOS)
		snapshot.Exact = event.Downloads.Exact

	case event.Evaluations != nil:
		snapshot.Total = event.Evaluations.Total
		snapshot.Android = event.Evaluations.Android
		snapshot.IOS = event.Evaluations.IOS
		snapshot.Average = event.Evaluations.Average
		snapshot.Exact = event.Evaluations.Exact

	case event.Errors != nil:
		snapshot.Total = event.Errors.Total
		snapshot.Android = float64(event.Errors.Android)
		snapshot.IOS = float64(event.Errors.IOS)
		snapshot.Exact = event.Errors.Exact

	default:
		return
	}

	if err := m.database.InsertSnapshot(&snapshot); err != nil {
		logger.Error("failed to persist snapshot", "resource", event.Resource, "error", err)
	}
}

// checkErrorSpike notifies when the error count jumps between refreshes.
func (m *Manager) checkErrorSpike(current *models.ErrorStats) {
	m.mu.Lock()
	previous := m.previousErrors
	m.previousErrors = current
	m.mu.Unlock()

	if previous == nil || previous.Total == 0 {
		return
	}

	if float64(current.Total) >= float64(previous.Total)*errorSpikeFactor {
		title := "CONVICTI: error spike"
		body := fmt.Sprintf("Errors went from %d to %d since the last refresh", previous.Total, current.Total)
		_ = beeep.Notify(title, body, "")
	}
}

// onSessionExpired handles a terminal authorization failure reported by
// the API client. Concurrent failures collapse into one notification.
func (m *Manager) onSessionExpired() {
	_, _, _ = m.expiredGroup.Do("expired", func() (any, error) {
		m.poller.Stop()
		m.broadcast(SessionEndedEvent{})
		_ = beeep.Notify("CONVICTI", "Your session expired. Please sign in again.", "")
		return nil, nil
	})
}

// Login signs in with the given credentials and starts stat polling on
// success. Failure details are readable via Auth().Err().
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	if !m.auth.Login(ctx, username, password) {
		return false
	}

	m.poller.Start()
	m.broadcast(AuthenticatedEvent{User: m.auth.User()})
	return true
}

// RestoreSession attempts to resume a persisted session without
// credentials, starting stat polling on success.
func (m *Manager) RestoreSession(ctx context.Context) bool {
	if !m.auth.CheckSession(ctx) {
		return false
	}

	m.poller.Start()
	m.broadcast(AuthenticatedEvent{User: m.auth.User()})
	return true
}

// Logout ends the session and stops polling.
func (m *Manager) Logout() {
	m.poller.Stop()
	m.auth.Logout()
	m.broadcast(SessionEndedEvent{})
}

// RefreshStats triggers an immediate refresh cycle.
func (m *Manager) RefreshStats() {
	go m.poller.RefreshAll()
}

// Stats returns the last cached result for each resource; entries are nil
// before their first successful refresh.
func (m *Manager) Stats() (*models.DownloadStats, *models.EvaluationStats, *models.ErrorStats) {
	return m.poller.Downloads(), m.poller.Evaluations(), m.poller.Errors()
}

// History returns a resource's persisted snapshots inside the time range.
func (m *Manager) History(resource string, timeRange models.TimeRange) ([]models.StatSnapshot, error) {
	return m.database.GetSnapshotHistory(resource, timeRange)
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

// Close shuts down all services.
func (m *Manager) Close() error {
	close(m.stopChan)

	_ = m.poller.Close()
	_ = m.store.Close()

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
