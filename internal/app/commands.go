package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// authTimeout bounds a single login or session restore round trip.
	authTimeout = 30 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loginCmd returns a command that authenticates with the given credentials.
func loginCmd(mgr *services.Manager, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		if !mgr.Login(ctx, email, password) {
			return LoginResultMsg{Success: false, Error: mgr.Auth().Err()}
		}
		return LoginResultMsg{Success: true, User: mgr.Auth().User()}
	}
}

// restoreSessionCmd returns a command that tries to resume a stored session.
func restoreSessionCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		if !mgr.RestoreSession(ctx) {
			return SessionRestoredMsg{Success: false}
		}
		return SessionRestoredMsg{Success: true, User: mgr.Auth().User()}
	}
}

// logoutCmd returns a command that ends the current session.
func logoutCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Logout()
		return LogoutMsg{}
	}
}

// loadStatsCmd returns a command that loads the currently cached statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		downloads, evaluations, errs := mgr.Stats()
		return StatsLoadedMsg{
			Downloads:   downloads,
			Evaluations: evaluations,
			Errors:      errs,
		}
	}
}

// refreshStatsCmd returns a command that triggers a background stats refresh.
func refreshStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.RefreshStats()
		return StartLoadingMsg{Resource: "stats"}
	}
}

// loadHistoryCmd returns a command that loads snapshot history for a resource.
func loadHistoryCmd(mgr *services.Manager, resource string, timeRange models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		snapshots, err := mgr.History(resource, timeRange)
		return HistoryLoadedMsg{
			Resource:  resource,
			TimeRange: timeRange,
			Snapshots: snapshots,
			Error:     err,
		}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// WaitForServiceEvent is the public version for use in models.
func WaitForServiceEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return services.WaitForEvent(ch)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// quitCmd returns a command that quits the application.
func quitCmd() tea.Cmd {
	return tea.Quit
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// Login returns a command that authenticates with the given credentials.
func (c *Commands) Login(email, password string) tea.Cmd {
	return loginCmd(c.manager, email, password)
}

// RestoreSession returns a command that resumes a stored session.
func (c *Commands) RestoreSession() tea.Cmd {
	return restoreSessionCmd(c.manager)
}

// Logout returns a command that ends the current session.
func (c *Commands) Logout() tea.Cmd {
	return logoutCmd(c.manager)
}

// LoadStats returns a command that loads cached statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// RefreshStats returns a command that triggers a stats refresh.
func (c *Commands) RefreshStats() tea.Cmd {
	return refreshStatsCmd(c.manager)
}

// LoadHistory returns a command that loads snapshot history.
func (c *Commands) LoadHistory(resource string, timeRange models.TimeRange) tea.Cmd {
	return loadHistoryCmd(c.manager, resource, timeRange)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return quitCmd()
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}
