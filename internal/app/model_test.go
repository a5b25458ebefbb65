package app

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/services"
)

type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func signedInModel() *Model {
	m := NewModel(nil)
	m.state.SetAuthenticated(true)
	m.state.SetUser(&models.User{Name: "Ana", Email: "ana@convicti.com.br"})
	return m
}

func TestNewModel(t *testing.T) {
	m := NewModel(nil)
	if m == nil {
		t.Fatal("NewModel returned nil")
	}
	if m.activeTab != TabDashboard {
		t.Errorf("activeTab = %v, want TabDashboard", m.activeTab)
	}
	if len(m.tabNames) != 3 {
		t.Errorf("tabNames len = %d, want 3", len(m.tabNames))
	}
	if m.GetState() == nil {
		t.Error("GetState returned nil")
	}
	if m.GetCommands() == nil {
		t.Error("GetCommands returned nil")
	}
	if m.IsReady() {
		t.Error("model should not be ready before a window size message")
	}
}

func TestModel_Init(t *testing.T) {
	m := NewModel(nil)
	if m.Init() == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(*Model)

	if m.GetWidth() != 120 {
		t.Errorf("width = %d, want 120", m.GetWidth())
	}
	if m.GetHeight() != 40 {
		t.Errorf("height = %d, want 40", m.GetHeight())
	}
	if !m.IsReady() {
		t.Error("model should be ready after window size message")
	}
}

func TestModel_TabSwitch(t *testing.T) {
	m := signedInModel()

	updated, cmd := m.Update(keyMsg("2"))
	m = updated.(*Model)

	if m.GetActiveTab() != TabHistory {
		t.Errorf("activeTab = %v, want TabHistory", m.GetActiveTab())
	}
	if cmd == nil {
		t.Fatal("tab switch should emit a command")
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		found := false
		for _, c := range batch {
			if c == nil {
				continue
			}
			if sw, ok := c().(TabSwitchMsg); ok && sw.Tab == TabHistory {
				found = true
			}
		}
		if !found {
			t.Error("expected a TabSwitchMsg for TabHistory in batch")
		}
	} else if sw, ok := msg.(TabSwitchMsg); !ok || sw.Tab != TabHistory {
		t.Errorf("expected TabSwitchMsg for TabHistory, got %v", msg)
	}
}

func TestModel_TabSwitchMsg(t *testing.T) {
	m := signedInModel()

	updated, _ := m.Update(TabSwitchMsg{Tab: TabInfo})
	m = updated.(*Model)

	if m.GetActiveTab() != TabInfo {
		t.Errorf("activeTab = %v, want TabInfo", m.GetActiveTab())
	}
}

func TestModel_NextPrevTab(t *testing.T) {
	m := signedInModel()

	updated, _ := m.Update(keyMsg("tab"))
	m = updated.(*Model)
	if m.GetActiveTab() != TabHistory {
		t.Errorf("after next tab, activeTab = %v, want TabHistory", m.GetActiveTab())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(*Model)
	if m.GetActiveTab() != TabDashboard {
		t.Errorf("after prev tab, activeTab = %v, want TabDashboard", m.GetActiveTab())
	}
}

func TestModel_Tick(t *testing.T) {
	m := NewModel(nil)

	_, cmd := m.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should schedule the next tick")
	}
}

func TestModel_Quit(t *testing.T) {
	m := signedInModel()

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
}

func TestModel_QuitWhileSignedOut(t *testing.T) {
	m := NewModel(nil)

	// 'q' belongs to the login form while signed out.
	_, cmd := m.Update(keyMsg("q"))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("'q' should not quit while signed out")
		}
	}

	_, cmd = m.Update(keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit while signed out")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg, got %T", cmd())
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := signedInModel()

	updated, _ := m.Update(keyMsg("?"))
	m = updated.(*Model)
	if !m.showHelp {
		t.Error("help should be shown after ?")
	}

	updated, _ = m.Update(keyMsg("?"))
	m = updated.(*Model)
	if m.showHelp {
		t.Error("help should be hidden after second ?")
	}
}

func TestModel_LoginFlow(t *testing.T) {
	m := NewModel(nil)

	user := &models.User{Name: "Ana", Email: "ana@convicti.com.br"}
	updated, cmd := m.Update(LoginResultMsg{Success: true, User: user})
	m = updated.(*Model)

	if !m.state.IsAuthenticated() {
		t.Error("model should be authenticated after successful login result")
	}
	if !m.state.Loading.Stats {
		t.Error("stats loading should start after login")
	}
	if cmd == nil {
		t.Error("successful login should emit a notification command")
	}
}

func TestModel_LoginWithoutProfile(t *testing.T) {
	m := NewModel(nil)

	// The profile fetch after login is best-effort; its failure must
	// not keep the user on the login screen.
	updated, cmd := m.Update(LoginResultMsg{Success: true, User: nil})
	m = updated.(*Model)

	if !m.state.IsAuthenticated() {
		t.Error("login without a profile should still authenticate")
	}
	if m.state.GetUser() != nil {
		t.Error("no profile should be stored yet")
	}
	if cmd == nil {
		t.Error("successful login should emit a notification command")
	}
}

func TestModel_LoginFailure(t *testing.T) {
	m := NewModel(nil)

	updated, _ := m.Update(LoginResultMsg{Success: false, Error: "invalid credentials"})
	m = updated.(*Model)

	if m.state.IsAuthenticated() {
		t.Error("model should not be authenticated after failed login")
	}
	if m.state.Loading.Auth {
		t.Error("auth loading should be cleared")
	}
}

func TestModel_SessionRestored(t *testing.T) {
	m := NewModel(nil)

	updated, _ := m.Update(SessionRestoredMsg{Success: true, User: &models.User{Name: "Ana"}})
	m = updated.(*Model)

	if !m.state.IsAuthenticated() {
		t.Error("model should be authenticated after session restore")
	}
}

func TestModel_SessionRestoredWithoutProfile(t *testing.T) {
	m := NewModel(nil)

	// Session restore fetches the profile in the background, so the
	// user is typically nil when this message arrives.
	updated, _ := m.Update(SessionRestoredMsg{Success: true, User: nil})
	m = updated.(*Model)

	if !m.state.IsAuthenticated() {
		t.Error("restore without a profile should still authenticate")
	}

	// The profile lands later through an AuthenticatedEvent.
	m.handleServiceEvent(services.AuthenticatedEvent{
		User: &models.User{Name: "Ana", Email: "ana@convicti.com.br"},
	})
	if got := m.state.GetUser(); got == nil || got.Name != "Ana" {
		t.Errorf("late profile should be stored, got %v", got)
	}
	if !m.state.IsAuthenticated() {
		t.Error("state should stay authenticated")
	}
}

func TestModel_Logout(t *testing.T) {
	m := signedInModel()
	m.activeTab = TabInfo
	m.state.SetDownloads(&models.DownloadStats{Total: 1})

	updated, _ := m.Update(LogoutMsg{})
	m = updated.(*Model)

	if m.state.IsAuthenticated() {
		t.Error("model should not be authenticated after logout")
	}
	if m.GetActiveTab() != TabDashboard {
		t.Error("logout should reset the active tab")
	}
	if m.state.HasStats() {
		t.Error("logout should clear cached stats")
	}
}

func TestModel_StatsLoaded(t *testing.T) {
	m := signedInModel()
	m.state.SetLoading("stats", true)

	updated, _ := m.Update(StatsLoadedMsg{
		Downloads:   &models.DownloadStats{Total: 150},
		Evaluations: &models.EvaluationStats{Average: 4.2},
	})
	m = updated.(*Model)

	if m.state.Loading.Stats {
		t.Error("stats loading should be cleared")
	}
	if got := m.state.GetDownloads(); got == nil || got.Total != 150 {
		t.Errorf("downloads = %v", got)
	}
	if got := m.state.GetEvaluations(); got == nil || got.Average != 4.2 {
		t.Errorf("evaluations = %v", got)
	}
	if m.state.GetErrors() != nil {
		t.Error("errors should remain unset")
	}
}

func TestModel_Notifications(t *testing.T) {
	m := NewModel(nil)

	updated, cmd := m.Update(AddNotificationMsg{
		Type:     NotificationInfo,
		Message:  "hello",
		Duration: time.Minute,
	})
	m = updated.(*Model)

	notifs := m.state.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("notifications len = %d, want 1", len(notifs))
	}
	if cmd == nil {
		t.Error("timed notification should schedule its removal")
	}

	updated, _ = m.Update(RemoveNotificationMsg{ID: notifs[0].ID})
	m = updated.(*Model)
	if len(m.state.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	m := NewModel(nil)

	_, cmd := m.Update(ErrorMsg{Error: testError{msg: "boom"}})
	if cmd == nil {
		t.Fatal("ErrorMsg should emit a notification command")
	}

	msg := cmd()
	addMsg, ok := msg.(AddNotificationMsg)
	if !ok {
		t.Fatalf("expected AddNotificationMsg, got %T", msg)
	}
	if addMsg.Type != NotificationError {
		t.Errorf("Type = %v, want NotificationError", addMsg.Type)
	}
	if !strings.Contains(addMsg.Message, "boom") {
		t.Errorf("Message = %q, want it to mention boom", addMsg.Message)
	}
}

func TestModel_ServiceEvents(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		m := NewModel(nil)
		m.handleServiceEvent(services.AuthenticatedEvent{
			User: &models.User{Name: "Ana"},
		})
		if !m.state.IsAuthenticated() {
			t.Error("AuthenticatedEvent should set the user")
		}
		if !m.state.Loading.Stats {
			t.Error("AuthenticatedEvent should start the stats load")
		}
	})

	t.Run("authenticated without profile", func(t *testing.T) {
		m := NewModel(nil)
		m.handleServiceEvent(services.AuthenticatedEvent{User: nil})
		if !m.state.IsAuthenticated() {
			t.Error("AuthenticatedEvent should authenticate even without a profile")
		}
	})

	t.Run("nil user does not clobber profile", func(t *testing.T) {
		m := signedInModel()
		m.handleServiceEvent(services.AuthenticatedEvent{User: nil})
		if m.state.GetUser() == nil {
			t.Error("an event without a profile should keep the stored one")
		}
	})

	t.Run("session ended", func(t *testing.T) {
		m := signedInModel()
		cmd := m.handleServiceEvent(services.SessionEndedEvent{})
		if m.state.IsAuthenticated() {
			t.Error("SessionEndedEvent should clear the session")
		}
		if cmd == nil {
			t.Error("session expiry should warn the user")
		}
	})

	t.Run("session ended while signed out", func(t *testing.T) {
		m := NewModel(nil)
		cmd := m.handleServiceEvent(services.SessionEndedEvent{})
		if cmd != nil {
			t.Error("no warning expected when already signed out")
		}
	})

	t.Run("stats updated", func(t *testing.T) {
		m := signedInModel()
		m.state.SetLoading("stats", true)
		m.handleServiceEvent(services.StatsUpdatedEvent{
			Resource:  "/downloads",
			Downloads: &models.DownloadStats{Total: 42},
		})
		if m.state.Loading.Stats {
			t.Error("stats loading should be cleared")
		}
		if got := m.state.GetDownloads(); got == nil || got.Total != 42 {
			t.Errorf("downloads = %v", got)
		}
	})

	t.Run("error", func(t *testing.T) {
		m := NewModel(nil)
		cmd := m.handleServiceEvent(services.ErrorEvent{
			Service: "stats",
			Error:   testError{msg: "fetch failed"},
		})
		if cmd == nil {
			t.Fatal("ErrorEvent should emit a notification command")
		}
		addMsg, ok := cmd().(AddNotificationMsg)
		if !ok {
			t.Fatalf("expected AddNotificationMsg, got %T", cmd())
		}
		if !strings.Contains(addMsg.Message, "stats") {
			t.Errorf("Message = %q, want it to name the service", addMsg.Message)
		}
	})
}

func TestModel_View(t *testing.T) {
	m := NewModel(nil)

	// Before the first window size message
	view := m.View()
	if !strings.Contains(view, "Loading") {
		t.Error("view should show loading before ready")
	}

	// Signed out without a login screen wired
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(*Model)
	view = m.View()
	if !strings.Contains(view, "Signed out") {
		t.Error("signed out view should say so")
	}

	// Signed in, no tabs wired yet
	m.state.SetUser(&models.User{Name: "Ana", Email: "ana@convicti.com.br"})
	view = m.View()
	if !strings.Contains(view, "Dashboard") {
		t.Error("view should contain the navbar")
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("view should contain the placeholder")
	}
	if !strings.Contains(view, "ana@convicti.com.br") {
		t.Error("navbar should show the signed-in user")
	}
}

func TestModel_ViewHelp(t *testing.T) {
	m := signedInModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(*Model)

	m.showHelp = true
	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("help overlay should render")
	}
}

func TestModel_ViewNotifications(t *testing.T) {
	m := signedInModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(*Model)

	m.state.AddNotification(NotificationSuccess, "saved", time.Minute)
	view := m.View()
	if !strings.Contains(view, "saved") {
		t.Error("toast should render in the view")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		id   TabID
		want string
	}{
		{TabDashboard, "Dashboard"},
		{TabHistory, "History"},
		{TabInfo, "Info"},
		{TabID(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("TabID(%d).String() = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp returned no bindings")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp returned no bindings")
	}
	if !key.Matches(keyMsg("1"), km.Tab1) {
		t.Error("'1' should match Tab1")
	}
	if !key.Matches(keyMsg("r"), km.Refresh) {
		t.Error("'r' should match Refresh")
	}
}

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()

	if s.ActiveTab.Render("x") == "" {
		t.Error("ActiveTab should render")
	}
	if s.Toast.Render("x") == "" {
		t.Error("Toast should render")
	}
}
