package app

import (
	"testing"
	"time"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.IsAuthenticated() {
		t.Error("new state should not be authenticated")
	}
	if s.HasStats() {
		t.Error("new state should have no stats")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("stats", true)
	if !s.Loading.Stats {
		t.Error("Stats loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}
	if !s.IsStatsLoading() {
		t.Error("IsStatsLoading should be true")
	}

	s.SetLoading("stats", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	s.SetLoading("auth", true)
	if !s.AnyLoading() {
		t.Error("AnyLoading should report auth loading")
	}

	s.SetLoading("auth", false)
	s.SetLoading("history", true)
	if !s.AnyLoading() {
		t.Error("AnyLoading should report history loading")
	}
}

func TestState_User(t *testing.T) {
	s := NewState()

	user := &models.User{Name: "Ana", Email: "ana@convicti.com.br"}
	s.SetUser(user)

	if got := s.GetUser(); got == nil || got.Email != "ana@convicti.com.br" {
		t.Errorf("GetUser = %v", got)
	}

	// The profile is independent of the session: a stored profile does
	// not imply authentication, and vice versa.
	if s.IsAuthenticated() {
		t.Error("SetUser alone should not authenticate")
	}
}

func TestState_Authenticated(t *testing.T) {
	s := NewState()

	s.SetAuthenticated(true)
	if !s.IsAuthenticated() {
		t.Error("state should be authenticated")
	}
	if s.GetUser() != nil {
		t.Error("authentication should not invent a profile")
	}

	s.SetAuthenticated(false)
	if s.IsAuthenticated() {
		t.Error("state should be de-authenticated")
	}
}

func TestState_ClearSession(t *testing.T) {
	s := NewState()
	s.SetAuthenticated(true)
	s.SetUser(&models.User{Name: "Ana"})
	s.SetDownloads(&models.DownloadStats{Total: 10})
	s.SetEvaluations(&models.EvaluationStats{Total: 5})
	s.SetErrors(&models.ErrorStats{Total: 2})

	s.ClearSession()

	if s.IsAuthenticated() {
		t.Error("ClearSession should de-authenticate")
	}
	if s.GetUser() != nil {
		t.Error("ClearSession should drop the profile")
	}
	if s.HasStats() {
		t.Error("ClearSession should drop cached stats")
	}
	if s.GetDownloads() != nil || s.GetEvaluations() != nil || s.GetErrors() != nil {
		t.Error("all stat caches should be nil after ClearSession")
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()

	s.SetDownloads(&models.DownloadStats{Total: 100, Android: 60, IOS: 40})
	if got := s.GetDownloads(); got == nil || got.Total != 100 {
		t.Errorf("GetDownloads = %v", got)
	}
	if !s.HasStats() {
		t.Error("HasStats should be true after SetDownloads")
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}

	s.SetEvaluations(&models.EvaluationStats{Average: 4.2})
	if got := s.GetEvaluations(); got == nil || got.Average != 4.2 {
		t.Errorf("GetEvaluations = %v", got)
	}

	s.SetErrors(&models.ErrorStats{Total: 7})
	if got := s.GetErrors(); got == nil || got.Total != 7 {
		t.Errorf("GetErrors = %v", got)
	}
}

func TestState_TimeSinceUpdate(t *testing.T) {
	s := NewState()
	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be zero before any update")
	}

	s.SetDownloads(&models.DownloadStats{})
	time.Sleep(time.Millisecond)
	if s.TimeSinceUpdate() <= 0 {
		t.Error("TimeSinceUpdate should be positive after an update")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationCap(t *testing.T) {
	s := NewState()

	for i := 0; i < 15; i++ {
		s.AddNotification(NotificationInfo, "n", time.Minute)
	}
	if got := len(s.GetNotifications()); got != 10 {
		t.Errorf("notifications capped at 10, got %d", got)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	// Update message
	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
