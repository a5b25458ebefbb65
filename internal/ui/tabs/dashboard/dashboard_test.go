package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/app"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

func fullAccessUser() *models.User {
	return &models.User{
		Name:        "Ana",
		Email:       "ana@convicti.com.br",
		ProfileName: "Gestor",
		Permissions: []string{
			models.PermissionDownloads,
			models.PermissionEvaluations,
			models.PermissionErrors,
		},
	}
}

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_RefreshKey(t *testing.T) {
	state := app.NewState()
	m := New(state)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("refresh key should return a command")
	}

	msg := cmd()
	refresh, ok := msg.(app.RefreshMsg)
	if !ok {
		t.Fatalf("expected RefreshMsg, got %T", msg)
	}
	if refresh.Resource != "stats" {
		t.Errorf("Resource = %q, want stats", refresh.Resource)
	}
}

func TestModel_View_Loading(t *testing.T) {
	state := app.NewState()
	state.SetLoading("stats", true)
	m := New(state)
	m.SetSize(80, 24)

	view := m.View()
	if !strings.Contains(view, "Fetching statistics") {
		t.Error("view should show the loading spinner before any stats arrive")
	}
}

func TestModel_View_WithStats(t *testing.T) {
	state := app.NewState()
	state.SetUser(fullAccessUser())
	state.SetDownloads(&models.DownloadStats{Total: 150, Android: 90, IOS: 60, Exact: true})
	state.SetEvaluations(&models.EvaluationStats{Total: 80, Average: 4.2, Android: 4.5, IOS: 3.9, Exact: true})
	state.SetErrors(&models.ErrorStats{Total: 30, Android: 20, IOS: 10, Exact: true})

	m := New(state)
	m.SetSize(120, 40)

	view := m.View()
	if !strings.Contains(view, "CONVICTI Dashboard") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(view, "Gestor") {
		t.Error("view should show the profile name")
	}
	if !strings.Contains(view, "150") {
		t.Error("view should show the downloads total")
	}
	if !strings.Contains(view, "4.2") {
		t.Error("view should show the evaluations average")
	}
	if !strings.Contains(view, "Android") {
		t.Error("view should contain the platform legend")
	}
}

func TestModel_View_PermissionGated(t *testing.T) {
	state := app.NewState()
	state.SetUser(&models.User{
		Name:        "Bia",
		ProfileName: "Suporte",
		Permissions: []string{models.PermissionErrors},
	})
	state.SetDownloads(&models.DownloadStats{Total: 150})
	state.SetErrors(&models.ErrorStats{Total: 30})

	m := New(state)
	m.SetSize(120, 40)

	view := m.View()
	if !strings.Contains(view, "Errors") {
		t.Error("view should show the errors card")
	}
	if strings.Contains(view, "Downloads") {
		t.Error("view should not show cards the profile cannot see")
	}
}

func TestModel_View_NoPermissions(t *testing.T) {
	state := app.NewState()
	state.SetUser(&models.User{Name: "Caio", Permissions: nil})
	state.SetDownloads(&models.DownloadStats{Total: 1})

	m := New(state)
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "no statistics permissions") {
		t.Error("view should explain when no cards are visible")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    string
		want string
	}{
		{"45s", "45s"},
		{"3m", "3m"},
		{"2h30m", "2h"},
	}

	for _, tt := range tests {
		d, err := time.ParseDuration(tt.d)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.d, err)
		}
		if got := formatDuration(d); got != tt.want {
			t.Errorf("formatDuration(%s) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
