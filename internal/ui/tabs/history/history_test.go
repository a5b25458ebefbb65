package history

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/app"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/stats"
)

type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func sampleSnapshots(n int) []models.StatSnapshot {
	snaps := make([]models.StatSnapshot, n)
	base := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := range snaps {
		snaps[i] = models.StatSnapshot{
			ID:        int64(i + 1),
			Resource:  stats.ResourceDownloads,
			Total:     100 + i*10,
			Android:   60,
			IOS:       40,
			Exact:     true,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return snaps
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.timeRange != models.TimeRange7Days {
		t.Errorf("timeRange = %v, want 7 days default", m.timeRange)
	}
}

func TestModel_LoadsOnActivation(t *testing.T) {
	m := New(app.NewState())

	updated, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabHistory})
	m = updated.(*Model)

	if !m.loading {
		t.Error("tab activation should start loading")
	}
	if cmd == nil {
		t.Fatal("tab activation should emit a load command")
	}

	msg := cmd()
	load, ok := msg.(app.LoadHistoryMsg)
	if !ok {
		t.Fatalf("expected LoadHistoryMsg, got %T", msg)
	}
	if load.Resource != stats.ResourceDownloads {
		t.Errorf("Resource = %q, want %q", load.Resource, stats.ResourceDownloads)
	}
	if load.TimeRange != models.TimeRange7Days {
		t.Errorf("TimeRange = %v, want 7 days", load.TimeRange)
	}
}

func TestModel_IgnoresOtherTabActivation(t *testing.T) {
	m := New(app.NewState())

	_, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabDashboard})
	if cmd != nil {
		t.Error("activation of another tab should not trigger a load")
	}
}

func TestModel_HistoryLoaded(t *testing.T) {
	m := New(app.NewState())
	m.loading = true

	snaps := sampleSnapshots(5)
	updated, _ := m.Update(app.HistoryLoadedMsg{
		Resource:  stats.ResourceDownloads,
		TimeRange: models.TimeRange7Days,
		Snapshots: snaps,
	})
	m = updated.(*Model)

	if m.loading {
		t.Error("loading should be cleared")
	}
	if !m.loaded {
		t.Error("loaded should be set")
	}
	if len(m.snapshots) != 5 {
		t.Errorf("snapshots len = %d, want 5", len(m.snapshots))
	}
}

func TestModel_HistoryLoaded_StaleResult(t *testing.T) {
	m := New(app.NewState())
	m.loading = true

	// Result for a different resource must not replace the view.
	updated, _ := m.Update(app.HistoryLoadedMsg{
		Resource:  stats.ResourceErrors,
		TimeRange: models.TimeRange7Days,
		Snapshots: sampleSnapshots(3),
	})
	m = updated.(*Model)

	if m.loaded {
		t.Error("stale result should be discarded")
	}
}

func TestModel_HistoryLoaded_Error(t *testing.T) {
	m := New(app.NewState())
	m.loading = true

	updated, _ := m.Update(app.HistoryLoadedMsg{
		Resource: stats.ResourceDownloads,
		Error:    testError{msg: "database locked"},
	})
	m = updated.(*Model)

	if m.errorMsg != "database locked" {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestModel_SwitchResource(t *testing.T) {
	m := New(app.NewState())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(*Model)

	path, name := m.resource()
	if path != stats.ResourceEvaluations || name != "Evaluations" {
		t.Errorf("resource = %q/%q, want evaluations", path, name)
	}
	if cmd == nil {
		t.Error("switching resource should reload")
	}
}

func TestModel_ToggleTimeRange(t *testing.T) {
	m := New(app.NewState())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = updated.(*Model)

	if m.timeRange != models.TimeRange30Days {
		t.Errorf("timeRange = %v, want 30 days after toggle", m.timeRange)
	}
	if cmd == nil {
		t.Error("toggling the range should reload")
	}
}

func TestModel_View_Empty(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 30)
	m.loaded = true

	view := m.View()
	if !strings.Contains(view, "No Downloads snapshots") {
		t.Error("empty view should name the resource")
	}
}

func TestModel_View_Loading(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 30)
	m.loading = true

	view := m.View()
	if !strings.Contains(view, "Loading history") {
		t.Error("view should show the loading message")
	}
}

func TestModel_View_WithSnapshots(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(120, 40)
	m.snapshots = sampleSnapshots(6)
	m.loaded = true

	view := m.View()
	if !strings.Contains(view, "History: Downloads") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(view, "6 snapshots") {
		t.Error("view should show the snapshot count")
	}
	if !strings.Contains(view, "Total trend") {
		t.Error("view should contain the sparkline card")
	}
}
