package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/styles"
)

// LoadingSpinner pairs a spinner with a short status label, e.g.
// "Signing in..." on the login card or "Fetching statistics..." while
// the first refresh is in flight.
type LoadingSpinner struct {
	spinner    spinner.Model
	label      string
	labelStyle lipgloss.Style
}

// NewSpinner creates a loading spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner:    s,
		label:      label,
		labelStyle: lipgloss.NewStyle().Foreground(styles.TextMuted),
	}
}

// Init starts the spinner animation.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the animation on tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner frame alone.
func (l LoadingSpinner) View() string {
	return l.spinner.View()
}

// ViewWithLabel renders the spinner frame followed by the label.
func (l LoadingSpinner) ViewWithLabel() string {
	return l.spinner.View() + " " + l.labelStyle.Render(l.label)
}

// SetLabel replaces the label, e.g. to narrate a multi-step load.
func (l *LoadingSpinner) SetLabel(label string) {
	l.label = label
}

// Label returns the current label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// Spinner exposes the underlying bubbles model.
func (l LoadingSpinner) Spinner() spinner.Model {
	return l.spinner
}

// Tick returns the tick command for the spinner.
func (l LoadingSpinner) Tick() tea.Cmd {
	return l.spinner.Tick
}

// RenderSpinnerCentered renders the spinner and label centered in the
// given area, used while a tab has nothing else to show.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
