package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/components"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/styles"
)

// View renders the dashboard tab.
func (m *Model) View() string {
	if m.state.IsStatsLoading() && !m.state.HasStats() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderCards())
	sections = append(sections, m.renderLegend())
	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("CONVICTI Dashboard")

	subtitle := ""
	if user := m.state.GetUser(); user != nil {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("%s · %s", user.Name, user.ProfileName))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderCards() string {
	user := m.state.GetUser()

	cardWidth := (m.width - 12) / 3
	if cardWidth < 28 {
		cardWidth = 28
	}

	var cards []string

	if user.HasPermission(models.PermissionDownloads) {
		cards = append(cards, components.DownloadsCard(m.state.GetDownloads(), cardWidth))
	}
	if user.HasPermission(models.PermissionEvaluations) {
		cards = append(cards, components.EvaluationsCard(m.state.GetEvaluations(), cardWidth))
	}
	if user.HasPermission(models.PermissionErrors) {
		cards = append(cards, components.ErrorsCard(m.state.GetErrors(), cardWidth))
	}

	if len(cards) == 0 {
		return styles.CardStyle.Width(m.width - 6).Render(
			styles.HelpStyle.Render("Your profile has no statistics permissions."),
		)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderLegend() string {
	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Android", Color: styles.Android},
		{Label: "iOS", Color: styles.IOS},
	})
	return lipgloss.NewStyle().MarginTop(1).Render(legend)
}

func (m *Model) renderFooter() string {
	var parts []string

	if since := m.state.TimeSinceUpdate(); since > 0 {
		parts = append(parts, fmt.Sprintf("Updated %s ago", formatDuration(since)))
	}
	if m.state.IsStatsLoading() {
		parts = append(parts, "refreshing...")
	}
	parts = append(parts, "'r' to refresh")

	footer := ""
	for i, p := range parts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += p
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}
