package history

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/stats"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/components"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && !m.loaded {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.loaded || len(m.snapshots) == 0 {
		return m.renderEmpty()
	}

	var sections []string
	sections = append(sections,
		m.renderHeader(),
		m.renderPlatformChart(),
		m.renderTotalsSparkline(),
		m.renderFooter(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	_, name := m.resource()
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("No %s snapshots recorded for this period.", name)),
		styles.HelpStyle.Render("Data accumulates as statistics are refreshed."),
		"",
		styles.HelpStyle.Render("[s] switch resource  [t] change time range"),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	_, name := m.resource()
	title := styles.TitleStyle.Render("History: " + name)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	first := m.snapshots[0].CreatedAt
	last := m.snapshots[len(m.snapshots)-1].CreatedAt
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d snapshots, %s → %s",
		len(m.snapshots),
		first.Format("Jan 2 15:04"),
		last.Format("Jan 2 15:04"),
	))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderPlatformChart() string {
	cardWidth := max(m.width-6, 40)

	android := make([]float64, len(m.snapshots))
	ios := make([]float64, len(m.snapshots))
	for i, s := range m.snapshots {
		android[i] = s.Android
		ios[i] = s.IOS
	}

	path, _ := m.resource()
	caption := "Per-platform totals"
	if path == stats.ResourceEvaluations {
		caption = "Per-platform average score"
	}

	chartHeight := max(8, m.height/3)
	chart := components.RenderPlatformChart(android, ios, cardWidth-6, chartHeight, caption)

	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Android", Color: styles.Android},
		{Label: "iOS", Color: styles.IOS},
	})

	content := lipgloss.JoinVertical(lipgloss.Left, chart, "", legend)
	return styles.CardStyle.Width(cardWidth).Render(content)
}

func (m *Model) renderTotalsSparkline() string {
	cardWidth := max(m.width-6, 40)

	totals := make([]float64, len(m.snapshots))
	for i, s := range m.snapshots {
		totals[i] = float64(s.Total)
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Total trend"))
	rows = append(rows, components.RenderSparkline(totals, cardWidth-6))

	latest := m.snapshots[len(m.snapshots)-1]
	detail := fmt.Sprintf("latest: %d", latest.Total)
	if !latest.Exact {
		detail += styles.EstimateStyle.Render(" (sampled)")
	}
	rows = append(rows, styles.HelpStyle.Render(detail))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFooter() string {
	shortcuts := []string{
		styles.HelpKeyStyle.Render("s") + " resource",
		styles.HelpKeyStyle.Render("t") + " time range",
		styles.HelpKeyStyle.Render("r") + " refresh",
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
