package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/styles"
)

// RenderSplitBar renders a two-segment bar showing the Android/iOS split.
func RenderSplitBar(android, ios float64, width int) string {
	if width < 5 {
		width = 5
	}

	total := android + ios
	if total <= 0 {
		empty := lipgloss.NewStyle().Foreground(styles.Subtle)
		return empty.Render(strings.Repeat("░", width))
	}

	androidLen := int(float64(width) * android / total)
	if androidLen > width {
		androidLen = width
	}
	iosLen := width - androidLen

	androidPart := lipgloss.NewStyle().Foreground(styles.Android).
		Render(strings.Repeat("█", androidLen))
	iosPart := lipgloss.NewStyle().Foreground(styles.IOS).
		Render(strings.Repeat("█", iosLen))

	return androidPart + iosPart
}

// formatTotal renders a stat total, marking sampled figures with "~".
func formatTotal(total int, exact bool) string {
	if exact {
		return fmt.Sprintf("%d", total)
	}
	return styles.EstimateStyle.Render("~") + fmt.Sprintf("%d", total)
}

func platformRow(label string, style lipgloss.Style, value string) string {
	dot := style.Render("●")
	name := lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(9).Render(label)
	return fmt.Sprintf("  %s %s %s", dot, name, value)
}

// DownloadsCard renders the downloads statistic card.
func DownloadsCard(stats *models.DownloadStats, width int) string {
	if stats == nil {
		return PendingCard("Downloads", width)
	}

	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render("Downloads"))
	lines = append(lines, styles.TitleStyle.Render(formatTotal(stats.Total, stats.Exact)))
	lines = append(lines, RenderSplitBar(float64(stats.Android), float64(stats.IOS), width-8))
	lines = append(lines, "")
	lines = append(lines, platformRow("Android", styles.AndroidStyle, formatTotal(stats.Android, stats.Exact)))
	lines = append(lines, platformRow("iOS", styles.IOSStyle, formatTotal(stats.IOS, stats.Exact)))

	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// EvaluationsCard renders the review averages card.
func EvaluationsCard(stats *models.EvaluationStats, width int) string {
	if stats == nil {
		return PendingCard("Evaluations", width)
	}

	overall := styles.GetScoreStyle(stats.Average).Render(fmt.Sprintf("%.1f", stats.Average))
	if !stats.Exact {
		overall = styles.EstimateStyle.Render("~") + overall
	}

	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render("Evaluations"))
	lines = append(lines, overall+styles.HelpStyle.Render(" / 5"))
	lines = append(lines, "")
	lines = append(lines, platformRow("Android", styles.AndroidStyle,
		styles.GetScoreStyle(stats.Android).Render(fmt.Sprintf("%.1f", stats.Android))))
	lines = append(lines, platformRow("iOS", styles.IOSStyle,
		styles.GetScoreStyle(stats.IOS).Render(fmt.Sprintf("%.1f", stats.IOS))))
	lines = append(lines, "")
	lines = append(lines, styles.HelpStyle.Render(fmt.Sprintf("  %s reviews", formatTotal(stats.Total, stats.Exact))))

	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// ErrorsCard renders the error counts card with the period delta.
func ErrorsCard(stats *models.ErrorStats, width int) string {
	if stats == nil {
		return PendingCard("Errors", width)
	}

	arrow := "▼"
	if stats.Variation > 0 {
		arrow = "▲"
	}
	variation := styles.GetVariationStyle(stats.Variation).
		Render(fmt.Sprintf("%s %.0f%%", arrow, stats.Variation))

	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render("Errors"))
	lines = append(lines, styles.TitleStyle.Render(formatTotal(stats.Total, stats.Exact))+" "+variation)
	lines = append(lines, RenderSplitBar(float64(stats.Android), float64(stats.IOS), width-8))
	lines = append(lines, "")
	lines = append(lines, platformRow("Android", styles.AndroidStyle, formatTotal(stats.Android, stats.Exact)))
	lines = append(lines, platformRow("iOS", styles.IOSStyle, formatTotal(stats.IOS, stats.Exact)))

	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// PendingCard renders a placeholder card while a stat is loading.
func PendingCard(title string, width int) string {
	lines := []string{
		styles.CardTitleStyle.Render(title),
		styles.HelpStyle.Render("Loading..."),
	}
	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}
