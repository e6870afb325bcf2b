package viz

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(36)

	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func statusStyle(running bool) lipgloss.Style {
	c := CurrentTheme.Warning
	if running {
		c = CurrentTheme.Success
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// Sparkline renders the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Render(b.String())
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// MetricsPanel renders metrics as a titled panel with sorted rows.
func MetricsPanel(title string, metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		names = append(names, k)
	}
	slices.Sort(names)

	lines := []string{headerStyle.Foreground(CurrentTheme.Primary).Render(title)}
	for _, k := range names {
		lines = append(lines, labelStyle.Width(16).Render(k)+valueStyle.Render(fmt.Sprintf("%.6g", metrics[k])))
	}
	return panelStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
