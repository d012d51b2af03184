package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/collfilter/internal/logtail"
)

func (m *Model) updateLogViewport() {
	if m.logs.Width == 0 {
		return
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.logLines))
	for _, e := range m.logLines {
		text := truncate(e.String(), m.logs.Width)
		lines = append(lines, levelStyle(e, styles).Render(text))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.FaintText.Render("No log entries yet"))
	}
	m.logs.SetContent(strings.Join(lines, "\n"))
	m.logs.GotoBottom()
}

func levelStyle(e logtail.Entry, styles Styles) lipgloss.Style {
	switch strings.ToLower(e.Level) {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	case "":
		return styles.MutedText
	default:
		return styles.Text
	}
}

func (m Model) renderLogs() string {
	return m.theme.Styles().Pane.Width(m.logs.Width).Render(m.logs.View())
}
