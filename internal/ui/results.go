package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/collfilter/internal/view"
)

const (
	countColumn = 8
	gutter      = 2
)

// layout sizes the panes from the window size. Header, command bar, form and
// status line take one row each.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	inner := max(m.width-2, 1)
	remaining := max(m.height-4, 4)

	logsHeight := 0
	if m.showLogs {
		logsHeight = remaining / 3
	}
	resultsHeight := remaining - logsHeight

	// Border plus the link line of the selected row.
	if m.results.Width == 0 {
		m.results = viewport.New(inner, max(resultsHeight-3, 1))
	}
	m.results.Width = inner
	m.results.Height = max(resultsHeight-3, 1)

	if m.logs.Width == 0 {
		m.logs = viewport.New(inner, max(logsHeight-2, 1))
	}
	m.logs.Width = inner
	m.logs.Height = max(logsHeight-2, 1)

	m.updateResultsViewport()
	m.updateLogViewport()
}

func (m *Model) updateResultsViewport() {
	if m.results.Width == 0 {
		return
	}
	styles := m.theme.Styles()
	width := max(m.results.Width-gutter, 1)
	lines := make([]string, 0, len(m.rows))
	for i, d := range m.rows {
		marker := strings.Repeat(" ", gutter)
		if i == m.cursor && d.Kind == view.KindRow {
			marker = styles.Selected.Render("▸ ")
		}
		lines = append(lines, marker+FormatDescriptor(d, styles, width))
	}
	atBottom := m.results.AtBottom()
	m.results.SetContent(strings.Join(lines, "\n"))
	// Follow the output while a request is still appending rows.
	if m.busy() && atBottom {
		m.results.GotoBottom()
	}
}

// selected returns the row under the cursor.
func (m Model) selected() (view.Descriptor, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || m.rows[m.cursor].Kind != view.KindRow {
		return view.Descriptor{}, false
	}
	return m.rows[m.cursor], true
}

// moveCursor moves the cursor by delta rows, skipping headings, and keeps it
// inside the viewport.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	step := 1
	if delta < 0 {
		step = -1
	}
	target := min(max(m.cursor+delta, 0), len(m.rows)-1)
	if i, ok := m.nextRow(target, step); ok {
		m.cursor = i
	} else if i, ok := m.nextRow(target, -step); ok {
		m.cursor = i
	}

	if m.cursor < m.results.YOffset {
		m.results.SetYOffset(m.cursor)
	} else if bottom := m.results.YOffset + m.results.Height; m.cursor >= bottom {
		m.results.SetYOffset(m.cursor - m.results.Height + 1)
	}
	m.updateResultsViewport()
}

// nextRow returns the first row at or after from, walking by step.
func (m Model) nextRow(from, step int) (int, bool) {
	for i := from; i >= 0 && i < len(m.rows); i += step {
		if m.rows[i].Kind == view.KindRow {
			return i, true
		}
	}
	return 0, false
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := max(m.results.Height/2, 1)
	switch {
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.rows))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(page)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-page)
	case key.Matches(msg, m.keys.Copy):
		m.copyLinks()
	}
	return m, nil
}

// copyLinks puts the outbound links of the selected row on the clipboard.
func (m *Model) copyLinks() {
	d, ok := m.selected()
	if !ok {
		m.notice = "No row selected"
		return
	}
	text := strings.Join([]string{d.GuideURL, d.CollectionURLA, d.CollectionURLB}, "\n")
	if err := m.copyText(text); err != nil {
		m.logger.Warn("copy links", zap.String("id", d.Item.ID), zap.Error(err))
		m.notice = fmt.Sprintf("Clipboard error: %v", err)
		return
	}
	m.notice = fmt.Sprintf("Copied links for %s", d.Title)
}

// renderLinkLine shows the guide and collection links of the selected row.
func (m Model) renderLinkLine(width int) string {
	styles := m.theme.Styles()
	d, ok := m.selected()
	if !ok {
		return styles.FaintText.Render(truncate("Select a row to see its links", width))
	}
	parts := []string{
		styles.AccentText.Render("guide ") + styles.MutedText.Render(d.GuideURL),
		styles.AccentText.Render("you ") + styles.MutedText.Render(d.CollectionURLA),
		styles.AccentText.Render("them ") + styles.MutedText.Render(d.CollectionURLB),
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(parts, "  "))
}

func (m Model) renderResults() string {
	styles := m.theme.Styles()
	pane := styles.Pane
	if m.focus == focusResults {
		pane = styles.Focused
	}
	body := lipgloss.JoinVertical(lipgloss.Left, m.results.View(), m.renderLinkLine(m.results.Width))
	return pane.Width(m.results.Width).Render(body)
}

// FormatDescriptor renders one host element as a single line that fits in
// width cells.
func FormatDescriptor(d view.Descriptor, styles Styles, width int) string {
	titleWidth := max(width-2*countColumn, 8)
	switch d.Kind {
	case view.KindSentinel:
		return styles.MutedText.Bold(true).Render(
			pad(d.Title, titleWidth) + pad("You", countColumn) + pad("Them", countColumn))
	case view.KindHeader:
		return styles.SectionStyle(d.Section).Render(truncate(d.Title, width-2))
	default:
		return styles.Text.Render(pad(d.Title, titleWidth)) +
			ownership(d.HasA(), d.Item.CountA, styles) +
			ownership(d.HasB(), d.Item.CountB, styles)
	}
}

func ownership(has bool, count int, styles Styles) string {
	if !has {
		return styles.FaintText.Render(pad("·", countColumn))
	}
	text := pad(fmt.Sprintf("✓ %d", count), countColumn)
	if count > 1 {
		return styles.SuccessText.Render(text)
	}
	return styles.InfoText.Render(text)
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	s = truncate(s, width-1)
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// truncate shortens s to at most max cells, marking the cut with "…".
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
