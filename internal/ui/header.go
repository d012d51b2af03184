package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/collfilter/internal/records"
	"github.com/five82/collfilter/internal/view"
)

func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderCommandBar(),
		m.renderForm(),
		m.renderResults(),
	}
	if m.showLogs {
		parts = append(parts, m.renderLogs())
	}
	parts = append(parts, m.renderStatusLine())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader shows who is compared and the request state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	segments := []string{styles.Logo.Render("collfilter")}
	if m.partyA != "" || m.partyB != "" {
		segments = append(segments, styles.MutedText.Render(fmt.Sprintf("#%s vs #%s", m.partyA, m.partyB)))
	}
	if m.knownTags > 0 {
		segments = append(segments, styles.FaintText.Render(fmt.Sprintf("%d tags", m.knownTags)))
	}

	if m.busy() {
		segments = append(segments, styles.AccentText.Render(m.spinner.View()+" Filtering"))
	} else {
		segments = append(segments, styles.SuccessText.Render("Idle"))
	}
	return styles.Header.Width(m.width).Render(strings.Join(segments, "  "))
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"enter", "Filter"},
		{"tab", "Focus"},
		{"ctrl+o", "Your spares"},
		{"ctrl+t", "Their spares"},
	}
	switch m.focus {
	case focusTag:
		commands = append(commands, cmd{"→", "Complete"})
	case focusResults:
		commands = append(commands, cmd{"j/k", "Select"}, cmd{"c", "Copy links"})
		fallthrough
	default:
		logsLabel := "Logs"
		if m.showLogs {
			logsLabel = "Hide logs"
		}
		commands = append(commands,
			cmd{"l", logsLabel},
			cmd{"?", "Help"},
			cmd{"q", "Quit"},
			cmd{"T", m.theme.Name},
		)
	}

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments, styles.AccentText.Render(c.key)+":"+styles.MutedText.Render(c.desc))
	}
	return styles.Footer.Width(m.width).Render(strings.Join(segments, "  "))
}

// renderForm draws the tag field and the two spares options on one line.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	input := m.tagInput.View()
	if m.busy() {
		input = styles.FaintText.Render("Tag: " + m.tagInput.Value())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		" ",
		input,
		"   ",
		m.checkbox("Only your spares", m.sparesA, m.focus == focusSparesA),
		"   ",
		m.checkbox("Only their spares", m.sparesB, m.focus == focusSparesB),
	)
}

func (m Model) checkbox(label string, checked, focused bool) string {
	styles := m.theme.Styles()
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	text := box + " " + label
	switch {
	case m.busy():
		return styles.FaintText.Render(text)
	case focused:
		return styles.Selected.Render(text)
	default:
		return styles.Text.Render(text)
	}
}

// renderStatusLine summarizes the last request or shows its error.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	if m.notice != "" {
		return styles.Footer.Width(m.width).Render(styles.WarningText.Render(m.notice))
	}
	errText := errorText(m.lastErr)
	if errText == "" && snap.LastError != nil {
		errText = errorText(snap.LastError)
	}
	if errText != "" && !m.busy() {
		return styles.Footer.Width(m.width).Render(styles.DangerText.Render("Error: " + errText))
	}

	if !snap.HasResult && !snap.Busy {
		return styles.Footer.Width(m.width).Render("Choose a tag or leave it empty, then press enter")
	}

	counts := make([]string, 0, len(records.Sections))
	for _, section := range records.Sections {
		counts = append(counts, fmt.Sprintf("%s %d", shortHeading(section), snap.Count(section)))
	}
	line := strings.Join(counts, " · ")
	if d := snap.Elapsed(); d > 0 {
		line += fmt.Sprintf(" · %s", d.Round(time.Millisecond))
	}
	if tag := snap.Criteria.Tag; tag != "" {
		line = fmt.Sprintf("%q: %s", tag, line)
	}
	return styles.Footer.Width(m.width).Render(line)
}

func shortHeading(section records.Section) string {
	return strings.TrimPrefix(view.Heading(section), "Adoptables ")
}
