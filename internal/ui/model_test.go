package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/collfilter/internal/controller"
	"github.com/five82/collfilter/internal/filter"
	"github.com/five82/collfilter/internal/prefs"
	"github.com/five82/collfilter/internal/records"
	"github.com/five82/collfilter/internal/render"
	"github.com/five82/collfilter/internal/state"
	"github.com/five82/collfilter/internal/view"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []filter.Criteria
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, c filter.Criteria) (controller.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return controller.Result{Criteria: c}, f.err
}

func newTestModel(t *testing.T, sub Submitter) Model {
	t.Helper()
	m := New(Options{
		Submitter: sub,
		Status:    &state.Store{},
		Buffer:    render.NewBuffer(view.Sentinel()),
		Tags:      []string{"Forest", "Ocean"},
		PartyA:    "1",
		PartyB:    "2",
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// findSubmitDone runs cmd and any batched commands, returning the submit
// result message if one was produced.
func findSubmitDone(cmd tea.Cmd) (submitDoneMsg, bool) {
	if cmd == nil {
		return submitDoneMsg{}, false
	}
	switch msg := cmd().(type) {
	case submitDoneMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if done, ok := findSubmitDone(c); ok {
				return done, true
			}
		}
	}
	return submitDoneMsg{}, false
}

func TestModel_SubmitSendsFormCriteria(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newTestModel(t, sub)

	m, _ = press(t, m,
		typed(" Forest "),
		tea.KeyMsg{Type: tea.KeyCtrlT},
	)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.busy() {
		t.Fatalf("model should be busy after submit")
	}

	done, ok := findSubmitDone(cmd)
	if !ok {
		t.Fatalf("submit did not produce a result message")
	}
	want := filter.Criteria{Tag: "Forest", OnlySparesB: true}
	if len(sub.calls) != 1 || sub.calls[0] != want {
		t.Fatalf("calls = %#v, want [%#v]", sub.calls, want)
	}

	next, _ := m.Update(done)
	m = next.(Model)
	if m.busy() {
		t.Fatalf("model should be idle after the result arrives")
	}
}

func TestModel_SubmitRefusedWhileBusy(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newTestModel(t, sub)

	m, first := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if first == nil {
		t.Fatalf("first submit returned no command")
	}
	m, second := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if second != nil {
		t.Fatalf("second submit should be refused while busy")
	}
	if m.notice == "" {
		t.Fatalf("refused submit should set a notice")
	}
}

func TestModel_SubmitSavesLastFilter(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newTestModel(t, sub)

	m, _ = press(t, m, typed("Ocean"), tea.KeyMsg{Type: tea.KeyCtrlO}, tea.KeyMsg{Type: tea.KeyEnter})

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	want := filter.Criteria{Tag: "Ocean", OnlySparesA: true}
	if saved.Last.Criteria() != want {
		t.Fatalf("saved = %#v, want %#v", saved.Last.Criteria(), want)
	}
}

func TestModel_RestoresLastFilter(t *testing.T) {
	m := New(Options{Prefs: prefs.Prefs{Last: prefs.LastFilter{Tag: "Forest", OnlySparesA: true}}})
	want := filter.Criteria{Tag: "Forest", OnlySparesA: true}
	if m.Criteria() != want {
		t.Fatalf("Criteria = %#v, want %#v", m.Criteria(), want)
	}
}

func TestModel_LetterKeysTypeIntoTagField(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})

	m, _ = press(t, m, typed("q"))
	if m.Criteria().Tag != "q" {
		t.Fatalf("Tag = %q, want %q", m.Criteria().Tag, "q")
	}
}

func TestModel_SpaceTogglesFocusedOption(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.sparesA || m.sparesB {
		t.Fatalf("spares = %v/%v, want true/false", m.sparesA, m.sparesB)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, typed("x"))
	if !m.sparesB {
		t.Fatalf("x should toggle the focused option")
	}
}

func TestModel_SnapshotRendersRows(t *testing.T) {
	buf := render.NewBuffer(view.Sentinel())
	b, err := view.NewBuilder("https://example.test", "1", "2")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	buf.Append(b.Header(records.NeedFromB))
	row, _ := b.Row(records.NeedFromB, records.Item{ID: "42", Name: "Fox", CountB: 2})
	buf.Append(row)

	m := newTestModel(t, &fakeSubmitter{})
	msg := fetchSnapshotCmd(&state.Store{}, buf, 0)()
	next, _ := m.Update(msg)
	m = next.(Model)

	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.rows))
	}
	out := m.View()
	for _, want := range []string{"Adoptables you need", "42. Fox"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}

	// An unchanged buffer sends no rows.
	again := fetchSnapshotCmd(&state.Store{}, buf, m.version)().(snapshotMsg)
	if again.rows != nil {
		t.Fatalf("unchanged buffer should not resend rows")
	}
}

func TestModel_EditingKeysStayWithTagField(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})

	// ctrl+a moves to the start of the field instead of toggling an option.
	m, _ = press(t, m, typed("cean"), tea.KeyMsg{Type: tea.KeyCtrlA}, typed("O"))
	if m.Criteria().Tag != "Ocean" {
		t.Fatalf("Tag = %q, want Ocean", m.Criteria().Tag)
	}
	if m.sparesA || m.sparesB {
		t.Fatalf("editing keys toggled spares: %v/%v", m.sparesA, m.sparesB)
	}
}

func TestModel_CopiesLinksOfSelectedRow(t *testing.T) {
	buf := render.NewBuffer(view.Sentinel())
	b, err := view.NewBuilder("https://example.test", "1", "2")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	buf.Append(b.Header(records.NeedFromB))
	fox, _ := b.Row(records.NeedFromB, records.Item{ID: "42", Name: "Fox", CountB: 2})
	buf.Append(fox)
	buf.Append(b.Header(records.NeedFromA))
	elk, _ := b.Row(records.NeedFromA, records.Item{ID: "7", Name: "Elk", CountA: 1})
	buf.Append(elk)

	var copied []string
	m := newTestModel(t, &fakeSubmitter{})
	m.copyText = func(text string) error {
		copied = append(copied, text)
		return nil
	}
	next, _ := m.Update(fetchSnapshotCmd(&state.Store{}, buf, 0)())
	m = next.(Model)

	tab := tea.KeyMsg{Type: tea.KeyTab}
	m, _ = press(t, m, tab, tab, tab, typed("j"))
	if d, ok := m.selected(); !ok || d.Item.ID != "42" {
		t.Fatalf("selected = %#v, %v; want the first row", d, ok)
	}
	if out := m.View(); !strings.Contains(out, fox.GuideURL) {
		t.Fatalf("view does not show the selected row's links")
	}

	// Headings are skipped on the way down.
	m, _ = press(t, m, typed("j"), typed("c"))
	want := strings.Join([]string{
		"https://example.test/adoptable_guide.php?id=7",
		"https://example.test/youradoptables.php?act=collection&id=1&typeid=7",
		"https://example.test/youradoptables.php?act=collection&id=2&typeid=7",
	}, "\n")
	if len(copied) != 1 || copied[0] != want {
		t.Fatalf("copied = %q, want %q", copied, want)
	}
	if !strings.Contains(m.notice, "7. Elk") {
		t.Fatalf("notice = %q", m.notice)
	}

	m, _ = press(t, m, typed("g"))
	if d, _ := m.selected(); d.Item.ID != "42" {
		t.Fatalf("top selected %q, want 42", d.Item.ID)
	}
}

func TestModel_StatusLineShowsError(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})
	next, _ := m.Update(submitDoneMsg{err: errors.New("resolve tag \"Forest\": fetch failed")})
	m = next.(Model)

	if got := m.renderStatusLine(); !strings.Contains(got, "fetch failed") {
		t.Fatalf("status line = %q, want the error", got)
	}
}

func TestModel_CycleThemePersists(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, typed("T"))
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.Theme != "Slate" {
		t.Fatalf("saved theme = %q, want Slate", saved.Theme)
	}
}

func TestFormatDescriptor(t *testing.T) {
	styles := GetTheme("Dracula").Styles()
	row := view.Descriptor{
		Kind:  view.KindRow,
		Title: "7. A very long adoptable name that does not fit",
		Item:  records.Item{ID: "7", CountA: 1, CountB: 0},
	}
	out := FormatDescriptor(row, styles, 40)
	if !strings.Contains(out, "✓ 1") || !strings.Contains(out, "…") {
		t.Fatalf("row = %q, want a truncated title and an ownership mark", out)
	}

	header := FormatDescriptor(view.Descriptor{Kind: view.KindHeader, Section: records.BothHave, Title: "Adoptables you both have"}, styles, 40)
	if !strings.Contains(header, "Adoptables you both have") {
		t.Fatalf("header = %q", header)
	}
}

func TestTruncateAndPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 5, "abc… "},
		{"", 3, "   "},
	}
	for _, tt := range tests {
		if got := pad(tt.in, tt.width); got != tt.want {
			t.Fatalf("pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
	if got := truncate("abc", 0); got != "" {
		t.Fatalf("truncate to 0 = %q", got)
	}
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 || names[0] != "Dracula" || names[1] != "Slate" {
		t.Fatalf("ThemeNames = %v", names)
	}
	if NextTheme("Slate") != "Dracula" || NextTheme("unknown") != "Dracula" {
		t.Fatalf("NextTheme does not cycle")
	}
	if GetTheme(" slate ").Name != "Slate" {
		t.Fatalf("GetTheme should ignore case and spaces")
	}
	for _, name := range names {
		th := GetTheme(name)
		for _, s := range records.Sections {
			if th.SectionColors[s] == "" {
				t.Fatalf("%s has no color for %s", name, s)
			}
		}
	}
}
