package app

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/collfilter/internal/controller"
	"github.com/five82/collfilter/internal/filter"
	"github.com/five82/collfilter/internal/view"
)

// Print runs one request and writes the rendered output to w, one table per
// section.
func (a *App) Print(ctx context.Context, criteria filter.Criteria, w io.Writer, links bool) (controller.Result, error) {
	p, err := a.Load(ctx)
	if err != nil {
		return controller.Result{}, err
	}
	res, err := p.Controller.Submit(ctx, criteria)
	if err != nil {
		return res, err
	}
	rows, _ := p.Buffer.Snapshot()
	return res, WriteTables(w, rows, links)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// WriteTables writes host elements as plain tables. Rows before the first
// heading are ignored; a heading without rows prints "(none)".
func WriteTables(w io.Writer, rows []view.Descriptor, links bool) error {
	var (
		b       strings.Builder
		current *table.Table
		count   int
	)
	flush := func() {
		if current == nil {
			return
		}
		if count == 0 {
			b.WriteString("  (none)\n\n")
			return
		}
		b.WriteString(current.String())
		b.WriteString("\n\n")
	}

	for _, d := range rows {
		switch d.Kind {
		case view.KindHeader:
			flush()
			b.WriteString(headingStyle.Render(d.Title))
			b.WriteString("\n")
			current = newTable(links)
			count = 0
		case view.KindRow:
			if current == nil {
				continue
			}
			current.Row(cells(d, links)...)
			count++
		}
	}
	flush()

	_, err := io.WriteString(w, b.String())
	return err
}

func newTable(links bool) *table.Table {
	headers := []string{"Adoptable", "You", "Them"}
	if links {
		headers = append(headers, "Guide", "You link", "Them link")
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true)
			}
			return cellStyle
		})
}

func cells(d view.Descriptor, links bool) []string {
	out := []string{d.Title, countCell(d.Item.CountA), countCell(d.Item.CountB)}
	if links {
		out = append(out, d.GuideURL, d.CollectionURLA, d.CollectionURLB)
	}
	return out
}

func countCell(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
