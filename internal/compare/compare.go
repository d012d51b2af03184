// Package compare builds a records.Store from the site's collection
// comparison page.
package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/five82/collfilter/internal/catalog"
	"github.com/five82/collfilter/internal/records"
)

// ErrParse reports a page that does not have the comparison table layout.
var ErrParse = errors.New("comparison page not recognized")

// PageFetcher downloads the comparison page.
type PageFetcher interface {
	FetchComparePage(ctx context.Context, compareTo string) (*html.Node, error)
}

// Result is a parsed page.
type Result struct {
	Store   *records.Store
	Skipped int // data rows that could not be read
}

// Fetch downloads and parses the comparison against compareTo.
func Fetch(ctx context.Context, f PageFetcher, compareTo string) (Result, error) {
	doc, err := f.FetchComparePage(ctx, compareTo)
	if err != nil {
		return Result{}, err
	}
	return Parse(doc)
}

// ParseFile parses a saved copy of the comparison page.
func ParseFile(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ParseReader(file)
}

// ParseReader parses page HTML from r.
func ParseReader(r io.Reader) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return Parse(doc)
}

// Parse reads the comparison table. The table's heading rows split it into a
// column header followed by the three sections in records.Sections order.
func Parse(doc *html.Node) (Result, error) {
	table := findTable(doc)
	if table == nil {
		return Result{}, fmt.Errorf("%w: no .niceTable table", ErrParse)
	}
	rows := tableRows(table)

	partyA, partyB := partyIDs(rows)
	if partyA == "" || partyB == "" {
		return Result{}, fmt.Errorf("%w: party ids not found in header links", ErrParse)
	}

	var headings []int
	for i, row := range rows {
		if hasClass(row, "headingRow") {
			headings = append(headings, i)
		}
	}
	if len(headings) < 1+len(records.Sections) {
		return Result{}, fmt.Errorf("%w: found %d heading rows, want %d", ErrParse, len(headings), 1+len(records.Sections))
	}

	var res Result
	parts := make([]*records.Partition, len(records.Sections))
	for i := range records.Sections {
		parts[i] = records.NewPartition()
		for _, row := range rows[headings[i+1]+1:] {
			if hasClass(row, "headingRow") {
				break
			}
			item, ok := parseRow(row)
			if !ok {
				res.Skipped++
				continue
			}
			parts[i].Add(item)
		}
	}

	res.Store = records.NewStore(partyA, partyB, parts[0], parts[1], parts[2])
	if err := res.Store.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return res, nil
}

// parseRow reads "<id>. <name> | mine | theirs". Blank counts mean zero.
func parseRow(row *html.Node) (records.Item, bool) {
	cells := children(row, atom.Td)
	if len(cells) < 3 {
		return records.Item{}, false
	}
	label := strings.TrimSpace(catalog.Text(cells[0]))
	sep := strings.Index(label, ".")
	if sep <= 0 {
		return records.Item{}, false
	}
	id := strings.TrimSpace(label[:sep])
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return records.Item{}, false
	}
	countA, okA := parseCount(catalog.Text(cells[1]))
	countB, okB := parseCount(catalog.Text(cells[2]))
	if !okA || !okB {
		return records.Item{}, false
	}
	return records.Item{
		ID:     id,
		Name:   strings.TrimSpace(label[sep+1:]),
		CountA: countA,
		CountB: countB,
	}, true
}

func parseCount(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, true
	}
	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// partyIDs reads the id parameter of the first links in columns two and three.
func partyIDs(rows []*html.Node) (string, string) {
	var a, b string
	for _, row := range rows {
		cells := children(row, atom.Td)
		if len(cells) < 3 {
			continue
		}
		if a == "" {
			a = linkID(cells[1])
		}
		if b == "" {
			b = linkID(cells[2])
		}
		if a != "" && b != "" {
			break
		}
	}
	return a, b
}

func linkID(cell *html.Node) string {
	for c := cell.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.A {
			continue
		}
		u, err := url.Parse(catalog.Attr(c, "href"))
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(u.Query().Get("id")); id != "" {
			return id
		}
	}
	return ""
}

func findTable(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Table && hasClass(n, "niceTable") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

// tableRows returns the rows of table in document order, looking through
// tbody/thead wrappers but not into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Tbody, atom.Thead, atom.Tfoot:
			rows = append(rows, children(c, atom.Tr)...)
		}
	}
	return rows
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(catalog.Attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}
