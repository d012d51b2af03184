package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TagNames extracts the tag links of a guide page.
func TagNames(doc *html.Node, pageURL *url.URL) []string {
	var tags []string
	seen := make(map[string]bool)
	walkLinks(doc, func(a *html.Node) {
		u := resolveHref(a, pageURL)
		if u == nil || !isGuideURL(u) || !u.Query().Has("tag") {
			return
		}
		name := strings.TrimSpace(Text(a))
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		tags = append(tags, name)
	})
	return tags
}

// ItemIDs extracts the item ids linked from a guide page, first occurrence
// wins.
func ItemIDs(doc *html.Node, pageURL *url.URL) []string {
	ids := []string{}
	seen := make(map[string]bool)
	walkLinks(doc, func(a *html.Node) {
		u := resolveHref(a, pageURL)
		if u == nil || !isGuideURL(u) {
			return
		}
		id := strings.TrimSpace(u.Query().Get("id"))
		if _, err := strconv.ParseUint(id, 10, 64); err != nil || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func walkLinks(n *html.Node, fn func(*html.Node)) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkLinks(c, fn)
	}
}

func resolveHref(a *html.Node, pageURL *url.URL) *url.URL {
	href := strings.TrimSpace(Attr(a, "href"))
	if href == "" {
		return nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if pageURL != nil {
		u = pageURL.ResolveReference(u)
	}
	return u
}

func isGuideURL(u *url.URL) bool {
	return strings.HasSuffix(u.Path, guidePath)
}
