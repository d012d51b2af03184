// Package view turns records into display descriptors. Descriptors carry the
// text and outbound links of a row so hosts never have to know about the site
// layout.
package view

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/five82/collfilter/internal/records"
)

// Kind tells a host how to draw a descriptor.
type Kind int

const (
	KindSentinel Kind = iota
	KindHeader
	KindRow
)

// Descriptor is one host element.
type Descriptor struct {
	Kind    Kind
	Section records.Section
	Title   string
	Item    records.Item

	GuideURL       string
	CollectionURLA string
	CollectionURLB string
}

// HasA reports whether party A owns at least one of the row's item.
func (d Descriptor) HasA() bool { return d.Item.CountA > 0 }

// HasB reports whether party B owns at least one of the row's item.
func (d Descriptor) HasB() bool { return d.Item.CountB > 0 }

var headings = map[records.Section]string{
	records.NeedFromB: "Adoptables you need",
	records.NeedFromA: "Adoptables they need",
	records.BothHave:  "Adoptables you both have",
}

// Heading returns the display text for a section.
func Heading(section records.Section) string {
	if text, ok := headings[section]; ok {
		return text
	}
	return section.String()
}

// Sentinel is the element that stays in place when output is cleared.
func Sentinel() Descriptor {
	return Descriptor{Kind: KindSentinel, Title: "Adoptable"}
}

// Builder builds descriptors for one comparison.
type Builder struct {
	base   *url.URL
	partyA string
	partyB string
	policy *bluemonday.Policy
}

// NewBuilder returns a builder producing links under baseURL.
func NewBuilder(baseURL, partyA, partyB string) (*Builder, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	return &Builder{
		base:   base,
		partyA: partyA,
		partyB: partyB,
		policy: bluemonday.StrictPolicy(),
	}, nil
}

// Header returns the heading descriptor for a section.
func (b *Builder) Header(section records.Section) Descriptor {
	return Descriptor{Kind: KindHeader, Section: section, Title: Heading(section)}
}

// Row builds the descriptor for an item. It returns false when the item cannot
// be shown, in which case the renderer skips it.
func (b *Builder) Row(section records.Section, item records.Item) (Descriptor, bool) {
	id := strings.TrimSpace(item.ID)
	if id == "" || !isNumeric(id) || item.CountA < 0 || item.CountB < 0 {
		return Descriptor{}, false
	}
	name := strings.TrimSpace(html.UnescapeString(b.policy.Sanitize(item.Name)))
	item.ID = id
	item.Name = name
	return Descriptor{
		Kind:           KindRow,
		Section:        section,
		Title:          id + ". " + name,
		Item:           item,
		GuideURL:       b.GuideURL(id),
		CollectionURLA: b.CollectionURL(b.partyA, id),
		CollectionURLB: b.CollectionURL(b.partyB, id),
	}, true
}

// GuideURL links to the catalog page of an item.
func (b *Builder) GuideURL(id string) string {
	return b.resolve("/adoptable_guide.php", url.Values{"id": {id}})
}

// CollectionURL links to a party's holdings of an item.
func (b *Builder) CollectionURL(party, id string) string {
	return b.resolve("/youradoptables.php", url.Values{
		"act":    {"collection"},
		"id":     {party},
		"typeid": {id},
	})
}

func (b *Builder) resolve(path string, q url.Values) string {
	u := *b.base
	u.Path = path
	u.RawQuery = q.Encode()
	return u.String()
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
