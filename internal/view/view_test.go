package view

import (
	"net/url"
	"testing"

	"github.com/five82/collfilter/internal/records"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("https://www.example.com/some/path?x=1", "11", "22")
	if err != nil {
		t.Fatalf("NewBuilder returned error: %v", err)
	}
	return b
}

func TestNewBuilder_RejectsRelativeURL(t *testing.T) {
	if _, err := NewBuilder("example.com", "1", "2"); err == nil {
		t.Fatalf("NewBuilder returned nil error for relative url")
	}
}

func TestBuilder_RowLinks(t *testing.T) {
	b := newBuilder(t)
	d, ok := b.Row(records.BothHave, records.Item{ID: "42", Name: "Fox", CountA: 2})
	if !ok {
		t.Fatalf("Row returned ok=false for a valid item")
	}
	if d.Kind != KindRow || d.Section != records.BothHave {
		t.Fatalf("descriptor = %#v, want row in both-have", d)
	}
	if d.Title != "42. Fox" {
		t.Fatalf("Title = %q, want %q", d.Title, "42. Fox")
	}
	if d.GuideURL != "https://www.example.com/adoptable_guide.php?id=42" {
		t.Fatalf("GuideURL = %q", d.GuideURL)
	}

	u, err := url.Parse(d.CollectionURLB)
	if err != nil {
		t.Fatalf("parse CollectionURLB: %v", err)
	}
	q := u.Query()
	if u.Path != "/youradoptables.php" || q.Get("act") != "collection" || q.Get("id") != "22" || q.Get("typeid") != "42" {
		t.Fatalf("CollectionURLB = %q, want collection link for party 22", d.CollectionURLB)
	}
	if !d.HasA() || d.HasB() {
		t.Fatalf("HasA/HasB = %v/%v, want true/false", d.HasA(), d.HasB())
	}
}

func TestBuilder_RowStripsMarkup(t *testing.T) {
	b := newBuilder(t)
	d, ok := b.Row(records.NeedFromA, records.Item{ID: "7", Name: "<b>Snow</b> Hare"})
	if !ok {
		t.Fatalf("Row returned ok=false")
	}
	if d.Item.Name != "Snow Hare" {
		t.Fatalf("Name = %q, want markup stripped", d.Item.Name)
	}
}

func TestBuilder_RowSkipsMalformed(t *testing.T) {
	b := newBuilder(t)
	for _, item := range []records.Item{
		{ID: ""},
		{ID: "abc", Name: "Fox"},
		{ID: "3", CountA: -1},
	} {
		if _, ok := b.Row(records.NeedFromB, item); ok {
			t.Fatalf("Row(%#v) returned ok=true, want skip", item)
		}
	}
}

func TestHeading(t *testing.T) {
	b := newBuilder(t)
	if got := b.Header(records.NeedFromB).Title; got != "Adoptables you need" {
		t.Fatalf("Header title = %q", got)
	}
	if got := Heading(records.Section(9)); got != "section(9)" {
		t.Fatalf("Heading(9) = %q", got)
	}
}

func TestBuilder_RowKeepsEntities(t *testing.T) {
	b := newBuilder(t)
	d, ok := b.Row(records.NeedFromA, records.Item{ID: "8", Name: "Cat & Mouse"})
	if !ok || d.Item.Name != "Cat & Mouse" {
		t.Fatalf("Name = %q, want %q", d.Item.Name, "Cat & Mouse")
	}
}
