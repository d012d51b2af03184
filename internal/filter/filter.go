// Package filter selects which items of a partition are shown for a set of
// criteria.
package filter

import (
	"iter"
	"strings"

	"github.com/five82/collfilter/internal/records"
)

// Criteria is one user submission.
type Criteria struct {
	Tag         string
	OnlySparesA bool
	OnlySparesB bool
}

// Normalized returns the criteria with the tag trimmed.
func (c Criteria) Normalized() Criteria {
	c.Tag = strings.TrimSpace(c.Tag)
	return c
}

// PassThrough reports whether the criteria select every item.
func (c Criteria) PassThrough() bool {
	return !c.OnlySparesA && !c.OnlySparesB
}

// Include applies the spares-and-missing flags to one item. A set flag keeps
// the item only when that party does not hold exactly one.
func Include(item records.Item, c Criteria) bool {
	if c.OnlySparesA && item.CountA == 1 {
		return false
	}
	if c.OnlySparesB && item.CountB == 1 {
		return false
	}
	return true
}

// Candidates walks every candidate of a partition and reports whether it is
// shown. When idsInTag is empty the partition is walked in its own order;
// otherwise exactly the given ids are walked, and ids the partition does not
// hold come back as a zero Item and false. Reporting skipped candidates lets a
// time-sliced consumer account for them too.
func Candidates(p *records.Partition, idsInTag []string, c Criteria) iter.Seq2[records.Item, bool] {
	if len(idsInTag) == 0 {
		return func(yield func(records.Item, bool) bool) {
			for item := range p.All() {
				if !yield(item, Include(item, c)) {
					return
				}
			}
		}
	}

	return func(yield func(records.Item, bool) bool) {
		for _, id := range idsInTag {
			item, ok := p.Get(id)
			if !yield(item, ok && Include(item, c)) {
				return
			}
		}
	}
}

// Items returns only the shown candidates, in candidate order.
func Items(p *records.Partition, idsInTag []string, c Criteria) iter.Seq[records.Item] {
	return func(yield func(records.Item) bool) {
		for item, shown := range Candidates(p, idsInTag, c) {
			if shown && !yield(item) {
				return
			}
		}
	}
}

// Collect runs Items to completion.
func Collect(p *records.Partition, idsInTag []string, c Criteria) []records.Item {
	var out []records.Item
	for item := range Items(p, idsInTag, c) {
		out = append(out, item)
	}
	return out
}
