// Package records holds the parsed comparison data: the three sections of
// items and the two party identifiers. A Store is built once and only read
// afterwards.
package records

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrConfiguration reports a missing or malformed store.
var ErrConfiguration = errors.New("invalid record store")

// Section identifies one of the three comparison buckets.
type Section int

const (
	// NeedFromB holds items party A is missing and party B has.
	NeedFromB Section = iota
	// NeedFromA holds items party B is missing and party A has.
	NeedFromA
	// BothHave holds items both parties own at least one of.
	BothHave
)

// Sections lists the buckets in display order.
var Sections = [...]Section{NeedFromB, NeedFromA, BothHave}

func (s Section) String() string {
	switch s {
	case NeedFromB:
		return "need-from-b"
	case NeedFromA:
		return "need-from-a"
	case BothHave:
		return "both-have"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// Item is a single collectible row.
type Item struct {
	ID     string
	Name   string
	CountA int
	CountB int
}

// Partition maps item ids to items while remembering the order the ids were
// added in.
type Partition struct {
	order []string
	items map[string]Item
}

// NewPartition returns an empty partition.
func NewPartition() *Partition {
	return &Partition{items: make(map[string]Item)}
}

// Add inserts or replaces an item. Replacing keeps the original position.
func (p *Partition) Add(item Item) {
	if p.items == nil {
		p.items = make(map[string]Item)
	}
	if _, ok := p.items[item.ID]; !ok {
		p.order = append(p.order, item.ID)
	}
	p.items[item.ID] = item
}

// Get returns the item with the given id.
func (p *Partition) Get(id string) (Item, bool) {
	if p == nil {
		return Item{}, false
	}
	item, ok := p.items[id]
	return item, ok
}

// Len reports the number of items.
func (p *Partition) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// IDs returns a copy of the ids in insertion order.
func (p *Partition) IDs() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.order...)
}

// All yields every item in insertion order.
func (p *Partition) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		if p == nil {
			return
		}
		for _, id := range p.order {
			if !yield(p.items[id]) {
				return
			}
		}
	}
}

// Store is the full comparison: both party ids plus one partition per section.
type Store struct {
	PartyA string
	PartyB string

	partitions [len(Sections)]*Partition
}

// NewStore builds a store. Nil partitions are replaced with empty ones.
func NewStore(partyA, partyB string, needFromB, needFromA, bothHave *Partition) *Store {
	s := &Store{
		PartyA: strings.TrimSpace(partyA),
		PartyB: strings.TrimSpace(partyB),
	}
	for i, p := range []*Partition{needFromB, needFromA, bothHave} {
		if p == nil {
			p = NewPartition()
		}
		s.partitions[i] = p
	}
	return s
}

// Partition returns the partition for a section, or nil for an unknown section.
func (s *Store) Partition(section Section) *Partition {
	if s == nil || section < 0 || int(section) >= len(s.partitions) {
		return nil
	}
	return s.partitions[section]
}

// Total reports the item count across all sections.
func (s *Store) Total() int {
	total := 0
	for _, section := range Sections {
		total += s.Partition(section).Len()
	}
	return total
}

// Validate checks the store shape the filter pipeline relies on.
func (s *Store) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: store is nil", ErrConfiguration)
	}
	if s.PartyA == "" || s.PartyB == "" {
		return fmt.Errorf("%w: party ids are required", ErrConfiguration)
	}
	for _, section := range Sections {
		p := s.Partition(section)
		if p == nil {
			return fmt.Errorf("%w: %s partition missing", ErrConfiguration, section)
		}
		for _, id := range p.order {
			item := p.items[id]
			if strings.TrimSpace(item.ID) == "" {
				return fmt.Errorf("%w: %s has an item without id", ErrConfiguration, section)
			}
			if item.CountA < 0 || item.CountB < 0 {
				return fmt.Errorf("%w: item %s has a negative count", ErrConfiguration, item.ID)
			}
		}
	}
	return nil
}
