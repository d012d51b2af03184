package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/collfilter/internal/records"
)

func fixture() *records.Partition {
	p := records.NewPartition()
	p.Add(records.Item{ID: "1", Name: "Fox", CountA: 2, CountB: 0})
	p.Add(records.Item{ID: "2", Name: "Cat", CountA: 1, CountB: 1})
	p.Add(records.Item{ID: "3", Name: "Owl", CountA: 0, CountB: 1})
	p.Add(records.Item{ID: "4", Name: "Elk", CountA: 1, CountB: 3})
	p.Add(records.Item{ID: "5", Name: "Yak", CountA: 0, CountB: 0})
	return p
}

func ids(items []records.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestItems_PassThroughYieldsPartitionOrder(t *testing.T) {
	p := fixture()
	first := ids(Collect(p, nil, Criteria{}))
	if diff := cmp.Diff([]string{"1", "2", "3", "4", "5"}, first); diff != "" {
		t.Fatalf("pass-through mismatch (-want +got):\n%s", diff)
	}
	second := ids(Collect(p, nil, Criteria{}))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated pass-through changed order (-first +second):\n%s", diff)
	}
}

func TestItems_SparesDecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no flags", Criteria{}, []string{"1", "2", "3", "4", "5"}},
		{"only A", Criteria{OnlySparesA: true}, []string{"1", "3", "5"}},
		{"only B", Criteria{OnlySparesB: true}, []string{"1", "4", "5"}},
		{"both", Criteria{OnlySparesA: true, OnlySparesB: true}, []string{"1", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Collect(fixture(), nil, tt.criteria))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Collect mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItems_FoxCatScenario(t *testing.T) {
	p := records.NewPartition()
	p.Add(records.Item{ID: "1", Name: "Fox", CountA: 2, CountB: 0})
	p.Add(records.Item{ID: "2", Name: "Cat", CountA: 1, CountB: 1})

	got := Collect(p, nil, Criteria{OnlySparesA: true})
	want := []records.Item{{ID: "1", Name: "Fox", CountA: 2, CountB: 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Collect mismatch (-want +got):\n%s", diff)
	}
}

func TestItems_TagIDsDriveOrderAndSkipUnknown(t *testing.T) {
	p := fixture()
	tag := []string{"5", "999", "3", "1", "abc"}

	got := ids(Collect(p, tag, Criteria{Tag: "Forest"}))
	if diff := cmp.Diff([]string{"5", "3", "1"}, got); diff != "" {
		t.Fatalf("tag order mismatch (-want +got):\n%s", diff)
	}

	for _, id := range got {
		if _, ok := p.Get(id); !ok {
			t.Fatalf("output id %q is not a member of the partition", id)
		}
	}
}

func TestItems_TagIDsWithSparesFlag(t *testing.T) {
	got := ids(Collect(fixture(), []string{"4", "3", "2"}, Criteria{Tag: "x", OnlySparesB: true}))
	if diff := cmp.Diff([]string{"4"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestItems_EmptyInputs(t *testing.T) {
	if got := Collect(records.NewPartition(), nil, Criteria{}); len(got) != 0 {
		t.Fatalf("empty partition yielded %v", got)
	}
	if got := Collect(nil, []string{"1"}, Criteria{}); len(got) != 0 {
		t.Fatalf("nil partition yielded %v", got)
	}
}

func TestItems_StopsWhenConsumerStops(t *testing.T) {
	count := 0
	for range Items(fixture(), []string{"1", "2", "3"}, Criteria{Tag: "x"}) {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("consumed %d items, want 1", count)
	}
}

func TestCandidates_ReportsSkippedIDs(t *testing.T) {
	type candidate struct {
		ID    string
		Shown bool
	}
	var got []candidate
	for item, shown := range Candidates(fixture(), []string{"9", "2", "1", "8"}, Criteria{Tag: "x", OnlySparesA: true}) {
		got = append(got, candidate{item.ID, shown})
	}
	// Unknown ids come back as zero items so every id is accounted for.
	want := []candidate{{"", false}, {"2", false}, {"1", true}, {"", false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCriteria_Normalized(t *testing.T) {
	c := Criteria{Tag: "  Forest "}.Normalized()
	if c.Tag != "Forest" {
		t.Fatalf("Tag = %q, want Forest", c.Tag)
	}
}
