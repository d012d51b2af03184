package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/five82/collfilter/internal/session"
)

func TestCalculateBackoff(t *testing.T) {
	base := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, 30 * time.Second},
		{"two failures", 2, time.Minute},
		{"three failures", 3, 2 * time.Minute},
		{"five failures", 5, 8 * time.Minute},
		{"six failures capped", 6, 15 * time.Minute}, // would be 16m
		{"many failures capped", 40, 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, base)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

type sequenceLister struct {
	mu    sync.Mutex
	lists [][]string
	calls int
}

func (s *sequenceLister) ListTags(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.lists) == 0 {
		return nil, errors.New("no more lists")
	}
	next := s.lists[0]
	if len(s.lists) > 1 {
		s.lists = s.lists[1:]
	}
	return next, nil
}

func TestStartTagRefresher_SendsChangedLists(t *testing.T) {
	// A tiny TTL expires the cached list before every check.
	cache, err := session.Open(filepath.Join(t.TempDir(), "session.db"), time.Nanosecond)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	lister := &sequenceLister{lists: [][]string{
		{"Forest"},
		{"Forest", "Ocean"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan []string)
	done := StartTagRefresher(ctx, RefresherOptions{
		Cache:    cache,
		Lister:   lister,
		Known:    []string{"Forest"},
		Interval: time.Millisecond,
	}, updates)

	select {
	case got := <-updates:
		if len(got) != 2 || got[1] != "Ocean" {
			t.Fatalf("update = %v, want [Forest Ocean]", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no update received")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("refresher did not stop after cancel")
	}
}

func TestStartTagRefresher_BacksOffAfterFailedStart(t *testing.T) {
	cache, err := session.Open(filepath.Join(t.TempDir(), "session.db"), time.Nanosecond)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	lister := &sequenceLister{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartTagRefresher(ctx, RefresherOptions{
		Cache:         cache,
		Lister:        lister,
		Failures:      1,
		Interval:      time.Millisecond,
		RetryInterval: time.Hour,
	}, make(chan []string))

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	lister.mu.Lock()
	defer lister.mu.Unlock()
	if lister.calls != 0 {
		t.Fatalf("ListTags called %d times right after a failed fetch, want 0", lister.calls)
	}
}
