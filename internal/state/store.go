package state

import (
	"sync"
	"time"

	"github.com/five82/collfilter/internal/filter"
	"github.com/five82/collfilter/internal/records"
)

// Snapshot represents the latest filter request status available to the UI.
type Snapshot struct {
	Busy                bool
	Criteria            filter.Criteria
	Counts              [len(records.Sections)]int
	HasResult           bool
	Requests            int
	StartedAt           time.Time
	FinishedAt          time.Time
	LastError           error
	ConsecutiveFailures int
}

// Count returns the number of rows shown for a section in the last request.
func (s Snapshot) Count(section records.Section) int {
	if section < 0 || int(section) >= len(s.Counts) {
		return 0
	}
	return s.Counts[section]
}

// Total returns the rows shown across all sections.
func (s Snapshot) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Elapsed reports how long the last finished request took.
func (s Snapshot) Elapsed() time.Duration {
	if s.Busy || s.FinishedAt.IsZero() || s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Begin marks a request as started. It returns false when one is already in
// flight.
func (s *Store) Begin(c filter.Criteria) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Busy {
		return false
	}
	s.snapshot.Busy = true
	s.snapshot.Criteria = c
	s.snapshot.Requests++
	s.snapshot.StartedAt = s.clock()
	s.snapshot.Counts = [len(records.Sections)]int{}
	return true
}

// Progress records the rows rendered so far for a section.
func (s *Store) Progress(section records.Section, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if section < 0 || int(section) >= len(s.snapshot.Counts) {
		return
	}
	s.snapshot.Counts[section] = count
}

// Finish marks the request as done. When err is non-nil the counts rendered
// so far are kept and the error is recorded for visibility.
func (s *Store) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Busy = false
	s.snapshot.FinishedAt = s.clock()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.HasResult = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
