package render

import (
	"sync"

	"github.com/five82/collfilter/internal/view"
)

// Buffer is an in-memory Host that can be read from another goroutine while a
// render is running. Readers see whole slices, never half of one.
type Buffer struct {
	mu      sync.RWMutex
	items   []view.Descriptor
	version uint64
}

// NewBuffer returns a buffer holding only the given baseline element.
func NewBuffer(baseline view.Descriptor) *Buffer {
	return &Buffer{items: []view.Descriptor{baseline}}
}

// Append implements Host.
func (b *Buffer) Append(d view.Descriptor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
	b.version++
}

// AppendAll adds ds under a single lock.
func (b *Buffer) AppendAll(ds []view.Descriptor) {
	if len(ds) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, ds...)
	b.version++
}

// RemoveLast implements Host.
func (b *Buffer) RemoveLast() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return
	}
	b.items[len(b.items)-1] = view.Descriptor{}
	b.items = b.items[:len(b.items)-1]
	b.version++
}

// Count implements Host.
func (b *Buffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Version increases on every change; readers use it to skip redundant redraws.
func (b *Buffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Snapshot returns a copy of the current contents and their version.
func (b *Buffer) Snapshot() ([]view.Descriptor, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	dup := make([]view.Descriptor, len(b.items))
	copy(dup, b.items)
	return dup, b.version
}
