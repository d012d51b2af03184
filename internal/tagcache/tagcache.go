// Package tagcache remembers the item ids of the most recently requested tag.
package tagcache

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Fetcher returns the ids belonging to a tag.
type Fetcher interface {
	ListIDsForTag(ctx context.Context, tag string) ([]string, error)
}

// Query is the single cached lookup.
type Query struct {
	Tag string
	IDs []string
}

// Cache holds at most one Query. Asking for the cached tag again costs no
// fetch; asking for any other tag replaces the entry. Concurrent misses for the
// same tag are not merged.
type Cache struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu     sync.Mutex
	last   Query
	cached bool
}

// New returns an empty cache backed by fetcher.
func New(fetcher Fetcher, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{fetcher: fetcher, logger: logger}
}

// ResolveIDs returns the ids for tag. An empty tag means no tag filter and
// returns nil without fetching. On a failed fetch the previous entry is kept.
func (c *Cache) ResolveIDs(ctx context.Context, tag string) ([]string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, nil
	}

	if ids, ok := c.lookup(tag); ok {
		c.logger.Debug("tag cache hit", zap.String("tag", tag), zap.Int("ids", len(ids)))
		return ids, nil
	}

	ids, err := c.fetcher.ListIDsForTag(ctx, tag)
	if err != nil {
		c.logger.Warn("tag fetch failed", zap.String("tag", tag), zap.Error(err))
		return nil, err
	}
	ids = append([]string{}, ids...)

	c.mu.Lock()
	c.last = Query{Tag: tag, IDs: ids}
	c.cached = true
	c.mu.Unlock()

	c.logger.Debug("tag cache miss", zap.String("tag", tag), zap.Int("ids", len(ids)))
	return append([]string{}, ids...), nil
}

// Last returns the cached query, if any.
func (c *Cache) Last() (Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return Query{}, false
	}
	return Query{Tag: c.last.Tag, IDs: append([]string{}, c.last.IDs...)}, true
}

func (c *Cache) lookup(tag string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached || c.last.Tag != tag {
		return nil, false
	}
	return append([]string{}, c.last.IDs...), true
}
