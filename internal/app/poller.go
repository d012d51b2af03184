package app

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/five82/collfilter/internal/session"
)

const (
	defaultRefreshInterval = 10 * time.Minute
	retryInterval          = 30 * time.Second
	maxBackoff             = 15 * time.Minute
)

// RefresherOptions configure StartTagRefresher.
type RefresherOptions struct {
	Cache  *session.Store
	Lister session.TagLister
	Known  []string // list the UI already shows
	// Failures counts the failed fetches that came right before, so the
	// first check already backs off.
	Failures      int
	Interval      time.Duration
	RetryInterval time.Duration
	Logger        *zap.Logger
}

// StartTagRefresher checks the cached tag list at a fixed cadence and sends
// every list that differs from the last one on updates. The caller has just
// fetched opts.Known, so the first check waits a full interval, or the backoff
// for opts.Failures. The session cache only refetches once its entry expired,
// so most checks cost one local read. It returns immediately; the returned
// channel closes when ctx is done.
func StartTagRefresher(ctx context.Context, opts RefresherOptions, updates chan<- []string) <-chan struct{} {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	retry := opts.RetryInterval
	if retry <= 0 {
		retry = retryInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		last := opts.Known
		failures := max(opts.Failures, 0)
		wait := interval
		if failures > 0 {
			wait = calculateBackoff(failures, retry)
		}
		for {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			wait = interval
			tags, err := session.KnownTags(ctx, opts.Cache, opts.Lister, logger)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				failures++
				wait = calculateBackoff(failures, retry)
				logger.Warn("tag refresh failed",
					zap.Int("failures", failures),
					zap.Duration("retry_in", wait),
					zap.Error(err))
			default:
				failures = 0
				if !slices.Equal(tags, last) {
					last = tags
					select {
					case updates <- tags:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return done
}

// calculateBackoff doubles base for every failure after the first, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 1 {
		return base
	}
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
