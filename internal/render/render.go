// Package render appends large sequences of rows to a host in short time
// slices, yielding between slices so the host can repaint and handle input.
package render

import (
	"context"
	"iter"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/five82/collfilter/internal/records"
	"github.com/five82/collfilter/internal/view"
)

// DefaultSliceBudget bounds how long a single slice may run.
const DefaultSliceBudget = 100 * time.Millisecond

// Host is the display the renderer writes into.
type Host interface {
	Append(d view.Descriptor)
	RemoveLast()
	Count() int
}

// batchAppender is implemented by hosts that can take a whole slice at once.
type batchAppender interface {
	AppendAll(ds []view.Descriptor)
}

// YieldFunc hands control back to the host between slices. A non-nil error
// stops the current operation.
type YieldFunc func(ctx context.Context) error

// GoschedYield lets other goroutines run before the next slice.
func GoschedYield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// SleepYield pauses for d between slices.
func SleepYield(d time.Duration) YieldFunc {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// BuildFunc materializes an item. Returning false skips the item.
type BuildFunc func(item records.Item) (view.Descriptor, bool)

// Options configure a Renderer.
type Options struct {
	SliceBudget time.Duration
	Yield       YieldFunc
	Now         func() time.Time
	Logger      *zap.Logger
}

// Renderer drives time-sliced appends and clears against a Host.
type Renderer struct {
	host   Host
	budget time.Duration
	yield  YieldFunc
	now    func() time.Time
	logger *zap.Logger
}

// New builds a Renderer for host.
func New(host Host, opts Options) *Renderer {
	r := &Renderer{
		host:   host,
		budget: opts.SliceBudget,
		yield:  opts.Yield,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if r.budget <= 0 {
		r.budget = DefaultSliceBudget
	}
	if r.yield == nil {
		r.yield = GoschedYield
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Yield runs the configured yield once.
func (r *Renderer) Yield(ctx context.Context) error {
	return r.yield(ctx)
}

// Append writes a single descriptor immediately.
func (r *Renderer) Append(d view.Descriptor) {
	r.host.Append(d)
}

// RenderSequence walks every candidate of seq, one slice at a time, and
// builds and appends those marked shown. Skipped candidates still count
// against the slice budget. Views built during a slice reach the host
// together when the slice ends. It returns the number of views appended.
func (r *Renderer) RenderSequence(ctx context.Context, seq iter.Seq2[records.Item, bool], build BuildFunc) (int, error) {
	var (
		appended int
		slices   = 1
		pending  []view.Descriptor
		err      error
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		r.appendAll(pending)
		appended += len(pending)
		pending = pending[:0]
	}

	start := r.now()
	for item, shown := range seq {
		if shown {
			if d, ok := build(item); ok {
				pending = append(pending, d)
			}
		}
		if r.now().Sub(start) <= r.budget {
			continue
		}
		flush()
		if err = r.yield(ctx); err != nil {
			break
		}
		slices++
		start = r.now()
	}
	flush()

	r.logger.Debug("render finished", zap.Int("appended", appended), zap.Int("slices", slices), zap.Error(err))
	return appended, err
}

// Clear removes every element but the first, one slice at a time. Each slice
// removes at least one element.
func (r *Renderer) Clear(ctx context.Context) error {
	slices := 0
	for {
		slices++
		start := r.now()
		for r.host.Count() > 1 {
			r.host.RemoveLast()
			if r.now().Sub(start) > r.budget {
				break
			}
		}
		if r.host.Count() <= 1 {
			r.logger.Debug("clear finished", zap.Int("slices", slices))
			return nil
		}
		if err := r.yield(ctx); err != nil {
			return err
		}
	}
}

// All marks every item of seq as shown.
func All(seq iter.Seq[records.Item]) iter.Seq2[records.Item, bool] {
	return func(yield func(records.Item, bool) bool) {
		for item := range seq {
			if !yield(item, true) {
				return
			}
		}
	}
}

func (r *Renderer) appendAll(ds []view.Descriptor) {
	if b, ok := r.host.(batchAppender); ok {
		b.AppendAll(ds)
		return
	}
	for _, d := range ds {
		r.host.Append(d)
	}
}
