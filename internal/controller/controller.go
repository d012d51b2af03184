// Package controller runs filter requests end to end: resolve the tag, clear
// the previous output, then render each section in turn.
package controller

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/collfilter/internal/filter"
	"github.com/five82/collfilter/internal/records"
	"github.com/five82/collfilter/internal/render"
	"github.com/five82/collfilter/internal/state"
	"github.com/five82/collfilter/internal/view"
)

// ErrBusy is returned when a request is submitted while another is running.
var ErrBusy = errors.New("a filter request is already running")

// Resolver maps a tag name to the ids of its members.
type Resolver interface {
	ResolveIDs(ctx context.Context, tag string) ([]string, error)
}

// ViewBuilder produces section headers and rows.
type ViewBuilder interface {
	Header(section records.Section) view.Descriptor
	Row(section records.Section, item records.Item) (view.Descriptor, bool)
}

// Options wire a Controller.
type Options struct {
	Records  *records.Store
	Tags     Resolver
	Renderer *render.Renderer
	Views    ViewBuilder
	Status   *state.Store
	Logger   *zap.Logger
}

// Controller owns the Idle/Busy cycle of filter requests.
type Controller struct {
	records  *records.Store
	tags     Resolver
	renderer *render.Renderer
	views    ViewBuilder
	status   *state.Store
	logger   *zap.Logger
}

// Result summarizes a finished request.
type Result struct {
	Criteria filter.Criteria
	Counts   [len(records.Sections)]int
	Elapsed  time.Duration
}

// Total returns the number of rows rendered across all sections.
func (r Result) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// New validates opts and returns a Controller. A missing or malformed record
// store is refused with records.ErrConfiguration.
func New(opts Options) (*Controller, error) {
	if err := opts.Records.Validate(); err != nil {
		return nil, err
	}
	if opts.Tags == nil || opts.Renderer == nil || opts.Views == nil {
		return nil, fmt.Errorf("%w: tags, renderer and views are required", records.ErrConfiguration)
	}
	status := opts.Status
	if status == nil {
		status = &state.Store{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		records:  opts.Records,
		tags:     opts.Tags,
		renderer: opts.Renderer,
		views:    opts.Views,
		status:   status,
		logger:   logger,
	}, nil
}

// Status returns the store the controller reports into.
func (c *Controller) Status() *state.Store {
	return c.status
}

// Submit runs one request. It returns ErrBusy without side effects when a
// request is already running. Whatever happens, the controller is Idle again
// when Submit returns.
func (c *Controller) Submit(ctx context.Context, criteria filter.Criteria) (Result, error) {
	criteria = criteria.Normalized()
	if !c.status.Begin(criteria) {
		return Result{}, ErrBusy
	}

	start := time.Now()
	res, err := c.run(ctx, criteria)
	res.Criteria = criteria
	res.Elapsed = time.Since(start)
	c.status.Finish(err)

	if err != nil {
		c.logger.Warn("filter request failed",
			zap.String("tag", criteria.Tag),
			zap.Bool("spares_a", criteria.OnlySparesA),
			zap.Bool("spares_b", criteria.OnlySparesB),
			zap.Error(err))
		return res, err
	}
	c.logger.Info("filter request finished",
		zap.String("tag", criteria.Tag),
		zap.Bool("spares_a", criteria.OnlySparesA),
		zap.Bool("spares_b", criteria.OnlySparesB),
		zap.Ints("counts", res.Counts[:]),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (c *Controller) run(ctx context.Context, criteria filter.Criteria) (Result, error) {
	var res Result

	// Let the host show the busy state before any work starts.
	if err := c.renderer.Yield(ctx); err != nil {
		return res, err
	}

	// Clearing and resolving touch different state. A plain group lets the
	// clear finish even when the fetch fails.
	var (
		g   errgroup.Group
		ids []string
	)
	g.Go(func() error {
		if err := c.renderer.Clear(ctx); err != nil {
			return fmt.Errorf("clear output: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ids, err = c.tags.ResolveIDs(ctx, criteria.Tag); err != nil {
			return fmt.Errorf("resolve tag %q: %w", criteria.Tag, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return res, err
	}

	emptyTag := criteria.Tag != "" && len(ids) == 0
	for _, section := range records.Sections {
		c.renderer.Append(c.views.Header(section))

		seq := filter.Candidates(c.records.Partition(section), ids, criteria)
		if emptyTag {
			seq = none
		}
		n, err := c.renderer.RenderSequence(ctx, seq, func(item records.Item) (view.Descriptor, bool) {
			return c.views.Row(section, item)
		})
		res.Counts[section] = n
		c.status.Progress(section, n)
		if err != nil {
			return res, fmt.Errorf("render %s: %w", section, err)
		}
	}
	return res, nil
}

var none iter.Seq2[records.Item, bool] = func(func(records.Item, bool) bool) {}
