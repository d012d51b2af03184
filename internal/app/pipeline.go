package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/collfilter/internal/compare"
	"github.com/five82/collfilter/internal/controller"
	"github.com/five82/collfilter/internal/records"
	"github.com/five82/collfilter/internal/render"
	"github.com/five82/collfilter/internal/state"
	"github.com/five82/collfilter/internal/tagcache"
	"github.com/five82/collfilter/internal/view"
)

// Pipeline is one loaded comparison wired to an in-memory host.
type Pipeline struct {
	Records    *records.Store
	Skipped    int
	Views      *view.Builder
	Buffer     *render.Buffer
	Status     *state.Store
	Controller *controller.Controller
}

// Load reads the comparison, from the saved page when one was given or from
// the site otherwise, and builds the filter pipeline around it.
func (a *App) Load(ctx context.Context) (*Pipeline, error) {
	res, err := a.loadComparison(ctx)
	if err != nil {
		return nil, err
	}
	store := res.Store

	a.logger.Info("comparison loaded",
		zap.String("party_a", store.PartyA),
		zap.String("party_b", store.PartyB),
		zap.Int(records.NeedFromB.String(), store.Partition(records.NeedFromB).Len()),
		zap.Int(records.NeedFromA.String(), store.Partition(records.NeedFromA).Len()),
		zap.Int(records.BothHave.String(), store.Partition(records.BothHave).Len()),
		zap.Int("skipped_rows", res.Skipped))

	views, err := view.NewBuilder(a.catalog.BaseURL(), store.PartyA, store.PartyB)
	if err != nil {
		return nil, fmt.Errorf("init view builder: %w", err)
	}

	buffer := render.NewBuffer(view.Sentinel())
	renderer := render.New(buffer, render.Options{
		SliceBudget: a.cfg.SliceBudget,
		Logger:      a.logger,
	})
	status := &state.Store{}

	ctrl, err := controller.New(controller.Options{
		Records:  store,
		Tags:     tagcache.New(a.catalog, a.logger),
		Renderer: renderer,
		Views:    views,
		Status:   status,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Records:    store,
		Skipped:    res.Skipped,
		Views:      views,
		Buffer:     buffer,
		Status:     status,
		Controller: ctrl,
	}, nil
}

func (a *App) loadComparison(ctx context.Context) (compare.Result, error) {
	if path := a.opts.PagePath; path != "" {
		res, err := compare.ParseFile(path)
		if err != nil {
			return compare.Result{}, fmt.Errorf("read comparison page %s: %w", path, err)
		}
		return res, nil
	}
	if a.cfg.CompareTo == "" {
		return compare.Result{}, fmt.Errorf("%w: no comparison target; set compare_to or pass --page", records.ErrConfiguration)
	}
	res, err := compare.Fetch(ctx, a.catalog, a.cfg.CompareTo)
	if err != nil {
		return compare.Result{}, fmt.Errorf("load comparison with %s: %w", a.cfg.CompareTo, err)
	}
	return res, nil
}
