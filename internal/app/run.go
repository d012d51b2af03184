package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/five82/collfilter/internal/prefs"
	"github.com/five82/collfilter/internal/ui"
)

// RunTUI loads the comparison and runs the terminal UI until the user quits
// or ctx is cancelled.
func (a *App) RunTUI(ctx context.Context) error {
	p, err := a.Load(ctx)
	if err != nil {
		return err
	}

	// The form still works without suggestions, so a failed tag list is
	// only logged.
	failures := 0
	tags, err := a.KnownTags(ctx)
	if err != nil {
		failures = 1
		a.logger.Warn("known tags unavailable", zap.Error(err))
	}

	userPrefs, _ := prefs.Load(a.opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	updates := make(chan []string)
	done := StartTagRefresher(ctx, RefresherOptions{
		Cache:    a.cache,
		Lister:   a.catalog,
		Known:    tags,
		Failures: failures,
		Logger:   a.logger,
	}, updates)
	defer func() {
		cancel()
		<-done
	}()

	return ui.Run(ui.Options{
		Context:    ctx,
		Submitter:  p.Controller,
		Status:     p.Status,
		Buffer:     p.Buffer,
		Tags:       tags,
		TagUpdates: updates,
		PartyA:     p.Records.PartyA,
		PartyB:     p.Records.PartyB,
		LogPath:    a.cfg.LogPath,
		Prefs:      userPrefs,
		PrefsPath:  a.opts.PrefsPath,
		Logger:     a.logger,
	})
}
