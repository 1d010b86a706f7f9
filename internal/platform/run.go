package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/ploog/pkg/adapters/fs"
	"github.com/aretw0/ploog/pkg/core"
	"github.com/aretw0/ploog/pkg/server"
)

// Run starts the watcher when asked, performs the startup pass and then keeps
// regenerating on source changes and serving the site until ctx ends.
// A failing startup pass is returned as is; later failures are only logged.
func (a *App) Run(ctx context.Context) error {
	cfg := a.Config

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	components := []server.Component{a.Service}

	// The watcher starts before the startup pass so a save made while that
	// pass runs is queued rather than lost.
	var events <-chan core.Event
	if cfg.Watch {
		watcher, err := fs.NewWatcher(fs.WatcherConfig{
			Root:         cfg.SourcePath,
			Output:       cfg.OutputPath,
			Settle:       cfg.Settle,
			Ignore:       cfg.Ignore,
			Logger:       a.logger,
			ErrorHandler: a.onError,
		})
		if err != nil {
			return err
		}
		if events, err = watcher.Watch(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		components = append(components, watcher)
	}

	if _, err := a.Service.Generate(ctx); err != nil {
		return err
	}

	if !cfg.Watch && !cfg.ServerEnabled() {
		return nil
	}

	if events != nil {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			return a.Service.Run(ctx, events)
		}, lifecycle.WithErrorHandler(func(err error) {
			a.logger.Error("regeneration loop stopped", "error", err)
		}))
	}

	if !cfg.ServerEnabled() {
		<-ctx.Done()
		return nil
	}

	srv := server.New(server.Config{
		Addr:       cfg.Addr,
		OutputRoot: cfg.OutputPath,
		SourceRoot: cfg.SourcePath,
		Preview:    cfg.Serve,
		Console:    cfg.Console,
		Metrics:    a.Recorder.Handler(),
		Components: components,
		Logger:     a.logger,
	})
	return srv.Start(ctx)
}
