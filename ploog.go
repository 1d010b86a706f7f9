package ploog

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/ploog/internal/platform"
	"github.com/aretw0/ploog/pkg/core"
)

// --- Types ---

// Config is the run configuration of a ploog instance.
type Config = core.Config

// Page is one parsed and rendered source.
type Page = core.Page

// App is a wired ploog instance.
type App = platform.App

// --- Configuration ---

// Option defines a functional option for configuring ploog.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRegistry registers the ploog metrics on reg.
func WithRegistry(reg *prom.Registry) Option {
	return platform.WithRegistry(reg)
}

// WithSourceRepository allows injecting a custom source adapter.
func WithSourceRepository(repo core.SourceRepository) Option {
	return platform.WithSourceRepository(repo)
}

// WithRenderer allows injecting a custom Markdown renderer.
func WithRenderer(r core.Renderer) Option {
	return platform.WithRenderer(r)
}

// WithSiteWriter allows injecting a custom output adapter.
func WithSiteWriter(w core.SiteWriter) Option {
	return platform.WithSiteWriter(w)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New wires a ploog instance for cfg.
func New(cfg Config, opts ...Option) (*App, error) {
	return platform.New(cfg, opts...)
}

// Generate runs a single regeneration pass.
func Generate(ctx context.Context, cfg Config, opts ...Option) ([]Page, error) {
	app, err := platform.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return app.Service.Generate(ctx)
}

// Run generates the site and, when cfg asks for it, keeps watching and
// serving until ctx is done.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	app, err := platform.New(cfg, opts...)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
