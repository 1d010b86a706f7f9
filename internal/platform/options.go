package platform

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/ploog/pkg/core"
)

// options holds the internal wiring of a ploog application.
type options struct {
	logger   *slog.Logger
	registry *prom.Registry
	sources  core.SourceRepository
	parser   core.FrontMatterParser
	renderer core.Renderer
	writer   core.SiteWriter
	onError  func(error)
}

// Option defines a functional option for configuring ploog.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry registers the ploog metrics on reg instead of a private registry.
func WithRegistry(reg *prom.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithSourceRepository replaces the filesystem source adapter.
func WithSourceRepository(repo core.SourceRepository) Option {
	return func(o *options) {
		o.sources = repo
	}
}

// WithParser replaces the TOML front matter parser.
func WithParser(p core.FrontMatterParser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithRenderer replaces the goldmark renderer.
func WithRenderer(r core.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithSiteWriter replaces the filesystem site writer.
func WithSiteWriter(w core.SiteWriter) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}
