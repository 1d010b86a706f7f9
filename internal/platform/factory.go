package platform

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/aretw0/ploog/pkg/adapters/fs"
	"github.com/aretw0/ploog/pkg/core"
	"github.com/aretw0/ploog/pkg/frontmatter"
	"github.com/aretw0/ploog/pkg/metrics"
	"github.com/aretw0/ploog/pkg/render"
)

// App is a wired ploog instance: the regeneration service plus what the
// watch loop and the server need around it.
type App struct {
	Config   core.Config
	Service  *core.Service
	Recorder *metrics.PrometheusRecorder

	logger  *slog.Logger
	onError func(error)
}

// New wires the default adapters for cfg. Options replace individual ports.
//
//	app, err := platform.New(core.Config{SourcePath: "posts", OutputPath: "public"})
func New(cfg core.Config, opts ...Option) (*App, error) {
	cfg = cfg.WithDefaults()
	if cfg.SourcePath == "" || cfg.OutputPath == "" {
		return nil, fmt.Errorf("source and output paths are required")
	}
	if !utf8.ValidString(cfg.OutputPath) {
		return nil, &core.InvalidFileNameError{Path: cfg.OutputPath, Kind: core.NotUTF8}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	if o.sources == nil {
		repo := fs.NewRepository(cfg.SourcePath, logger)
		repo.Ignore = cfg.Ignore
		o.sources = repo
	}
	if o.parser == nil {
		o.parser = frontmatter.NewParser()
	}
	if o.renderer == nil {
		o.renderer = render.New()
	}
	if o.writer == nil {
		o.writer = fs.NewSiteWriter(cfg.OutputPath, logger)
	}

	recorder := metrics.NewPrometheusRecorder(o.registry)
	service := core.NewService(o.sources, o.parser, o.renderer, o.writer,
		core.WithServiceLogger(logger),
		core.WithLayout(cfg.Layout()),
		core.WithRecorder(recorder),
	)

	return &App{
		Config:   cfg,
		Service:  service,
		Recorder: recorder,
		logger:   logger,
		onError:  o.onError,
	}, nil
}
