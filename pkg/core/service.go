package core

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service runs regeneration passes: locate, load, parse, render, write.
// Passes never overlap; Generate and Run must not be called concurrently.
type Service struct {
	sources  SourceRepository
	parser   FrontMatterParser
	renderer Renderer
	writer   SiteWriter
	layout   LayoutMode
	logger   *slog.Logger
	recorder Recorder

	mu         sync.RWMutex
	passes     int
	failures   int
	lastPassID string
	lastPassAt *time.Time
	lastErr    string
	watching   bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used for pass records.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLayout selects the output layout applied to every pass.
func WithLayout(mode LayoutMode) ServiceOption {
	return func(s *Service) {
		s.layout = mode
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a new Service.
func NewService(sources SourceRepository, parser FrontMatterParser, renderer Renderer, writer SiteWriter, opts ...ServiceOption) *Service {
	s := &Service{
		sources:  sources,
		parser:   parser,
		renderer: renderer,
		writer:   writer,
		layout:   IndexStyle,
		logger:   slog.Default(),
		recorder: NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs one full regeneration pass and returns the pages it wrote.
// Every source is parsed and rendered before the first write, so a failing
// source leaves the output tree untouched. The context is only checked before
// the pass starts; a running pass is not interrupted.
func (s *Service) Generate(ctx context.Context) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	passID := uuid.Must(uuid.NewV7()).String()
	logger := s.logger.With("pass_id", passID)
	logger.Debug("regeneration started")

	start := time.Now()
	pages, err := s.pass(ctx, logger)
	elapsed := time.Since(start)

	s.recorder.ObservePass(elapsed, err)
	s.recordPass(passID, start, err)

	if err != nil {
		return nil, err
	}
	s.recorder.AddPagesWritten(len(pages))
	logger.Info("regeneration finished", "pages", len(pages), "duration_ms", elapsed.Milliseconds())
	return pages, nil
}

func (s *Service) pass(ctx context.Context, logger *slog.Logger) ([]Page, error) {
	entries, err := s.sources.Locate(ctx)
	if err != nil {
		return nil, &PassError{Stage: StageLocate, Err: err}
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			logger.Debug("skipping directory", "path", e.Path)
			continue
		}
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)

	records, err := s.sources.Load(ctx, paths)
	if err != nil {
		return nil, &PassError{Stage: StageLoad, Err: err}
	}

	pages := make([]Page, 0, len(records))
	for _, rec := range records {
		meta, body, err := s.parser.Parse(rec)
		if err != nil {
			return nil, &PassError{Stage: StageParse, Err: err}
		}
		html, err := s.renderer.Render(body)
		if err != nil {
			return nil, &PassError{Stage: StageRender, Err: err}
		}
		pages = append(pages, Page{Metadata: meta, HTML: html})
	}

	if err := s.writer.Write(ctx, pages, s.layout); err != nil {
		return nil, &PassError{Stage: StageWrite, Err: err}
	}
	return pages, nil
}

// Run consumes events until ctx is done or the channel closes, running one
// full pass per event in arrival order. A failed pass is logged and the loop
// keeps waiting.
func (s *Service) Run(ctx context.Context, events <-chan Event) error {
	s.setWatching(true)
	defer s.setWatching(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.recorder.IncWatchEvent(ev.Type)
			s.logger.Info("change detected; regenerating", "path", ev.Path, "event", string(ev.Type))

			if _, err := s.Generate(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				s.logger.Error("regeneration failed", "path", ev.Path, "error", err)
			}
		}
	}
}

func (s *Service) recordPass(passID string, at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes++
	s.lastPassID = passID
	s.lastPassAt = &at
	if err != nil {
		s.failures++
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
}

func (s *Service) setWatching(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching = active
}
