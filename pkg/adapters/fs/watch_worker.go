package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/ploog/pkg/core"
)

// pendingWrite is a path that was written and has not been quiet for the
// settle window yet. gen tells a live timer from a superseded one.
type pendingWrite struct {
	timer *time.Timer
	gen   uint64
}

type settledPath struct {
	path string
	gen  uint64
}

type watchWorker struct {
	*worker.BaseWorker
	w       *Watcher
	events  chan<- core.Event
	settled chan settledPath
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	gen     uint64
}

func newWatchWorker(w *Watcher, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		w:          w,
		events:     events,
		settled:    make(chan settledPath),
	}
}

func (ww *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := ww.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := ww.w.recursiveAdd(watcher, ww.w.Root); err != nil {
		_ = watcher.Close()
		return err
	}

	ww.watcher = watcher
	ww.w.setActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	ww.cancel = cancel

	ww.SetStatus(worker.StatusRunning)
	return ww.StartFunc(runCtx, ww.run)
}

func (ww *watchWorker) Stop(ctx context.Context) error {
	if ww.cancel != nil {
		ww.StopRequested = true
		ww.cancel()
	}

	return ww.BaseWorker.Stop(ctx)
}

func (ww *watchWorker) State() worker.State {
	return ww.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// run is the main event loop for the watcher worker.
func (ww *watchWorker) run(ctx context.Context) (err error) {
	logger := ww.w.logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer close(ww.events)
	defer ww.w.setActive(false)
	defer ww.watcher.Close()
	defer ww.cancel()

	pending := make(map[string]*pendingWrite)
	defer func() {
		for _, p := range pending {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-ww.watcher.Events:
			if !ok {
				if ww.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			ww.processFilesystemEvent(ctx, event, pending)

		case s := <-ww.settled:
			p, ok := pending[s.path]
			if !ok || p.gen != s.gen {
				continue
			}
			delete(pending, s.path)
			ww.sendEvent(ctx, core.Event{
				Type:      core.EventWriteClosed,
				Path:      s.path,
				Timestamp: time.Now().Unix(),
			})

		case wErr, ok := <-ww.watcher.Errors:
			if !ok {
				if ww.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			ww.handleWatcherError(wErr)
		}
	}
}

// processFilesystemEvent filters an fsnotify event and (re)arms the settle
// timer of a written path.
func (ww *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event, pending map[string]*pendingWrite) {
	ww.w.logger.Debug("event received", "path", event.Name, "op", event.Op.String())

	if ww.w.shouldIgnore(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := ww.w.recursiveAdd(ww.watcher, event.Name); err != nil {
				ww.handleWatcherError(err)
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if p, ok := pending[event.Name]; ok {
		p.timer.Stop()
	}
	ww.gen++
	gen, path := ww.gen, event.Name
	pending[path] = &pendingWrite{
		gen: gen,
		timer: time.AfterFunc(ww.w.settle, func() {
			select {
			case ww.settled <- settledPath{path: path, gen: gen}:
			case <-ctx.Done():
			}
		}),
	}
}

// sendEvent hands a closed write to the consumer. The send blocks so events
// keep their arrival order.
func (ww *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	select {
	case ww.events <- event:
		ww.w.recordEvent()
	case <-ctx.Done():
	}
}

func (ww *watchWorker) handleWatcherError(err error) {
	ww.w.logger.Error("fsnotify error", "error", err)
	if ww.w.onError != nil {
		ww.w.onError(err)
	}
}

// recursiveAdd watches dir and every directory below it that is not ignored.
func (w *Watcher) recursiveAdd(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.Root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			w.logger.Warn("watch add failed", "path", path, "error", err)
		}
		return nil
	})
}

// shouldIgnore reports whether path never triggers a regeneration: it lives
// under the output root or matches an ignore pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	if w.output != "" && within(w.output, path) {
		return true
	}

	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return false
	}
	return matchesAny(w.ignore, filepath.ToSlash(rel))
}

// matchesAny reports whether the slash-separated relative path rel matches
// one of the doublestar patterns.
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
