package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/ploog/pkg/core"
)

// DefaultEventBuffer is the capacity of the channel returned by Watch.
const DefaultEventBuffer = 64

// WatcherConfig holds the configuration for a source watcher.
type WatcherConfig struct {
	Root   string
	Output string // paths below it are never reported
	Settle time.Duration
	Ignore []string
	Buffer int
	Logger *slog.Logger
	// ErrorHandler receives runtime watcher failures (e.g. permission denied)
	// which are otherwise only logged.
	ErrorHandler func(error)
}

// Watcher reports completed writes below a source root, recursively.
//
// fsnotify offers no portable close-write notification, so a write counts as
// closed once its path has been quiet for the settle window. Each settled
// path yields exactly one core.EventWriteClosed. Writes to the same path that
// land within one settle window of each other collapse into that single event.
type Watcher struct {
	Root    string
	output  string
	settle  time.Duration
	ignore  []string
	buffer  int
	logger  *slog.Logger
	onError func(error)

	mu        sync.RWMutex
	active    bool
	emitted   int
	lastEvent *time.Time
	worker    *watchWorker
}

// NewWatcher creates a watcher. Relative roots are resolved against the
// working directory.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	var output string
	if config.Output != "" {
		if output, err = filepath.Abs(config.Output); err != nil {
			return nil, fmt.Errorf("resolve output root: %w", err)
		}
	}

	w := &Watcher{
		Root:    root,
		output:  output,
		settle:  config.Settle,
		ignore:  config.Ignore,
		buffer:  config.Buffer,
		logger:  config.Logger,
		onError: config.ErrorHandler,
	}
	if w.settle <= 0 {
		w.settle = core.DefaultSettle
	}
	if w.buffer <= 0 {
		w.buffer = DefaultEventBuffer
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Watch starts observing the source tree. The returned channel delivers
// events in arrival order and is closed once ctx is done or Stop is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan core.Event, error) {
	w.mu.Lock()
	if w.worker != nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("watcher already started")
	}
	events := make(chan core.Event, w.buffer)
	ww := newWatchWorker(w, events)
	w.worker = ww
	w.mu.Unlock()

	if err := ww.Start(ctx); err != nil {
		w.mu.Lock()
		w.worker = nil
		w.mu.Unlock()
		return nil, err
	}
	w.logger.Info("watching sources", "path", w.Root, "settle", w.settle.String())
	return events, nil
}

// Stop halts a running watch.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.RLock()
	ww := w.worker
	w.mu.RUnlock()
	if ww == nil {
		return nil
	}
	return ww.Stop(ctx)
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) recordEvent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.emitted++
	w.lastEvent = &now
}
