package fs

import (
	"fmt"
	"time"

	"github.com/aretw0/introspection"
)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Root      string     `json:"root"`
	Output    string     `json:"output,omitempty"`
	Settle    string     `json:"settle"`
	Ignore    []string   `json:"ignore,omitempty"`
	Active    bool       `json:"active"`
	Emitted   int        `json:"emitted"`
	LastEvent *time.Time `json:"last_event,omitempty"`
	Worker    string     `json:"worker,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := WatcherState{
		Root:    w.Root,
		Output:  w.output,
		Settle:  w.settle.String(),
		Ignore:  append([]string(nil), w.ignore...),
		Active:  w.active,
		Emitted: w.emitted,
	}
	if w.lastEvent != nil {
		t := *w.lastEvent
		state.LastEvent = &t
	}
	if w.worker != nil {
		state.Worker = fmt.Sprint(w.worker.State().Status)
	}
	return state
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
