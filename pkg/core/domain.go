// Package core holds the ploog domain: the records flowing through a
// regeneration pass, the ports the pass depends on and the Service that
// drives passes, once at startup and again for every watch event.
package core

import (
	"strings"
	"time"
)

// SourceRecord is the raw content of one discovered source.
// OriginPath is empty when the content did not come from a named file.
type SourceRecord struct {
	OriginPath string
	Raw        string
}

// HasOrigin reports whether the record carries an originating path.
func (r SourceRecord) HasOrigin() bool {
	return r.OriginPath != ""
}

// Metadata is the front matter of a page.
type Metadata struct {
	Title string `toml:"title" json:"title"`
	Slug  string `toml:"slug" json:"slug"`
}

// Page is a parsed and rendered source, ready to be written.
// HTML is the complete document: the fixed shell with the body fragment inside.
type Page struct {
	Metadata Metadata
	HTML     string
}

// LayoutMode selects where a page lands under the output root.
type LayoutMode int

const (
	// IndexStyle writes root/slug/index.html.
	IndexStyle LayoutMode = iota
	// FlatStyle writes root/slug.html.
	FlatStyle
)

func (m LayoutMode) String() string {
	switch m {
	case IndexStyle:
		return "index"
	case FlatStyle:
		return "flat"
	default:
		return "unknown"
	}
}

// Config is the run configuration shared by the pipeline, the watcher and the
// server. It is built once at startup and passed by value.
type Config struct {
	SourcePath string
	OutputPath string
	Watch      bool
	Serve      bool
	Console    bool
	FlatLayout bool

	// Addr is the listen address of the preview/console server.
	Addr string
	// Settle is how long a written path must stay quiet before its write
	// counts as closed.
	Settle time.Duration
	// Ignore holds doublestar patterns, relative to SourcePath, that never
	// trigger a regeneration.
	Ignore []string
}

// Defaults applied by WithDefaults.
const (
	DefaultAddr   = "127.0.0.1:8080"
	DefaultSettle = 100 * time.Millisecond
)

// DefaultIgnore covers hidden files and the usual editor leftovers.
var DefaultIgnore = []string{"**/.*", "**/*~", "**/*.swp", "**/*.swx", "**/#*#"}

// WithDefaults returns a copy of c with empty optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.Ignore == nil {
		c.Ignore = append([]string(nil), DefaultIgnore...)
	}
	return c
}

// Layout returns the layout mode selected by the configuration.
func (c Config) Layout() LayoutMode {
	if c.FlatLayout {
		return FlatStyle
	}
	return IndexStyle
}

// ServerEnabled reports whether any HTTP surface was requested.
func (c Config) ServerEnabled() bool {
	return c.Serve || c.Console
}

// EventType represents the kind of filesystem change seen by the watcher.
type EventType string

const (
	// EventWriteClosed signals that a write to a source path has completed.
	EventWriteClosed EventType = "WRITE_CLOSED"
)

// Event is one qualifying filesystem change.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(" ")
	b.WriteString(e.Path)
	return b.String()
}
