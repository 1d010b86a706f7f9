package core

import (
	"context"
	"time"
)

// Entry is one immediate child of the source directory.
type Entry struct {
	Path  string
	IsDir bool
}

// SourceRepository defines where a pass reads its sources from.
// Adhering to this interface keeps the pipeline independent of the
// filesystem layout.
type SourceRepository interface {
	// Locate lists the immediate entries of the source root, sorted by path.
	Locate(ctx context.Context) ([]Entry, error)

	// Load reads every path, in order, into a SourceRecord.
	// The first unreadable path aborts the whole batch.
	Load(ctx context.Context, paths []string) ([]SourceRecord, error)
}

// FrontMatterParser splits a record into its metadata and Markdown body.
type FrontMatterParser interface {
	Parse(rec SourceRecord) (Metadata, string, error)
}

// Renderer turns a Markdown body into a complete HTML document.
type Renderer interface {
	Render(body string) (string, error)
}

// SiteWriter materializes pages under the output root.
type SiteWriter interface {
	Write(ctx context.Context, pages []Page, mode LayoutMode) error
}

// Recorder receives pass metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObservePass(d time.Duration, err error)
	AddPagesWritten(n int)
	IncWatchEvent(t EventType)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObservePass(time.Duration, error) {}
func (NoopRecorder) AddPagesWritten(int)              {}
func (NoopRecorder) IncWatchEvent(EventType)          {}
