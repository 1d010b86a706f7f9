package core_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ploog/pkg/core"
)

// MockSources serves records from memory.
type MockSources struct {
	entries []core.Entry
	raw     map[string]string
	loadErr error
	loaded  [][]string
}

func (m *MockSources) Locate(ctx context.Context) ([]core.Entry, error) {
	return m.entries, nil
}

func (m *MockSources) Load(ctx context.Context, paths []string) ([]core.SourceRecord, error) {
	m.loaded = append(m.loaded, paths)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]core.SourceRecord, 0, len(paths))
	for _, p := range paths {
		out = append(out, core.SourceRecord{OriginPath: p, Raw: m.raw[p]})
	}
	return out, nil
}

// stemParser names pages after their file and rejects raw text "bad".
type stemParser struct{}

func (stemParser) Parse(rec core.SourceRecord) (core.Metadata, string, error) {
	if rec.Raw == "bad" {
		return core.Metadata{}, "", &core.MetadataDecodeError{Path: rec.OriginPath, Err: errors.New("invalid")}
	}
	stem := strings.TrimSuffix(filepath.Base(rec.OriginPath), filepath.Ext(rec.OriginPath))
	return core.Metadata{Title: stem, Slug: stem}, rec.Raw, nil
}

type upperRenderer struct{}

func (upperRenderer) Render(body string) (string, error) {
	return strings.ToUpper(body), nil
}

// MockWriter records every batch it receives.
type MockWriter struct {
	batches [][]core.Page
	modes   []core.LayoutMode
}

func (m *MockWriter) Write(ctx context.Context, pages []core.Page, mode core.LayoutMode) error {
	m.batches = append(m.batches, pages)
	m.modes = append(m.modes, mode)
	return nil
}

func newFixture() (*MockSources, *MockWriter) {
	sources := &MockSources{
		entries: []core.Entry{
			{Path: "src/post2.md"},
			{Path: "src/nested", IsDir: true},
			{Path: "src/post1.md"},
		},
		raw: map[string]string{
			"src/post1.md": "one",
			"src/post2.md": "two",
		},
	}
	return sources, &MockWriter{}
}

func TestService_Generate(t *testing.T) {
	sources, writer := newFixture()
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer, core.WithLayout(core.FlatStyle))

	pages, err := svc.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, sources.loaded, 1)
	assert.Equal(t, []string{"src/post1.md", "src/post2.md"}, sources.loaded[0], "directories skipped, paths sorted")

	require.Len(t, pages, 2)
	assert.Equal(t, core.Metadata{Title: "post1", Slug: "post1"}, pages[0].Metadata)
	assert.Equal(t, "ONE", pages[0].HTML)
	assert.Equal(t, "TWO", pages[1].HTML)

	require.Len(t, writer.batches, 1)
	assert.Equal(t, core.FlatStyle, writer.modes[0])
}

func TestService_Generate_BatchAtomicity(t *testing.T) {
	sources, writer := newFixture()
	sources.raw["src/post2.md"] = "bad"
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer)

	_, err := svc.Generate(context.Background())
	require.Error(t, err)

	var passErr *core.PassError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, core.StageParse, passErr.Stage)

	var decodeErr *core.MetadataDecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Empty(t, writer.batches, "nothing may be written when a source fails to parse")

	state := svc.State().(core.ServiceState)
	assert.Equal(t, 1, state.Passes)
	assert.Equal(t, 1, state.Failures)
	assert.NotEmpty(t, state.LastError)
}

func TestService_Generate_LoadError(t *testing.T) {
	sources, writer := newFixture()
	sources.loadErr = &core.IOError{Op: "read", Path: "src/post1.md", Err: errors.New("permission denied")}
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer)

	_, err := svc.Generate(context.Background())
	var passErr *core.PassError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, core.StageLoad, passErr.Stage)

	var ioErr *core.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Empty(t, writer.batches)
}

func TestService_Generate_CanceledContext(t *testing.T) {
	sources, writer := newFixture()
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sources.loaded)
}

func TestService_Run_OnePassPerEvent(t *testing.T) {
	sources, writer := newFixture()
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer)

	events := make(chan core.Event, 3)
	events <- core.Event{Type: core.EventWriteClosed, Path: "src/post1.md"}
	events <- core.Event{Type: core.EventWriteClosed, Path: "src/post1.md"}
	events <- core.Event{Type: core.EventWriteClosed, Path: "src/post2.md"}
	close(events)

	require.NoError(t, svc.Run(context.Background(), events))

	assert.Len(t, writer.batches, 3, "bursts are not coalesced")
	state := svc.State().(core.ServiceState)
	assert.Equal(t, 3, state.Passes)
	assert.False(t, state.Watching)
}

func TestService_Run_SurvivesFailedPass(t *testing.T) {
	sources, writer := newFixture()
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer)

	events := make(chan core.Event, 2)
	events <- core.Event{Type: core.EventWriteClosed, Path: "src/post2.md"}
	close(events)

	sources.raw["src/post2.md"] = "bad"
	require.NoError(t, svc.Run(context.Background(), events))

	state := svc.State().(core.ServiceState)
	assert.Equal(t, 1, state.Failures)
	assert.Empty(t, writer.batches)
}

func TestService_Run_StopsOnCancel(t *testing.T) {
	sources, writer := newFixture()
	svc := core.NewService(sources, stemParser{}, upperRenderer{}, writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan core.Event)
	require.NoError(t, svc.Run(ctx, events))
	assert.Empty(t, writer.batches)
}
