package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsadapter "github.com/aretw0/ploog/pkg/adapters/fs"
	"github.com/aretw0/ploog/pkg/server"
)

type stubComponent struct {
	kind  string
	state any
}

func (c stubComponent) State() any            { return c.state }
func (c stubComponent) ComponentType() string { return c.kind }

func setupSite(t *testing.T) (src, out string) {
	t.Helper()

	root := t.TempDir()
	src = filepath.Join(root, "src")
	out = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(out, "hello"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "post1.md"), []byte("# I"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "hello", "index.html"), []byte("<p>hi</p>\n"), 0o644))
	return src, out
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPreview(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{OutputRoot: out, SourceRoot: src, Preview: true})

	rec := get(t, s.Handler(), "/preview/hello/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>hi</p>\n", rec.Body.String())

	rec = get(t, s.Handler(), "/preview")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)

	rec = get(t, s.Handler(), "/preview/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsoleDisabled(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{OutputRoot: out, SourceRoot: src, Preview: true})

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/console/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/console/api/dir").Code)
}

func TestConsole_Shell(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{OutputRoot: out, SourceRoot: src, Console: true})

	rec := get(t, s.Handler(), "/console/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ploog console")

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/preview/hello/").Code)
}

func TestConsole_Dir(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{OutputRoot: out, SourceRoot: src, Console: true})

	rec := get(t, s.Handler(), "/console/api/dir")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var tree fsadapter.SiteTree
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tree))
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "hello", tree.Children[0].Name)
	assert.Equal(t, []fsadapter.PageRef{{Name: "index.html", Path: "hello/index.html"}}, tree.Children[0].Pages)
}

func TestConsole_Source(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{OutputRoot: out, SourceRoot: src, Console: true})

	rec := get(t, s.Handler(), "/console/api/source/post1.md")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# I", rec.Body.String())
}

func TestConsole_State(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{
		OutputRoot: out,
		SourceRoot: src,
		Console:    true,
		Components: []server.Component{stubComponent{kind: "service", state: map[string]int{"passes": 3}}},
	})

	rec := get(t, s.Handler(), "/console/api/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var states map[string]map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&states))
	assert.Equal(t, 3, states["service"]["passes"])
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ploog_passes_total 1\n")
	})
	s := server.New(server.Config{Preview: true, Metrics: metrics})

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ploog_passes_total")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	src, out := setupSite(t)
	s := server.New(server.Config{OutputRoot: out, SourceRoot: src, Preview: true})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/preview/hello/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "<p>hi</p>\n", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(server.ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStart_BadAddr(t *testing.T) {
	s := server.New(server.Config{Addr: "256.0.0.1:bad", Preview: true})
	assert.Error(t, s.Start(context.Background()))
}
