package fs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/aretw0/ploog/pkg/core"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644

	indexFile = "index.html"
	htmlExt   = ".html"
)

// SiteWriter implements core.SiteWriter under an output root.
type SiteWriter struct {
	Root   string
	logger *slog.Logger
}

// NewSiteWriter creates a writer placing pages under root.
func NewSiteWriter(root string, logger *slog.Logger) *SiteWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteWriter{Root: root, logger: logger}
}

// Write materializes pages under the root using mode. Existing files are
// overwritten; pages sharing a slug overwrite each other in order.
func (w *SiteWriter) Write(ctx context.Context, pages []core.Page, mode core.LayoutMode) error {
	if !utf8.ValidString(w.Root) {
		return &core.InvalidFileNameError{Path: w.Root, Kind: core.NotUTF8}
	}
	if err := ensureDir(w.Root); err != nil {
		return err
	}

	for _, page := range pages {
		target, err := w.prepare(page.Metadata.Slug, mode)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(page.HTML+"\n"), filePerm); err != nil {
			return &core.IOError{Op: "write", Path: target, Err: err}
		}
	}

	for _, page := range pages {
		w.logger.Info("emitted", "title", page.Metadata.Title, "slug", page.Metadata.Slug)
	}
	return nil
}

// Target returns where a page with slug lands under root for mode.
func Target(root, slug string, mode core.LayoutMode) string {
	if mode == core.FlatStyle {
		return filepath.Join(root, slug+htmlExt)
	}
	return filepath.Join(root, slug, indexFile)
}

func (w *SiteWriter) prepare(slug string, mode core.LayoutMode) (string, error) {
	if !utf8.ValidString(slug) {
		return "", &core.InvalidFileNameError{Path: slug, Kind: core.NotUTF8}
	}
	if mode == core.IndexStyle {
		if err := ensureDir(filepath.Join(w.Root, slug)); err != nil {
			return "", err
		}
	}
	return Target(w.Root, slug, mode), nil
}

// ensureDir creates dir, treating an existing directory as success.
func ensureDir(dir string) error {
	if err := os.Mkdir(dir, dirPerm); err != nil && !errors.Is(err, os.ErrExist) {
		return &core.IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}
