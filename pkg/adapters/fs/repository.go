package fs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/aretw0/ploog/pkg/core"
)

// Repository implements core.SourceRepository over a source directory.
type Repository struct {
	Path string
	// Ignore holds doublestar patterns, relative to Path, of entries the
	// pass never sees. The watcher skips the same patterns.
	Ignore []string
	logger *slog.Logger
}

// NewRepository creates a new filesystem-backed source repository.
func NewRepository(path string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{Path: path, logger: logger}
}

// Locate implements core.SourceRepository.
func (r *Repository) Locate(ctx context.Context) ([]core.Entry, error) {
	entries, err := Locate(r.Path)
	if err != nil || len(r.Ignore) == 0 {
		return entries, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if matchesAny(r.Ignore, filepath.Base(e.Path)) {
			r.logger.Debug("skipping ignored source", "path", e.Path)
			continue
		}
		kept = append(kept, e)
	}
	return kept, nil
}

// Load implements core.SourceRepository.
func (r *Repository) Load(ctx context.Context, paths []string) ([]core.SourceRecord, error) {
	records, err := Load(paths)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("sources loaded", "path", r.Path, "count", len(records))
	return records, nil
}

// Locate lists the immediate entries of dir, files and directories alike,
// sorted by path. Symlinks are followed to decide whether an entry is a
// directory.
func Locate(dir string) ([]core.Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, &core.IOError{Op: "read dir", Path: dir, Err: err}
	}

	entries := make([]core.Entry, 0, len(des))
	for _, de := range des {
		path := filepath.Join(dir, de.Name())
		info, err := os.Stat(path)
		if err != nil {
			return nil, &core.IOError{Op: "stat", Path: path, Err: err}
		}
		entries = append(entries, core.Entry{Path: path, IsDir: info.IsDir()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// Load reads every path in order as UTF-8 text. The first unreadable or
// non-UTF-8 file aborts the batch and no records are returned.
func Load(paths []string) ([]core.SourceRecord, error) {
	records := make([]core.SourceRecord, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &core.IOError{Op: "read", Path: path, Err: err}
		}
		if !utf8.Valid(data) {
			return nil, &core.IOError{Op: "read", Path: path, Err: core.ErrInvalidUTF8}
		}
		records = append(records, core.SourceRecord{OriginPath: path, Raw: string(data)})
	}
	return records, nil
}
