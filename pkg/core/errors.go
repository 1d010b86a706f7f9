package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrMissingMetadata is returned when a source has no front matter and no
	// originating path to derive metadata from.
	ErrMissingMetadata = errors.New("missing metadata")
	// ErrInvalidFileName matches every InvalidFileNameError.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrInvalidUTF8 is wrapped by the IOError of a source that is not UTF-8 text.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// InvalidFileNameKind tells why a path could not be used as a name.
type InvalidFileNameKind int

const (
	NotUTF8 InvalidFileNameKind = iota + 1
	NoExtension
)

func (k InvalidFileNameKind) String() string {
	switch k {
	case NotUTF8:
		return "not utf-8"
	case NoExtension:
		return "no file stem"
	default:
		return "unknown"
	}
}

// InvalidFileNameError is raised when a title/slug cannot be derived from a
// path, or a slug cannot be embedded in an output path.
type InvalidFileNameError struct {
	Path string
	Kind InvalidFileNameKind
}

func (e *InvalidFileNameError) Error() string {
	return fmt.Sprintf("invalid file name %q: %s", e.Path, e.Kind)
}

func (e *InvalidFileNameError) Is(target error) bool {
	return target == ErrInvalidFileName
}

// MetadataDecodeError wraps a failure to decode a front-matter block.
type MetadataDecodeError struct {
	Path string
	Err  error
}

func (e *MetadataDecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to decode front matter: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode front matter of %s: %v", e.Path, e.Err)
}

func (e *MetadataDecodeError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure with the operation that hit it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Stage names a step of a regeneration pass.
type Stage string

const (
	StageLocate Stage = "locate"
	StageLoad   Stage = "load"
	StageParse  Stage = "parse"
	StageRender Stage = "render"
	StageWrite  Stage = "write"
)

// PassError is the single failure a regeneration pass reports.
type PassError struct {
	Stage Stage
	Err   error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }
