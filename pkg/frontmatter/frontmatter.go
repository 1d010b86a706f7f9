// Package frontmatter splits ploog sources into their TOML metadata block and
// Markdown body.
//
// A source carries front matter when its first line is exactly the delimiter:
//
//	---
//	title = 'Hello world.'
//	slug = 'hello'
//	---
//	# Body
//
// Sources without it get their title and slug from the file name.
package frontmatter

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/aretw0/ploog/pkg/core"
)

// Delimiter is the line that opens and closes a metadata block.
const Delimiter = "---"

var requiredKeys = []string{"title", "slug"}

// Parser implements core.FrontMatterParser.
type Parser struct{}

// NewParser creates a new front-matter parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements core.FrontMatterParser.
func (p *Parser) Parse(rec core.SourceRecord) (core.Metadata, string, error) {
	return Parse(rec)
}

// Parse returns the metadata of rec and the Markdown body left to render.
func Parse(rec core.SourceRecord) (core.Metadata, string, error) {
	block, body, ok := Split(rec.Raw)
	if !ok {
		meta, err := FromPath(rec.OriginPath)
		if err != nil {
			return core.Metadata{}, "", err
		}
		return meta, rec.Raw, nil
	}

	meta, err := Decode(block)
	if err != nil {
		return core.Metadata{}, "", &core.MetadataDecodeError{Path: rec.OriginPath, Err: err}
	}
	return meta, body, nil
}

// Split separates raw into its metadata block and body.
// ok is false when raw does not open with a delimiter line. When the block is
// never closed the whole remainder is the block and body is raw itself.
func Split(raw string) (block, body string, ok bool) {
	first, rest, _ := cutLine(raw)
	if first != Delimiter {
		return "", raw, false
	}

	var b strings.Builder
	for rest != "" {
		var line string
		var had bool
		lineStart := rest
		line, rest, had = cutLine(rest)
		if line == Delimiter {
			return b.String(), rest, true
		}
		if had {
			b.WriteString(lineStart[:len(lineStart)-len(rest)])
		} else {
			b.WriteString(lineStart)
		}
	}
	return b.String(), raw, true
}

// cutLine returns the first line of s without its terminator, the text after
// the terminator and whether a terminator was found.
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, found
}

// Decode parses a TOML metadata block. Both title and slug must be present
// as strings.
func Decode(block string) (core.Metadata, error) {
	var meta core.Metadata
	md, err := toml.Decode(block, &meta)
	if err != nil {
		return core.Metadata{}, err
	}
	for _, key := range requiredKeys {
		if !md.IsDefined(key) {
			return core.Metadata{}, fmt.Errorf("missing required key %q", key)
		}
	}
	return meta, nil
}

// FromPath derives metadata from a file name: title and slug are both the
// file stem.
func FromPath(path string) (core.Metadata, error) {
	if path == "" {
		return core.Metadata{}, core.ErrMissingMetadata
	}
	stem, err := Stem(path)
	if err != nil {
		return core.Metadata{}, err
	}
	return core.Metadata{Title: stem, Slug: stem}, nil
}

// Stem returns the base name of path without its final extension. A name
// whose only dot is the leading one is returned whole.
func Stem(path string) (string, error) {
	if !utf8.ValidString(path) {
		return "", &core.InvalidFileNameError{Path: path, Kind: core.NotUTF8}
	}

	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", &core.InvalidFileNameError{Path: path, Kind: core.NoExtension}
	}

	stem := base
	if i := strings.LastIndex(base, "."); i > 0 {
		stem = base[:i]
	}
	if stem == "" {
		return "", &core.InvalidFileNameError{Path: path, Kind: core.NoExtension}
	}
	return stem, nil
}
