package render

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Strikethrough enables ~~deleted~~ text. Unlike goldmark's GFM extension a
// single tilde pair is left as literal text.
var Strikethrough goldmark.Extender = &doubleTilde{}

type doubleTilde struct{}

func (e *doubleTilde) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&doubleTildeParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(extension.NewStrikethroughHTMLRenderer(), 500),
	))
}

type doubleTildeDelimiter struct{}

func (p *doubleTildeDelimiter) IsDelimiter(b byte) bool {
	return b == '~'
}

func (p *doubleTildeDelimiter) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *doubleTildeDelimiter) OnMatch(consumes int) gast.Node {
	return ast.NewStrikethrough()
}

var defaultDoubleTildeDelimiter = &doubleTildeDelimiter{}

type doubleTildeParser struct{}

func (s *doubleTildeParser) Trigger() []byte {
	return []byte{'~'}
}

func (s *doubleTildeParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 2, defaultDoubleTildeDelimiter)
	if node == nil || node.OriginalLength != 2 || before == '~' {
		return nil
	}

	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}
