// Package render converts Markdown bodies into ploog HTML documents.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Placeholder is replaced by the rendered fragment in Shell.
const Placeholder = "{{body}}"

// Shell is the fixed document every page is embedded in.
const Shell = `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"></head><body>` + Placeholder + `</body></html>`

// Renderer implements core.Renderer with goldmark.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer for CommonMark plus double-tilde strikethrough.
// Raw HTML in the body is passed through.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(Strikethrough),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Fragment renders body into an HTML fragment.
func (r *Renderer) Fragment(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Render implements core.Renderer: the fragment of body wrapped in Shell.
func (r *Renderer) Render(body string) (string, error) {
	fragment, err := r.Fragment(body)
	if err != nil {
		return "", err
	}
	return Wrap(fragment), nil
}

// Wrap embeds fragment into Shell.
func Wrap(fragment string) string {
	return strings.Replace(Shell, Placeholder, fragment, 1)
}
