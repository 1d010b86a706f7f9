package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ploogBody = "\n# I\n## am\n### Ploog\n~Based~\n"

const ploogHTML = "<h1>I</h1>\n<h2>am</h2>\n<h3>Ploog</h3>\n<p>~Based~</p>\n"

func TestFragment(t *testing.T) {
	r := New()
	got, err := r.Fragment(ploogBody)
	require.NoError(t, err)
	assert.Equal(t, ploogHTML, got)
}

func TestFragment_Idempotent(t *testing.T) {
	r := New()
	first, err := r.Fragment(ploogBody)
	require.NoError(t, err)
	second, err := New().Fragment(ploogBody)
	require.NoError(t, err)
	third, err := r.Fragment(ploogBody)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestFragment_Strikethrough(t *testing.T) {
	got, err := New().Fragment("~~gone~~ and ~kept~")
	require.NoError(t, err)
	assert.Equal(t, "<p><del>gone</del> and ~kept~</p>\n", got)
}

func TestFragment_RawHTML(t *testing.T) {
	got, err := New().Fragment("<aside>note</aside>\n")
	require.NoError(t, err)
	assert.Equal(t, "<aside>note</aside>\n", got)
}

func TestRender_WrapsInShell(t *testing.T) {
	got, err := New().Render(ploogBody)
	require.NoError(t, err)

	assert.Equal(t, `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"></head><body>`+ploogHTML+`</body></html>`, got)
	assert.Equal(t, 1, strings.Count(got, "<body>"))
}

func TestWrap_SingleSubstitution(t *testing.T) {
	got := Wrap("<p>" + Placeholder + "</p>")
	assert.Contains(t, got, "<p>"+Placeholder+"</p>")
	assert.NotContains(t, got, "<body>"+Placeholder)
}
