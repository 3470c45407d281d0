package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         "",
		"HTML":     FormatHTML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"txt":      FormatText,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFromFile_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	md := "# Acme Widgets\n\nAcme Widgets is a company.\n\n| Plan | Price |\n|---|---|\n| Basic | $10 |\n"
	require.NoError(t, os.WriteFile(path, []byte(md), 0o644))

	src, err := FromFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, src.Metadata.Format)
	assert.Equal(t, path, src.Metadata.Path)
	assert.Contains(t, src.Content, `<h1 id="acme-widgets">Acme Widgets</h1>`)
	assert.Contains(t, src.Content, "<table>")
	assert.Contains(t, src.MainText, "Acme Widgets is a company.")
	assert.Len(t, src.Metadata.Hash, 64)
}

func TestFromFile_NotFound(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.html"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestFromReader_SniffsFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"html", "<!DOCTYPE html><html><body><p>Hi</p></body></html>", FormatHTML},
		{"fragment", "<h1>Title</h1><p>Body</p>", FormatHTML},
		{"markdown", "# Title\n\n- one\n- two\n", FormatMarkdown},
		{"text", "Just a sentence of prose.", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := FromReader(strings.NewReader(tt.input), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Metadata.Format)
		})
	}
}

func TestFromReader_Empty(t *testing.T) {
	_, err := FromReader(strings.NewReader("  \n "), "")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestMarkdownToHTML_DefinitionList(t *testing.T) {
	html, err := MarkdownToHTML("GEO\n: Generative engine optimization\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<dl>")
	assert.Contains(t, html, "<dt>GEO</dt>")
}

func TestFromURL_MockServer(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Guide</title></head><body>
<nav>Nav</nav><main><h1>Widget Guide</h1><p>Widgets connect conveyor segments.</p></main>
<footer>Footer</footer></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	src, err := FromURL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, page, src.Content)
	assert.Equal(t, FormatHTML, src.Metadata.Format)
	assert.Equal(t, server.URL, src.Metadata.URL)
	assert.Equal(t, "unknown", src.Metadata.Platform)
	assert.Contains(t, src.MainText, "Widgets connect conveyor segments.")
	assert.NotContains(t, src.MainText, "Footer")
	assert.False(t, src.Metadata.Rendered)
}

func TestFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := FromURL(context.Background(), server.URL, nil)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}

func TestCleanText(t *testing.T) {
	in := "# Title  \r\n\r\n\r\n\r\nSome    spaced   words\n  - bullet   item\n\n\n\nEnd"
	want := "# Title\n\nSome spaced words\n  - bullet   item\n\nEnd"
	assert.Equal(t, want, CleanText(in))
	assert.Equal(t, "", CleanText(""))
}
