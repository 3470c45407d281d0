package ingestion

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.DefinitionList),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	// Authors embed JSON-LD and <details> blocks in markdown; keep them.
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

var markdownSignal = regexp.MustCompile(`(?m)^(#{1,6} \S|[-*+] \S|\d+\. \S|> \S|\|.*\|\s*$|` + "```" + `)`)

// MarkdownToHTML renders markdown with GitHub tables, task lists and definition lists.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func looksLikeMarkdown(content string) bool {
	return len(markdownSignal.FindAllStringIndex(content, 3)) >= 2
}
