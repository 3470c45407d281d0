// Package ingestion loads content to score from files, readers and URLs and
// normalizes it to HTML or clean text.
package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/geo-scorer/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
	// ErrEmptyContent is returned when the source has nothing to score
	ErrEmptyContent = errors.New("content is empty")
)

// Format is the markup of ingested content.
type Format string

// Supported formats.
const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat maps a user supplied name to a Format. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported format %q: must be html, markdown, or text", s)
}

// Metadata describes where content came from.
type Metadata struct {
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
	Timestamp   string `json:"timestamp"` // RFC3339 format
	Hash        string `json:"hash"`      // SHA256 hex digest of the original content
	Format      Format `json:"format"`
	Platform    string `json:"platform,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Bytes       int    `json:"bytes"`
	Rendered    bool   `json:"rendered,omitempty"` // Fetched through the headless browser
}

// Source is content ready for scoring. Content is HTML for html and markdown
// input and clean text otherwise.
type Source struct {
	Content  string
	MainText string
	Metadata *Metadata
}

// URLOptions configures FromURL.
type URLOptions struct {
	Fetch      *fetch.Options
	UseBrowser bool
	Logger     *slog.Logger
}

// FromFile reads a file, detecting its format from the extension unless format is set.
func FromFile(path string, format Format) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if format == "" {
		format = formatFromExtension(path)
	}
	src, err := FromBytes(content, format)
	if err != nil {
		return nil, err
	}
	src.Metadata.Path = path
	return src, nil
}

// FromReader reads all of r (for example stdin).
func FromReader(r io.Reader, format Format) (*Source, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return FromBytes(content, format)
}

// FromBytes normalizes raw content. An empty format is sniffed.
func FromBytes(content []byte, format Format) (*Source, error) {
	raw := string(content)
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyContent
	}
	if format == "" {
		format = sniffFormat(raw)
	}

	meta := NewMetadata(raw, "")
	meta.Format = format
	src := &Source{Metadata: meta}

	switch format {
	case FormatMarkdown:
		html, err := MarkdownToHTML(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
		}
		src.Content = html
	case FormatHTML:
		src.Content = raw
	default:
		src.Content = CleanText(raw)
	}
	src.MainText = mainText(src.Content, format, fetch.PlatformUnknown)
	return src, nil
}

// FromURL fetches a page. Script-rendered pages are re-fetched through the
// headless browser when opts.UseBrowser is set.
func FromURL(ctx context.Context, urlStr string, opts *URLOptions) (*Source, error) {
	if opts == nil {
		opts = &URLOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platform := fetch.DetectPlatform(urlStr)
	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched page", "url", urlStr, "bytes", len(result.Body), "platform", platform)

	format := formatFromContentType(result.ContentType)
	if format == "" {
		format = sniffFormat(result.Body)
	}

	src, err := FromBytes([]byte(result.Body), format)
	if err != nil {
		return nil, err
	}
	src.MainText = mainText(src.Content, format, platform)

	if opts.UseBrowser && format == FormatHTML && (fetch.ShouldUseBrowser(src.MainText) || fetch.IsAppShell(src.Content)) {
		logger.Info("page looks client-rendered, rendering with browser",
			"url", urlStr, "chars", len(src.MainText), "min", fetch.MinContentLength)
		browserOpts := &fetch.BrowserOptions{Logger: logger}
		if opts.Fetch != nil {
			browserOpts.UserAgent = opts.Fetch.UserAgent
		}
		rendered, err := fetch.WithBrowser(ctx, urlStr, browserOpts)
		if err != nil {
			// The HTTP content is still scoreable.
			logger.Warn("browser rendering failed, using HTTP content", "url", urlStr, "error", err)
		} else {
			src.Content = rendered
			src.MainText = mainText(rendered, FormatHTML, platform)
			src.Metadata.Hash = computeHash(rendered)
			src.Metadata.Bytes = len(rendered)
			src.Metadata.Rendered = true
		}
	}

	src.Metadata.URL = urlStr
	src.Metadata.Platform = string(platform)
	src.Metadata.ContentType = result.ContentType
	return src, nil
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Bytes:     len(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func mainText(content string, format Format, platform fetch.Platform) string {
	if format == FormatText {
		return content
	}
	text, err := fetch.ExtractMainText(content,
		fetch.PlatformContentSelectors(platform), fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return ""
	}
	return text
}

func formatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".md", ".markdown", ".mdx":
		return FormatMarkdown
	case ".txt":
		return FormatText
	}
	return ""
}

func formatFromContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	case "text/markdown", "text/x-markdown":
		return FormatMarkdown
	}
	return ""
}

// sniffFormat guesses the markup of content without a declared format.
func sniffFormat(content string) Format {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case strings.HasPrefix(head, "<!doctype html"), strings.HasPrefix(head, "<html"),
		strings.Contains(head, "<body"), strings.Contains(head, "<p>"), strings.Contains(head, "<h1"):
		return FormatHTML
	case looksLikeMarkdown(content):
		return FormatMarkdown
	}
	return FormatText
}
