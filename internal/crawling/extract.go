package crawling

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedExtensions are links that never lead to a scorable page.
var skippedExtensions = map[string]bool{
	".pdf": true, ".zip": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".svg": true, ".webp": true, ".mp4": true, ".mp3": true,
	".css": true, ".js": true, ".xml": true, ".json": true, ".ico": true,
}

// ExtractLinks returns the distinct same-host page links in htmlContent,
// resolved against baseURL, in document order. Fragments and trailing slashes
// are dropped; asset links and non-http schemes are skipped.
func ExtractLinks(htmlContent string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{Base: baseURL, Reason: "invalid base URL", Cause: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{Base: baseURL, Reason: "base URL needs a scheme and host"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{Base: baseURL, Reason: "unparseable HTML", Cause: err}
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}

		abs := base.ResolveReference(linkURL)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(abs.Host, base.Host) {
			return
		}
		if skippedExtensions[strings.ToLower(path.Ext(abs.Path))] {
			return
		}

		abs.Fragment = ""
		normalized := strings.TrimSuffix(abs.String(), "/")
		if !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	})
	return links, nil
}
