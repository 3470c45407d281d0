package crawling

import (
	"context"
	"net/url"
	"strings"

	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/prompts"
)

// PageKind is the coarse type of a discovered page.
type PageKind string

// Page kinds, in audit priority order.
const (
	KindArticle PageKind = "article"
	KindDocs    PageKind = "docs"
	KindProduct PageKind = "product"
	KindFAQ     PageKind = "faq"
	KindAbout   PageKind = "about"
	KindOther   PageKind = "other"
)

// kindPriority orders kinds by how much AI answer engines draw on them.
var kindPriority = []PageKind{KindArticle, KindDocs, KindFAQ, KindProduct, KindAbout, KindOther}

func validKind(k PageKind) bool {
	for _, known := range kindPriority {
		if k == known {
			return true
		}
	}
	return false
}

// ClassifiedLink represents a link with its page kind
type ClassifiedLink struct {
	URL  string   `json:"url"`
	Kind PageKind `json:"kind"`
}

var pathHints = []struct {
	kind     PageKind
	segments []string
}{
	{KindFAQ, []string{"faq", "faqs", "questions", "help-center"}},
	{KindDocs, []string{"docs", "documentation", "reference", "api", "help", "support", "kb", "knowledge-base"}},
	{KindArticle, []string{"blog", "blogs", "news", "articles", "article", "guides", "guide", "learn", "posts", "post", "insights", "resources"}},
	{KindProduct, []string{"product", "products", "pricing", "features", "solutions", "shop", "store"}},
	{KindAbout, []string{"about", "about-us", "company", "team", "careers", "contact", "press"}},
}

// ClassifyURL guesses a page kind from the URL path segments.
func ClassifyURL(rawURL string) PageKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return KindOther
	}
	segments := strings.Split(strings.ToLower(strings.Trim(u.Path, "/")), "/")
	for _, hint := range pathHints {
		for _, seg := range segments {
			for _, want := range hint.segments {
				if seg == want {
					return hint.kind
				}
			}
		}
	}
	return KindOther
}

// ClassifyLinks classifies links by URL heuristics. When client is set the LLM
// classifies them instead, and any link it omits or mislabels falls back to the
// heuristic.
func ClassifyLinks(ctx context.Context, links []string, client llm.Client) ([]ClassifiedLink, error) {
	result := make([]ClassifiedLink, 0, len(links))
	for _, link := range links {
		result = append(result, ClassifiedLink{URL: link, Kind: ClassifyURL(link)})
	}
	if client == nil || len(links) == 0 {
		return result, nil
	}

	prompt, err := prompts.Render("crawling.json", "classify-pages", map[string]string{
		"Links": strings.Join(links, "\n"),
	})
	if err != nil {
		return nil, &ClassificationError{Links: len(links), Stage: "prompt", Cause: err}
	}
	text, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &ClassificationError{Links: len(links), Stage: "generate", Cause: err}
	}
	var classified []ClassifiedLink
	if err := llm.DecodeJSON(text, &classified); err != nil {
		return nil, &ClassificationError{Links: len(links), Stage: "decode", Cause: err}
	}

	byURL := make(map[string]PageKind, len(classified))
	for _, cl := range classified {
		kind := PageKind(strings.ToLower(strings.TrimSpace(string(cl.Kind))))
		if validKind(kind) {
			byURL[cl.URL] = kind
		}
	}
	for i := range result {
		if kind, ok := byURL[result[i].URL]; ok {
			result[i].Kind = kind
		}
	}
	return result, nil
}

// selectPages picks up to maxPages links, taking one of each kind in priority
// order before filling the remaining slots in the same order.
func selectPages(classified []ClassifiedLink, maxPages int) []ClassifiedLink {
	byKind := make(map[PageKind][]ClassifiedLink)
	for _, cl := range classified {
		byKind[cl.Kind] = append(byKind[cl.Kind], cl)
	}

	selected := make([]ClassifiedLink, 0, maxPages)
	taken := make(map[string]bool)
	take := func(cl ClassifiedLink) {
		if !taken[cl.URL] && len(selected) < maxPages {
			taken[cl.URL] = true
			selected = append(selected, cl)
		}
	}

	for _, kind := range kindPriority {
		if links := byKind[kind]; len(links) > 0 {
			take(links[0])
		}
	}
	for _, kind := range kindPriority {
		for _, cl := range byKind[kind] {
			take(cl)
		}
	}
	return selected
}
