package pillars

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/geo-scorer/internal/types"
	"golang.org/x/net/publicsuffix"
)

// AuthoritativeDomains are registrable domains treated as authoritative sources in
// addition to the .gov, .edu, .mil and .int suffixes.
var AuthoritativeDomains = []string{
	"wikipedia.org", "who.int", "nih.gov", "nature.com", "science.org",
	"sciencedirect.com", "springer.com", "arxiv.org", "ieee.org", "acm.org",
	"jstor.org", "reuters.com", "apnews.com", "bbc.co.uk", "nytimes.com",
	"w3.org", "ietf.org", "iso.org", "schema.org", "mozilla.org",
	"oecd.org", "worldbank.org", "statista.com", "pewresearch.org",
}

var (
	citationMarker = regexp.MustCompile(`\[\d{1,3}\]|\([A-Z][A-Za-z'-]+(?: et al\.?| and [A-Z][A-Za-z'-]+)?,? \d{4}\)|(?i)\baccording to\b|(?i)\bsource:`)
	statistic      = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?%|\b\d+(?:\.\d+)?\s+percent\b|\b\d{1,3}(?:,\d{3})+\b`)
	credentials    = regexp.MustCompile(`\b(Ph\.?D|M\.D\.|MBA|CPA|Professor|Dr\.)|(?i)\b\d+\+?\s+years of experience\b|(?i)\bcertified\b`)
)

// Authority scores outbound citations, statistics and author signals.
type Authority struct{ base }

// NewAuthority returns the citations and authority pillar.
func NewAuthority() *Authority {
	return &Authority{base{key: KeyAuthority, name: "Citations & Authority", maxScore: 10}}
}

// Score implements Scorer.
func (p *Authority) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)

	var pageURL *url.URL
	pageDomain := ""
	if raw := pc.url(); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			pageURL = u
			pageDomain = registrableDomain(u.Hostname())
		}
	}

	external := make([]string, 0)
	authoritative := make([]string, 0)
	seen := make(map[string]bool)
	for _, link := range doc.Links {
		target, err := url.Parse(link.Href)
		if err != nil {
			continue
		}
		if pageURL != nil {
			target = pageURL.ResolveReference(target)
		}
		if target.Scheme != "http" && target.Scheme != "https" {
			continue
		}
		host := strings.ToLower(target.Hostname())
		domain := registrableDomain(host)
		if host == "" || (pageDomain != "" && domain == pageDomain) || seen[host] {
			continue
		}
		seen[host] = true
		external = append(external, host)
		if IsAuthoritative(host) {
			authoritative = append(authoritative, host)
		}
	}

	score := 0.0
	switch {
	case len(authoritative) >= 3:
		score += 3
	case len(authoritative) >= 1:
		score += 2
	case len(external) > 0:
		score++
	}

	citations := len(citationMarker.FindAllStringIndex(doc.Text, -1)) + doc.Cites + doc.Blockquotes
	score += ladder(float64(citations), step{3, 2}, step{1, 1})

	stats := len(statistic.FindAllStringIndex(doc.Text, -1))
	score += ladder(float64(stats), step{3, 2}, step{1, 1})

	hasAuthor := len(doc.AuthorHints) > 0 || len(doc.JSONLDField("author")) > 0
	if hasAuthor {
		score += 2
	}
	hasCredentials := credentials.MatchString(doc.Text)
	if hasCredentials {
		score++
	}

	return finalize(score, p.maxScore, types.Evidence{
		"external_link_count":      len(external),
		"external_domains":         external,
		"authoritative_link_count": len(authoritative),
		"authoritative_domains":    authoritative,
		"citation_count":           citations,
		"statistic_count":          stats,
		"has_author":               hasAuthor,
		"has_credentials":          hasCredentials,
	})
}

// IsAuthoritative reports whether host belongs to a government, academic,
// military or intergovernmental domain, or to an allowlisted source.
func IsAuthoritative(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, label := range strings.Split(host, ".")[1:] {
		switch label {
		case "gov", "edu", "mil":
			return true
		}
	}
	if strings.HasSuffix(host, ".int") {
		return true
	}
	domain := registrableDomain(host)
	for _, d := range AuthoritativeDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// registrableDomain returns the eTLD+1 of host, or host itself when it has none.
func registrableDomain(host string) string {
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return strings.ToLower(host)
	}
	return domain
}
