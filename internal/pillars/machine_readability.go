package pillars

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/geo-scorer/internal/types"
)

// ValuableSchemaTypes earn bonus credit when declared by structured data.
var ValuableSchemaTypes = []string{
	"Article", "FAQPage", "HowTo", "Product", "Organization",
	"Person", "LocalBusiness", "BreadcrumbList", "WebPage", "BlogPosting",
}

const llmsPoints = 6.0

var llmsPageListing = regexp.MustCompile(`(?m)^\s*-\s*\[[^\]]+\]\([^)]+\)`)

// MachineReadability scores structured data, page metadata and llms.txt.
type MachineReadability struct {
	base
	net Network
}

// NewMachineReadability returns the machine readability pillar.
func NewMachineReadability(net Network) *MachineReadability {
	return &MachineReadability{base: base{key: KeyMachineReadability, name: "Machine Readability", maxScore: 15}, net: net}
}

// Score implements Scorer.
func (p *MachineReadability) Score(ctx context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	score := 0.0

	schemaTypes := doc.SchemaTypes()
	if schemaTypes.Any() {
		score += 4
	}
	valuable := make([]string, 0)
	for _, t := range schemaTypes.All() {
		for _, v := range ValuableSchemaTypes {
			if strings.EqualFold(t, v) {
				valuable = append(valuable, v)
			}
		}
	}
	score += ladder(float64(len(valuable)), step{2, 3}, step{1, 2})

	metadata := map[string]bool{
		"title":            doc.Title != "",
		"meta_description": doc.MetaDescription != "",
		"canonical":        doc.Canonical != "",
		"lang":             doc.Lang != "",
	}
	metaScore := 0.0
	missingMetadata := make([]string, 0)
	for _, name := range []string{"title", "meta_description", "canonical", "lang"} {
		if metadata[name] {
			metaScore += 0.5
		} else {
			missingMetadata = append(missingMetadata, name)
		}
	}
	score += min(metaScore, 2)

	llms := types.Evidence{}
	quality := p.scoreLLMSTxt(ctx, pc.url(), llms)
	llmsScore := float64(quality) / 100 * llmsPoints
	llms["quality"] = quality
	llms["score"] = types.RoundTo(llmsScore, 2)
	score += llmsScore

	return finalize(score, p.maxScore, types.Evidence{
		"has_structured_data": schemaTypes.Any(),
		"schema_types":        schemaTypes.All(),
		"json_ld_types":       schemaTypes.JSONLD,
		"microdata_types":     schemaTypes.Microdata,
		"rdfa_types":          schemaTypes.RDFa,
		"malformed_json_ld":   doc.MalformedJSONLD,
		"valuable_types":      valuable,
		"metadata":            metadata,
		"metadata_score":      min(metaScore, 2),
		"missing_metadata":    missingMetadata,
		"llms_txt":            llms,
	})
}

// scoreLLMSTxt fetches the sibling llms.txt and returns its 0-100 quality.
func (p *MachineReadability) scoreLLMSTxt(ctx context.Context, pageURL string, ev types.Evidence) int {
	ev["found"] = false
	if pageURL == "" {
		ev["reason"] = "no URL provided"
		return 0
	}
	llmsURL, err := SiblingURL(pageURL, "/llms.txt")
	if err != nil {
		ev["error"] = err.Error()
		return 0
	}
	ev["url"] = llmsURL

	res, err := p.net.fetch(ctx, string(p.key), llmsURL)
	if err != nil {
		ev["error"] = err.Error()
		return 0
	}
	ev["status_code"] = res.StatusCode
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		ev["reason"] = "llms.txt not found"
		return 0
	}
	if looksLikeHTML(res.Body) {
		ev["looks_like_html"] = true
		return 0
	}
	ev["found"] = true

	checks := LLMSTxtChecks(res.Body)
	missing := make([]string, 0)
	for _, name := range llmsCheckOrder {
		if !checks[name] {
			missing = append(missing, name)
		}
	}
	ev["checks"] = checks
	ev["missing_checks"] = missing
	return LLMSTxtQuality(checks)
}

// LLMSTxtChecks evaluates the structural checks of an llms.txt body.
func LLMSTxtChecks(body string) map[string]bool {
	checks := map[string]bool{
		"title":        false,
		"description":  false,
		"sections":     false,
		"page_listing": llmsPageListing.MatchString(body),
		"min_length":   utf8.RuneCountInString(strings.TrimSpace(body)) >= 200,
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "# "):
			checks["title"] = true
		case strings.HasPrefix(line, "## "):
			checks["sections"] = true
		case strings.HasPrefix(line, "> "):
			checks["description"] = true
		}
	}
	return checks
}

var llmsCheckOrder = []string{"title", "description", "sections", "page_listing", "min_length"}

var llmsCheckWeights = map[string]int{
	"title":        20,
	"description":  20,
	"sections":     20,
	"page_listing": 25,
	"min_length":   15,
}

// LLMSTxtQuality sums the weights of the passing checks (0-100).
func LLMSTxtQuality(checks map[string]bool) int {
	quality := 0
	for name, weight := range llmsCheckWeights {
		if checks[name] {
			quality += weight
		}
	}
	return quality
}

func looksLikeHTML(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}
