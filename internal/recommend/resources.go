package recommend

import (
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

var (
	helpfulContent = types.Resource{
		Title: "Creating helpful, reliable, people-first content",
		URL:   "https://developers.google.com/search/docs/fundamentals/creating-helpful-content",
	}
	invertedPyramid = types.Resource{
		Title: "Inverted pyramid: writing for comprehension",
		URL:   "https://www.nngroup.com/articles/inverted-pyramid/",
	}
	structuredDataIntro = types.Resource{
		Title: "Introduction to structured data markup",
		URL:   "https://developers.google.com/search/docs/appearance/structured-data/intro-structured-data",
	}
)

var resources = map[types.PillarKey][]types.Resource{
	pillars.KeyStructure: {
		{Title: "Page structure: headings", URL: "https://www.w3.org/WAI/tutorials/page-structure/headings/"},
		{Title: "HTML lists", URL: "https://developer.mozilla.org/en-US/docs/Web/HTML/Element/ul"},
	},
	pillars.KeyReadability: {
		{Title: "Flesch-Kincaid readability tests", URL: "https://en.wikipedia.org/wiki/Flesch%E2%80%93Kincaid_readability_tests"},
		{Title: "Federal plain language guidelines", URL: "https://www.plainlanguage.gov/guidelines/"},
	},
	pillars.KeyConfidence: {
		invertedPyramid,
		{Title: "How users read on the web", URL: "https://www.nngroup.com/articles/how-users-read-on-the-web/"},
	},
	pillars.KeyMachineReadability: {
		structuredDataIntro,
		{Title: "The /llms.txt file", URL: "https://llmstxt.org/"},
	},
	pillars.KeyBotAccess: {
		{Title: "RFC 9309: Robots Exclusion Protocol", URL: "https://www.rfc-editor.org/rfc/rfc9309"},
		{Title: "Overview of OpenAI crawlers", URL: "https://platform.openai.com/docs/bots"},
	},
	pillars.KeyDefinitions: {
		{Title: "The Definition element", URL: "https://developer.mozilla.org/en-US/docs/Web/HTML/Element/dfn"},
		invertedPyramid,
	},
	pillars.KeyFreshness: {
		{Title: "Article structured data", URL: "https://developers.google.com/search/docs/appearance/structured-data/article"},
	},
	pillars.KeyAuthority: {
		helpfulContent,
	},
	pillars.KeyEntity: {
		{Title: "Organization structured data", URL: "https://developers.google.com/search/docs/appearance/structured-data/organization"},
		{Title: "schema.org sameAs", URL: "https://schema.org/sameAs"},
	},
	pillars.KeyFAQ: {
		{Title: "schema.org FAQPage", URL: "https://schema.org/FAQPage"},
		structuredDataIntro,
	},
	pillars.KeyChunkability: {
		invertedPyramid,
	},
	pillars.KeyDepth: {
		helpfulContent,
	},
	pillars.KeyUniqueness: {
		helpfulContent,
	},
}

// Resources returns a copy of the reference links for a pillar.
func Resources(key types.PillarKey) []types.Resource {
	return append(make([]types.Resource, 0, len(resources[key])), resources[key]...)
}
