package recommend

import (
	"fmt"
	"strings"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

// rule inspects a pillar's evidence and returns literal action strings.
type rule func(ev types.Evidence) []string

var rules = map[types.PillarKey]rule{
	pillars.KeyStructure:          structureRule,
	pillars.KeyReadability:        readabilityRule,
	pillars.KeyConfidence:         confidenceRule,
	pillars.KeyMachineReadability: machineReadabilityRule,
	pillars.KeyBotAccess:          botAccessRule,
	pillars.KeyDefinitions:        definitionsRule,
	pillars.KeyFreshness:          freshnessRule,
	pillars.KeyAuthority:          authorityRule,
	pillars.KeyEntity:             entityRule,
	pillars.KeyFAQ:                faqRule,
	pillars.KeyChunkability:       chunkabilityRule,
	pillars.KeyDepth:              depthRule,
	pillars.KeyUniqueness:         uniquenessRule,
}

var fallbacks = map[types.PillarKey]string{
	pillars.KeyStructure:          "Organize the content under a clear heading hierarchy with lists and tables",
	pillars.KeyReadability:        "Simplify sentences and paragraphs so the text reads at a grade 6-10 level",
	pillars.KeyConfidence:         "State answers directly and back them with specific facts",
	pillars.KeyMachineReadability: "Add structured data and complete page metadata",
	pillars.KeyBotAccess:          "Allow AI crawlers to access the page",
	pillars.KeyDefinitions:        "Define the main topic clearly at the start of the page",
	pillars.KeyFreshness:          "Keep the content current and show when it was last updated",
	pillars.KeyAuthority:          "Cite authoritative sources and identify the author",
	pillars.KeyEntity:             "Name the main entity consistently across title, headings and schema",
	pillars.KeyFAQ:                "Add a question-and-answer section covering common questions",
	pillars.KeyChunkability:       "Break the content into self-contained sections of 100-400 words",
	pillars.KeyDepth:              "Expand coverage of the topic with more subtopics, examples and data",
	pillars.KeyUniqueness:         "Add original insight that distinguishes this page from similar content",
}

func structureRule(ev types.Evidence) []string {
	var actions []string
	switch h1 := ev.Int("h1_count"); {
	case h1 == 0:
		actions = append(actions, "Add a single H1 heading that names the page topic")
	case h1 > 1:
		actions = append(actions, fmt.Sprintf("Ensure exactly one H1 heading (found %d)", h1))
	}
	for _, v := range ev.Strings("violations") {
		actions = append(actions, "Fix the heading order: "+v)
	}
	if ev.Int("subheading_count") < 2 {
		actions = append(actions, "Break the content into sections with descriptive H2 and H3 subheadings")
	}
	if ev.Int("list_count") == 0 {
		actions = append(actions, "Use bulleted or numbered lists for steps, features and key points")
	}
	if ev.Int("table_count") == 0 {
		actions = append(actions, "Present comparisons or specifications in an HTML table")
	}
	return actions
}

func readabilityRule(ev types.Evidence) []string {
	if ev.Has("reason") {
		return []string{"Add substantive text content for the page to be evaluated"}
	}
	var actions []string
	if ease := ev.Float("flesch_reading_ease"); ease < 60 {
		actions = append(actions, fmt.Sprintf("Simplify wording: reading ease is %.1f, aim for 60-80", ease))
	}
	if grade := ev.Float("flesch_kincaid_grade"); grade > 12 {
		actions = append(actions, fmt.Sprintf("Lower the reading grade level from %.1f to between 6 and 10", grade))
	}
	if avg := ev.Float("avg_sentence_length"); avg > 20 {
		actions = append(actions, fmt.Sprintf("Shorten sentences to about 20 words on average (currently %.1f)", avg))
	}
	if ev.Int("long_paragraph_count") > 0 || ev.Float("avg_paragraph_length") > 120 {
		actions = append(actions, "Split paragraphs longer than 150 words into smaller ones")
	}
	if ev.Float("complex_word_ratio") > 0.15 {
		actions = append(actions, "Replace words of three or more syllables with simpler alternatives")
	}
	return actions
}

func confidenceRule(ev types.Evidence) []string {
	if ev.Has("reason") {
		return nil
	}
	var actions []string
	if !ev.Bool("starts_with_answer") {
		actions = append(actions, "Open with a direct answer to the page's main question")
	}
	if ev.Float("declarative_ratio") < 0.5 {
		actions = append(actions, "Rewrite questions and vague statements as direct declarative sentences")
	}
	if ev.Float("hedge_density") > 1.0 {
		hedges := ev.Strings("hedges_found")
		if len(hedges) > 5 {
			hedges = hedges[:5]
		}
		actions = append(actions, "Remove hedging language such as: "+strings.Join(hedges, ", "))
	}
	if ev.Int("quotable_count") < 3 {
		actions = append(actions, "Add short factual sentences of 8-30 words that AI systems can quote")
	}
	if ev.Int("confidence_count") < 3 {
		actions = append(actions, `Back claims with confident, evidence-based phrasing such as "research shows"`)
	}
	if ev.Int("direct_elements") == 0 {
		actions = append(actions, "Surface key answers with lists, tables or bold text")
	}
	return actions
}

func machineReadabilityRule(ev types.Evidence) []string {
	var actions []string
	if !ev.Bool("has_structured_data") {
		actions = append(actions, "Add JSON-LD structured data (schema.org) describing the page")
	}
	if len(ev.Strings("valuable_types")) == 0 {
		actions = append(actions, "Use high-value schema types such as Article, FAQPage, HowTo or Organization")
	}
	if missing := ev.Strings("missing_metadata"); len(missing) > 0 {
		actions = append(actions, "Add missing page metadata: "+strings.Join(missing, ", "))
	}
	llms := ev.Map("llms_txt")
	switch {
	case llms.Has("reason") && llms.String("reason") == "no URL provided":
		actions = append(actions, "Provide the page URL so llms.txt can be checked")
	case llms.Has("error"):
		actions = append(actions, "Make llms.txt reachable: "+llms.String("error"))
	case !llms.Bool("found"):
		actions = append(actions, "Publish an llms.txt file at the site root listing your key pages")
	default:
		if missing := llms.Strings("missing_checks"); len(missing) > 0 {
			actions = append(actions, "Improve llms.txt by adding: "+strings.Join(missing, ", "))
		}
	}
	return actions
}

func botAccessRule(ev types.Evidence) []string {
	var actions []string
	if blocked := ev.Strings("blocked_bots"); len(blocked) > 0 {
		actions = append(actions, "Allow AI crawlers in robots.txt: "+strings.Join(blocked, ", "))
	}
	if ev.String("reason") == "no URL provided" {
		actions = append(actions, "Provide the page URL so robots.txt can be checked")
	} else if e := ev.String("error"); e != "" {
		actions = append(actions, "Make robots.txt reachable: "+e)
	}
	if ev.Float("meta_robots_score") < 2 {
		actions = append(actions, "Remove noindex, noai and nosnippet directives from the robots meta tag")
	}
	return actions
}

func definitionsRule(ev types.Evidence) []string {
	var actions []string
	if !ev.Bool("first_paragraph_definition") {
		actions = append(actions, `Add a clear definition in the first paragraph (for example "X is a ...")`)
	}
	if ev.Int("definition_sentence_count") < 3 {
		actions = append(actions, `Define key terms explicitly using "is", "refers to" or "means"`)
	}
	if n := ev.Int("first_paragraph_word_count"); n < 20 || n > 80 {
		actions = append(actions, "Keep the opening paragraph between 20 and 80 words")
	}
	if ev.Int("term_markup_count") == 0 {
		actions = append(actions, "Mark up key terms with <dfn>, <abbr> or a definition list")
	}
	return actions
}

func freshnessRule(ev types.Evidence) []string {
	var actions []string
	switch age := ev.Int("age_days"); {
	case age < 0:
		actions = append(actions, "Add a visible date to the content")
	case age > 365:
		actions = append(actions, fmt.Sprintf("Update the content: the most recent date is %d days old", age))
	}
	if !ev.Bool("has_published_date") {
		actions = append(actions, "Add a machine-readable publication date (time element or datePublished)")
	}
	if !ev.Bool("has_modified_date") {
		actions = append(actions, "Expose the modification date via article:modified_time or dateModified")
	}
	if !ev.Bool("has_last_updated") {
		actions = append(actions, `Show a "Last updated" line near the top of the page`)
	}
	return actions
}

func authorityRule(ev types.Evidence) []string {
	var actions []string
	if ev.Int("authoritative_link_count") == 0 {
		actions = append(actions, "Cite authoritative sources such as .gov, .edu or recognised publications")
	}
	if ev.Int("citation_count") < 3 {
		actions = append(actions, `Attribute facts with citations such as "according to" or numbered references`)
	}
	if ev.Int("statistic_count") < 3 {
		actions = append(actions, "Include specific statistics and figures")
	}
	if !ev.Bool("has_author") {
		actions = append(actions, "Identify the author with a byline, rel=author link or author schema")
	}
	if !ev.Bool("has_credentials") {
		actions = append(actions, "State the author's credentials or relevant experience")
	}
	return actions
}

func entityRule(ev types.Evidence) []string {
	if ev.Has("reason") {
		return []string{"Name the main entity clearly in the page title and H1"}
	}
	entity := ev.String("entity")
	var actions []string
	if !ev.Bool("in_title") {
		actions = append(actions, fmt.Sprintf("Include %q in the page title", entity))
	}
	if !ev.Bool("in_h1") {
		actions = append(actions, fmt.Sprintf("Include %q in the H1 heading", entity))
	}
	if !ev.Bool("in_first_paragraph") {
		actions = append(actions, fmt.Sprintf("Mention %q in the first paragraph", entity))
	}
	if ev.Int("mention_count") < 3 {
		actions = append(actions, fmt.Sprintf("Refer to %q by name consistently throughout the page", entity))
	}
	if !ev.Bool("schema_name_match") || !ev.Bool("has_entity_schema") {
		actions = append(actions, "Add Organization, Person or Product JSON-LD whose name matches the entity")
	}
	if ev.Int("same_as_count") < 3 {
		actions = append(actions, "Link official profiles with schema.org sameAs")
	}
	return actions
}

func faqRule(ev types.Evidence) []string {
	var actions []string
	if ev.Int("question_heading_count") < 3 {
		actions = append(actions, "Phrase section headings as the questions your audience asks")
	}
	if ev.Int("question_heading_count") > 0 && ev.Float("answered_ratio") < 0.8 {
		actions = append(actions, "Answer every question heading with at least a few sentences")
	}
	if ev.Int("concise_answer_count") < 3 {
		actions = append(actions, "Start each answer with a one-sentence summary under 40 words")
	}
	if !ev.Bool("has_faq_schema") {
		actions = append(actions, "Add FAQPage structured data for the question section")
	}
	return actions
}

func chunkabilityRule(ev types.Evidence) []string {
	var actions []string
	if avg := ev.Float("avg_section_words"); avg < 100 || avg > 400 {
		actions = append(actions, fmt.Sprintf("Aim for 100-400 words per section (currently %.0f)", avg))
	}
	if ev.Float("self_contained_ratio") < 0.75 {
		actions = append(actions, `Avoid opening paragraphs with "this", "it" or "however"; restate the subject`)
	}
	if ev.Float("generic_heading_ratio") > 0.5 || ev.Float("avg_heading_words") < 3 {
		actions = append(actions, "Use descriptive headings of 3-10 words instead of generic labels")
	}
	if ev.Int("longest_paragraph_words") > 200 {
		actions = append(actions, "Split paragraphs longer than 200 words")
	}
	return actions
}

func depthRule(ev types.Evidence) []string {
	var actions []string
	if n := ev.Int("word_count"); n < 800 {
		actions = append(actions, fmt.Sprintf("Expand coverage: the page has %d words, aim for 1,200 or more", n))
	}
	if ev.Int("h2_count") < 4 {
		actions = append(actions, "Cover more subtopics with dedicated H2 sections")
	}
	if ev.Float("lexical_diversity") < 0.4 {
		actions = append(actions, "Vary vocabulary and cover related concepts")
	}
	if ev.Int("example_count") < 2 {
		actions = append(actions, "Add concrete examples, case studies or code samples")
	}
	if ev.Int("numeric_count") < 4 {
		actions = append(actions, "Include specific numbers, measurements and data points")
	}
	return actions
}

func uniquenessRule(ev types.Evidence) []string {
	if ev.Has("reason") {
		return []string{"Benchmark this page against your content corpus to measure uniqueness"}
	}
	var actions []string
	if sim := ev.Float("max_similarity"); sim > 0.88 {
		actions = append(actions, fmt.Sprintf("Differentiate from the most similar page in your corpus (similarity %.2f)", sim))
	}
	if ev.Float("mean_similarity") > 0.75 {
		actions = append(actions, "Add original data, insights or perspectives not covered elsewhere in your corpus")
	}
	return actions
}
