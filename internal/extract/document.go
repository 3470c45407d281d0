// Package extract turns raw HTML or plain text into a Document holding the structural
// and lexical signals the pillar scorers consume. Parsing is pure and a Document is
// never modified after Parse returns, so one Document can be shared by every pillar
// of a scoring pass.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Heading is an h1..h6 element (or a markdown "#" line in plain text).
type Heading struct {
	Level int
	Text  string
}

// Section is the prose that follows a heading up to the next heading. Content
// before the first heading forms a section with Level 0.
type Section struct {
	Heading string
	Level   int
	Body    string
}

// Image is an img element. HasAlt distinguishes alt="" from a missing attribute.
type Image struct {
	Src    string
	Alt    string
	HasAlt bool
}

// Link is an anchor with an href.
type Link struct {
	Href string
	Text string
	Rel  string
}

// Document is the parsed form of a piece of content.
type Document struct {
	Raw    string
	IsHTML bool

	// Text is every visible line; Blocks are the prose-bearing leaf blocks
	// (paragraphs, list items, cells, quotes) that lexical pillars read.
	Text   string
	Blocks []string

	Title           string
	MetaDescription string
	Lang            string
	Canonical       string
	Meta            map[string]string

	Headings   []Heading
	Paragraphs []string
	Sections   []Section

	OrderedLists   int
	UnorderedLists int
	ListItems      int
	Tables         int
	BoldCount      int

	Images []Image
	Links  []Link
	Times  []string

	JSONLD          []string
	StructuredData  []map[string]any
	MalformedJSONLD int
	ItemTypes       []string
	RDFaTypes       []string

	SemanticTags       map[string]int
	DetailsCount       int
	DefinitionElements int
	DefinitionLists    int
	CodeBlocks         int
	Blockquotes        int
	Cites              int
	AuthorHints        []string

	Sentences []string
	Words     []string
}

var htmlTag = regexp.MustCompile(`<[a-zA-Z!/]`)

// Parse builds a Document from HTML or plain text.
func Parse(content string) *Document {
	if htmlTag.MatchString(content) {
		if d, err := parseHTML(content); err == nil {
			return d
		}
	}
	return parseText(content)
}

func newDocument(raw string, isHTML bool) *Document {
	return &Document{
		Raw:          raw,
		IsHTML:       isHTML,
		Meta:         make(map[string]string),
		SemanticTags: make(map[string]int),
		Headings:     make([]Heading, 0),
		Paragraphs:   make([]string, 0),
		Blocks:       make([]string, 0),
		Sections:     make([]Section, 0),
		Images:       make([]Image, 0),
		Links:        make([]Link, 0),
		Times:        make([]string, 0),
		JSONLD:       make([]string, 0),
		ItemTypes:    make([]string, 0),
		RDFaTypes:    make([]string, 0),
		AuthorHints:  make([]string, 0),
	}
}

// HeadingCount returns the number of headings at level.
func (d *Document) HeadingCount(level int) int {
	n := 0
	for _, h := range d.Headings {
		if h.Level == level {
			n++
		}
	}
	return n
}

// FirstHeading returns the text of the first heading at level, or "".
func (d *Document) FirstHeading(level int) string {
	for _, h := range d.Headings {
		if h.Level == level {
			return h.Text
		}
	}
	return ""
}

// Prose joins the prose blocks with newlines.
func (d *Document) Prose() string {
	return strings.Join(d.Blocks, "\n")
}

// WordCount is the number of words in the prose blocks.
func (d *Document) WordCount() int {
	return len(d.Words)
}

const (
	noiseSelector   = "script, style, noscript, template, svg"
	headingSelector = "h1, h2, h3, h4, h5, h6"
	blockSelector   = "p, li, td, th, blockquote, dd, figcaption, pre"
)

var semanticTagNames = []string{
	"article", "main", "section", "nav", "aside", "header", "footer",
	"figure", "figcaption", "time", "address", "mark",
}

func parseHTML(raw string) (*Document, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	d := newDocument(raw, true)

	d.Title = Normalize(root.Find("title").First().Text())
	d.Lang = strings.TrimSpace(root.Find("html").AttrOr("lang", ""))

	root.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr("name", "")
		if key == "" {
			key = s.AttrOr("property", "")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if _, ok := d.Meta[key]; !ok {
			d.Meta[key] = strings.TrimSpace(s.AttrOr("content", ""))
		}
	})
	d.MetaDescription = d.Meta["description"]
	if author := d.Meta["author"]; author != "" {
		d.AuthorHints = append(d.AuthorHints, "meta:"+author)
	}

	root.Find("link[rel]").Each(func(_ int, s *goquery.Selection) {
		rels := strings.Fields(strings.ToLower(s.AttrOr("rel", "")))
		for _, rel := range rels {
			switch rel {
			case "canonical":
				if d.Canonical == "" {
					d.Canonical = strings.TrimSpace(s.AttrOr("href", ""))
				}
			case "author":
				d.AuthorHints = append(d.AuthorHints, "rel:"+s.AttrOr("href", ""))
			}
		}
	})

	root.Find("script").Each(func(_ int, s *goquery.Selection) {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "application/ld+json") {
			d.JSONLD = append(d.JSONLD, strings.TrimSpace(s.Text()))
		}
	})
	d.StructuredData, d.MalformedJSONLD = decodeJSONLD(d.JSONLD)

	root.Find("[itemtype]").Each(func(_ int, s *goquery.Selection) {
		for _, t := range strings.Fields(s.AttrOr("itemtype", "")) {
			if name := lastSegment(t); name != "" {
				d.ItemTypes = append(d.ItemTypes, name)
			}
		}
	})
	root.Find("[typeof]").Each(func(_ int, s *goquery.Selection) {
		for _, t := range strings.Fields(s.AttrOr("typeof", "")) {
			if name := lastSegment(t); name != "" {
				d.RDFaTypes = append(d.RDFaTypes, name)
			}
		}
	})

	root.Find(noiseSelector).Remove()

	root.Find(headingSelector).Each(func(_ int, s *goquery.Selection) {
		d.Headings = append(d.Headings, Heading{
			Level: int(goquery.NodeName(s)[1] - '0'),
			Text:  Normalize(s.Text()),
		})
	})
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := Normalize(s.Text()); t != "" {
			d.Paragraphs = append(d.Paragraphs, t)
		}
	})

	d.OrderedLists = root.Find("ol").Length()
	d.UnorderedLists = root.Find("ul").Length()
	d.ListItems = root.Find("li").Length()
	d.Tables = root.Find("table").Length()
	d.BoldCount = root.Find("strong, b").Length()
	d.DetailsCount = root.Find("details").Length()
	d.DefinitionElements = root.Find("dfn, abbr[title], dt").Length()
	d.DefinitionLists = root.Find("dl").Length()
	d.CodeBlocks = root.Find("pre").Length()
	d.Blockquotes = root.Find("blockquote").Length()
	d.Cites = root.Find("cite").Length()
	for _, tag := range semanticTagNames {
		if n := root.Find(tag).Length(); n > 0 {
			d.SemanticTags[tag] = n
		}
	}

	root.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt, hasAlt := s.Attr("alt")
		d.Images = append(d.Images, Image{Src: s.AttrOr("src", ""), Alt: strings.TrimSpace(alt), HasAlt: hasAlt})
	})
	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		link := Link{
			Href: strings.TrimSpace(s.AttrOr("href", "")),
			Text: Normalize(s.Text()),
			Rel:  strings.ToLower(s.AttrOr("rel", "")),
		}
		d.Links = append(d.Links, link)
		if strings.Contains(link.Rel, "author") {
			d.AuthorHints = append(d.AuthorHints, "rel:"+link.Href)
		}
	})
	root.Find("time[datetime]").Each(func(_ int, s *goquery.Selection) {
		d.Times = append(d.Times, strings.TrimSpace(s.AttrOr("datetime", "")))
	})
	root.Find(`[itemprop="author"], .author, .byline, [class*="author-name"], [rel="author"]`).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "a" && strings.Contains(strings.ToLower(s.AttrOr("rel", "")), "author") {
			return
		}
		if t := Normalize(s.Text()); t != "" {
			d.AuthorHints = append(d.AuthorHints, "byline:"+t)
		}
	})

	body := root.Find("body")
	if body.Length() == 0 {
		body = root.Selection
	}
	d.Text = renderText(body.Nodes)

	sections := newSectionBuilder()
	root.Find(headingSelector + ", " + blockSelector).Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
			sections.heading(Heading{Level: int(name[1] - '0'), Text: Normalize(s.Text())})
			return
		}
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if t := Normalize(s.Text()); t != "" {
			d.Blocks = append(d.Blocks, t)
			sections.body(t)
		}
	})
	d.Sections = sections.done()

	if len(d.Blocks) == 0 {
		headingText := make(map[string]bool, len(d.Headings))
		for _, h := range d.Headings {
			headingText[h.Text] = true
		}
		for _, line := range strings.Split(d.Text, "\n") {
			if line != "" && !headingText[line] {
				d.Blocks = append(d.Blocks, line)
			}
		}
	}

	d.finish()
	return d, nil
}

var (
	blankLine      = regexp.MustCompile(`\n[ \t]*\n`)
	mdHeading      = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	mdBullet       = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	mdOrdered      = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
	mdTableRow     = regexp.MustCompile(`^\|.*\|$`)
	mdBold         = regexp.MustCompile(`\*\*[^*\n]+\*\*|__[^_\n]+__`)
	mdDefinitionDt = regexp.MustCompile(`(?m)^[^:\n]{1,60}\n:\s`)
)

func parseText(raw string) *Document {
	d := newDocument(raw, false)
	text := strings.ReplaceAll(norm.NFKC.String(raw), "\r\n", "\n")
	sections := newSectionBuilder()

	fences := strings.Count(text, "```")
	d.CodeBlocks = fences / 2
	d.BoldCount = len(mdBold.FindAllStringIndex(text, -1))
	d.DefinitionLists = len(mdDefinitionDt.FindAllStringIndex(text, -1))

	for _, block := range blankLine.Split(text, -1) {
		var para []string
		listKind := ""
		inTable, inQuote := false, false
		flush := func() {
			if len(para) == 0 {
				return
			}
			p := Normalize(strings.Join(para, " "))
			para = nil
			if p == "" {
				return
			}
			d.Paragraphs = append(d.Paragraphs, p)
			d.Blocks = append(d.Blocks, p)
			sections.body(p)
		}

		for _, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if m := mdHeading.FindStringSubmatch(trimmed); m != nil {
				flush()
				h := Heading{Level: len(m[1]), Text: Normalize(m[2])}
				d.Headings = append(d.Headings, h)
				sections.heading(h)
				listKind = ""
				continue
			}
			if m := mdBullet.FindStringSubmatch(trimmed); m != nil {
				flush()
				if listKind != "ul" {
					d.UnorderedLists++
					listKind = "ul"
				}
				d.addListItem(m[1], sections)
				continue
			}
			if m := mdOrdered.FindStringSubmatch(trimmed); m != nil {
				flush()
				if listKind != "ol" {
					d.OrderedLists++
					listKind = "ol"
				}
				d.addListItem(m[1], sections)
				continue
			}
			listKind = ""
			if mdTableRow.MatchString(trimmed) {
				if !inTable {
					d.Tables++
					inTable = true
				}
				continue
			}
			inTable = false
			if strings.HasPrefix(trimmed, ">") {
				if !inQuote {
					d.Blockquotes++
					inQuote = true
				}
				trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, ">"))
			} else {
				inQuote = false
			}
			para = append(para, trimmed)
		}
		flush()
	}

	d.Sections = sections.done()
	d.Text = CleanWhitespace(text)
	d.finish()
	return d
}

func (d *Document) addListItem(item string, sections *sectionBuilder) {
	d.ListItems++
	if t := Normalize(item); t != "" {
		d.Blocks = append(d.Blocks, t)
		sections.body(t)
	}
}

// finish derives the lexical fields from the prose blocks.
func (d *Document) finish() {
	d.Sentences = make([]string, 0)
	for _, b := range d.Blocks {
		d.Sentences = append(d.Sentences, SplitSentences(b)...)
	}
	d.Words = Words(d.Prose())
}

type sectionBuilder struct {
	sections []Section
	current  *Section
	lines    []string
}

func newSectionBuilder() *sectionBuilder {
	return &sectionBuilder{sections: make([]Section, 0)}
}

func (b *sectionBuilder) heading(h Heading) {
	b.close()
	b.current = &Section{Heading: h.Text, Level: h.Level}
}

func (b *sectionBuilder) body(text string) {
	if b.current == nil {
		b.current = &Section{}
	}
	b.lines = append(b.lines, text)
}

func (b *sectionBuilder) close() {
	if b.current != nil {
		b.current.Body = strings.Join(b.lines, "\n")
		b.sections = append(b.sections, *b.current)
	}
	b.current = nil
	b.lines = nil
}

func (b *sectionBuilder) done() []Section {
	b.close()
	return b.sections
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"details": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"summary": true, "table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// renderText flattens nodes into lines, breaking at block elements.
func renderText(nodes []*html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "br" {
				sb.WriteByte('\n')
				return
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteByte('\n')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return CleanWhitespace(sb.String())
}

// lastSegment returns the type name of a schema IRI or CURIE
// ("https://schema.org/Article" and "schema:Article" both give "Article").
func lastSegment(iri string) string {
	iri = strings.TrimRight(strings.TrimSpace(iri), "/")
	if i := strings.LastIndexAny(iri, "/:#"); i >= 0 {
		iri = iri[i+1:]
	}
	return iri
}
