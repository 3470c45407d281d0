package pillars

import (
	"context"
	"strings"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/types"
)

var entitySchemaTypes = []string{"Organization", "Person", "Product", "LocalBusiness"}

// Entity scores how consistently the page names and describes its main entity.
type Entity struct{ base }

// NewEntity returns the entity clarity pillar.
func NewEntity() *Entity {
	return &Entity{base{key: KeyEntity, name: "Entity Clarity", maxScore: 20}}
}

// Score implements Scorer.
func (p *Entity) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)

	entity, source := resolveEntity(doc, pc)
	if entity == "" {
		return finalize(0, p.maxScore, types.Evidence{"reason": "no entity identified"})
	}
	lower := strings.ToLower(entity)
	contains := func(s string) bool { return s != "" && strings.Contains(strings.ToLower(s), lower) }

	firstParagraph := ""
	if len(doc.Paragraphs) > 0 {
		firstParagraph = doc.Paragraphs[0]
	} else if len(doc.Blocks) > 0 {
		firstParagraph = doc.Blocks[0]
	}

	inTitle := contains(doc.Title)
	inH1 := contains(doc.FirstHeading(1))
	inFirstParagraph := contains(firstParagraph)
	mentions := extract.CountPhrase(doc.Text, entity)

	schemaNameMatch := false
	for _, key := range []string{"name", "legalName"} {
		for _, v := range doc.JSONLDField(key) {
			for _, name := range extract.StringValues(v) {
				if contains(name) {
					schemaNameMatch = true
				}
			}
		}
	}
	sameAs := 0
	for _, v := range doc.JSONLDField("sameAs") {
		sameAs += len(extract.StringValues(v))
	}
	hasEntitySchema := doc.HasSchemaType(entitySchemaTypes...)

	score := 0.0
	for _, hit := range []bool{inTitle, inH1, inFirstParagraph, schemaNameMatch} {
		if hit {
			score += 3
		}
	}
	score += ladder(float64(mentions), step{5, 3}, step{3, 2}, step{1, 1})
	score += ladder(float64(sameAs), step{3, 3}, step{1, 2})
	if hasEntitySchema {
		score += 2
	}

	return finalize(score, p.maxScore, types.Evidence{
		"entity":             entity,
		"entity_source":      source,
		"in_title":           inTitle,
		"in_h1":              inH1,
		"in_first_paragraph": inFirstParagraph,
		"mention_count":      mentions,
		"schema_name_match":  schemaNameMatch,
		"same_as_count":      sameAs,
		"has_entity_schema":  hasEntitySchema,
	})
}

// resolveEntity picks the context entity, then the first H1, then the title up to
// its first " | " or " - " separator.
func resolveEntity(doc *extract.Document, pc *Context) (string, string) {
	if pc != nil && strings.TrimSpace(pc.Entity) != "" {
		return strings.TrimSpace(pc.Entity), "context"
	}
	if h1 := doc.FirstHeading(1); h1 != "" {
		return h1, "h1"
	}
	title := doc.Title
	for _, sep := range []string{" | ", " - "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	if title = strings.TrimSpace(title); title != "" {
		return title, "title"
	}
	return "", ""
}
