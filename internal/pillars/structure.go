package pillars

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/jonathan/geo-scorer/internal/types"
)

// Structure scores heading hierarchy, lists and tables.
type Structure struct{ base }

// NewStructure returns the structure pillar.
func NewStructure() *Structure {
	return &Structure{base{key: KeyStructure, name: "Content Structure", maxScore: 15}}
}

// Score implements Scorer.
func (p *Structure) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)

	counts := make(map[string]int, 6)
	for level := 1; level <= 6; level++ {
		counts["h"+strconv.Itoa(level)] = doc.HeadingCount(level)
	}
	h1 := counts["h1"]

	levels := make([]int, 0, 6)
	for level := 1; level <= 6; level++ {
		if counts["h"+strconv.Itoa(level)] > 0 {
			levels = append(levels, level)
		}
	}
	sort.Ints(levels)
	violations := hierarchyViolations(levels)
	nested := len(violations) == 0

	score := 0.0
	switch {
	case h1 == 1:
		score += 3
	case h1 > 1:
		score++
	}

	switch {
	case len(levels) == 0:
	case nested && len(levels) >= 2:
		score += 4
	case nested:
		score += 2
	case len(violations) == 1:
		score++
	}

	subheadings := counts["h2"] + counts["h3"]
	score += ladder(float64(subheadings), step{4, 3}, step{2, 2}, step{1, 1})

	lists := doc.OrderedLists + doc.UnorderedLists
	score += ladder(float64(lists), step{3, 3}, step{2, 2}, step{1, 1.5})

	if doc.Tables >= 1 {
		score += 2
	}

	return finalize(score, p.maxScore, types.Evidence{
		"heading_counts":   counts,
		"h1_count":         h1,
		"levels_present":   levels,
		"properly_nested":  nested && len(levels) > 0,
		"violations":       violations,
		"subheading_count": subheadings,
		"list_count":       lists,
		"list_item_count":  doc.ListItems,
		"table_count":      doc.Tables,
		"paragraph_count":  len(doc.Paragraphs),
	})
}

// hierarchyViolations walks the sorted distinct levels and reports every jump of
// more than one level.
func hierarchyViolations(levels []int) []string {
	violations := make([]string, 0)
	for i := 1; i < len(levels); i++ {
		if levels[i]-levels[i-1] > 1 {
			violations = append(violations, fmt.Sprintf("Heading hierarchy skips from h%d to h%d", levels[i-1], levels[i]))
		}
	}
	return violations
}
