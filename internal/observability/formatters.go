// Package observability renders reports as boxed terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jonathan/geo-scorer/internal/crawling"
	"github.com/jonathan/geo-scorer/internal/enhance"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/types"
)

const (
	// boxWidth is the outer width of every box, in terminal cells.
	boxWidth = 64
	barWidth = 20
	// maxItemsToShow caps list sections.
	maxItemsToShow = 5
)

// Printer writes formatted boxes to out.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox draws a titled box. Lines wider than the box are truncated by
// display width so wide runes keep the border aligned.
//
//nolint:errcheck // terminal output; errors are not recoverable
func (p *Printer) printBox(title, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fit(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func fit(s string, width int) string {
	s = runewidth.Truncate(s, width, "...")
	return runewidth.FillRight(s, width)
}

func bar(percentage float64) string {
	filled := int(percentage / 100 * barWidth)
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// orderedKeys returns report keys in registry order, unknown keys last and sorted.
func orderedKeys(m map[types.PillarKey]types.PillarReport) []types.PillarKey {
	var keys []types.PillarKey
	seen := map[types.PillarKey]bool{}
	for _, info := range scoring.Registry() {
		if _, ok := m[info.Key]; ok {
			keys = append(keys, info.Key)
			seen[info.Key] = true
		}
	}
	var rest []types.PillarKey
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(keys, rest...)
}

// PrintReport prints the headline score and one row per pillar.
func (p *Printer) PrintReport(report *types.GeoScoreReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:  %.2f / %.0f  (%.1f%%)\n", report.Score, report.MaxScore, report.Percentage)
	fmt.Fprintf(&sb, "Grade:  %s\n\n", report.Grade)

	for _, key := range orderedKeys(report.Pillars) {
		pr := report.Pillars[key]
		name := runewidth.FillRight(runewidth.Truncate(pr.Name, 24, "..."), 24)
		fmt.Fprintf(&sb, "%s %s %5.1f%%\n", name, bar(pr.Percentage), pr.Percentage)
	}
	if report.Summary.Overall != "" {
		fmt.Fprintf(&sb, "\n%s", report.Summary.Overall)
	}
	p.printBox("AI VISIBILITY REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations prints the recommendation list in priority order.
func (p *Printer) PrintRecommendations(recs types.RecommendationList) {
	if len(recs) == 0 {
		p.printBox("RECOMMENDATIONS", "✅ Every pillar is at or above 70%")
		return
	}

	var sb strings.Builder
	for i, rec := range recs {
		fmt.Fprintf(&sb, "[%s] %s (%.1f%%)\n", strings.ToUpper(string(rec.Priority)), rec.Pillar, rec.CurrentScore)
		count := min(len(rec.Actions), maxItemsToShow)
		for _, action := range rec.Actions[:count] {
			fmt.Fprintf(&sb, "  • %s\n", action)
		}
		if i < len(recs)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuickScore prints the reduced score.
func (p *Printer) PrintQuickScore(q *types.QuickScore) {
	if q == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:  %.2f  (%.1f%%)  Grade %s\n\n", q.Score, q.Percentage, q.Grade)
	keys := make([]types.PillarKey, 0, len(q.Pillars))
	for k := range q.Pillars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		qp := q.Pillars[k]
		fmt.Fprintf(&sb, "%-22s %5.1f / %-4.0f %s\n", k, qp.Score, qp.Max, qp.Tier)
	}
	p.printBox("QUICK SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPillars prints the pillar registry.
func (p *Printer) PrintPillars(infos []scoring.PillarInfo) {
	var sb strings.Builder
	for _, info := range infos {
		name := runewidth.FillRight(info.Name, 24)
		fmt.Fprintf(&sb, "%-22s %s %-6s %3.0f\n", info.Key, name, info.Tier, info.MaxScore)
	}
	p.printBox(fmt.Sprintf("PILLARS (%d)", len(infos)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBenchmark prints a corpus comparison.
func (p *Printer) PrintBenchmark(b *enhance.Benchmark) {
	if b == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Neighbors:   %d\n", b.NeighborCount)
	fmt.Fprintf(&sb, "Percentile:  %.1f\n", b.Percentile)
	fmt.Fprintf(&sb, "Median:      %.1f%%\n", b.MedianPercentage)
	if len(b.Gaps) > 0 {
		sb.WriteString("\nLargest gaps:\n")
		for _, g := range b.Gaps[:min(len(b.Gaps), maxItemsToShow)] {
			fmt.Fprintf(&sb, "  • %s: %.1f%% vs %.1f%% median\n", g.Pillar, g.Percentage, g.Median)
		}
	}
	p.printBox("CORPUS BENCHMARK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestions prints LLM suggestions grouped as returned.
func (p *Printer) PrintSuggestions(s *enhance.Suggestions) {
	if s == nil || len(s.Suggestions) == 0 {
		return
	}

	var sb strings.Builder
	if s.Summary != "" {
		fmt.Fprintf(&sb, "%s\n\n", s.Summary)
	}
	for _, sg := range s.Suggestions {
		fmt.Fprintf(&sb, "• [%s] %s\n", sg.Pillar, sg.Action)
		if sg.Example != "" {
			fmt.Fprintf(&sb, "    e.g. %s\n", sg.Example)
		}
	}
	p.printBox("SUGGESTED EDITS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPartial prints individually scored pillars with their evidence keys.
func (p *Printer) PrintPartial(reports map[types.PillarKey]types.PillarReport) {
	var sb strings.Builder
	for _, key := range orderedKeys(reports) {
		pr := reports[key]
		fmt.Fprintf(&sb, "%s  %.2f / %.0f  (%.1f%%)\n", pr.Name, pr.Score, pr.MaxScore, pr.Percentage)
		if reason := pr.Evidence.String("reason"); reason != "" {
			fmt.Fprintf(&sb, "  reason: %s\n", reason)
		}
		if msg := pr.Evidence.String("error"); msg != "" {
			fmt.Fprintf(&sb, "  error: %s\n", msg)
		}
	}
	p.printBox(fmt.Sprintf("PILLAR SCORES (%d)", len(reports)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAudit prints a site audit: the aggregate grade, each page and the
// weakest pillars across the site.
func (p *Printer) PrintAudit(a *crawling.SiteAudit) {
	if a == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Site:     %s\n", a.Seed)
	fmt.Fprintf(&sb, "Pages:    %d scored of %d\n", a.Scored, len(a.Pages))
	fmt.Fprintf(&sb, "Average:  %.1f%%  Grade %s\n", a.AveragePercentage, a.Grade)
	fmt.Fprintf(&sb, "          %s\n", bar(a.AveragePercentage))
	p.printBox("SITE AUDIT", strings.TrimSuffix(sb.String(), "\n"))

	sb.Reset()
	for _, page := range a.Pages {
		if page.Score == nil {
			fmt.Fprintf(&sb, "%-8s  ERR  %s\n", page.Kind, page.URL)
			continue
		}
		fmt.Fprintf(&sb, "%-8s %5.1f%% %-2s %s\n", page.Kind, page.Score.Percentage, page.Score.Grade, page.URL)
	}
	p.printBox("PAGES", strings.TrimSuffix(sb.String(), "\n"))

	if len(a.WeakestPillars) == 0 {
		return
	}
	sb.Reset()
	for _, w := range a.WeakestPillars {
		fmt.Fprintf(&sb, "%-22s %5.1f%%  %s\n", w.Key, w.Percentage, bar(w.Percentage))
	}
	p.printBox("WEAKEST PILLARS", strings.TrimSuffix(sb.String(), "\n"))
}
