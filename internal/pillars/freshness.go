package pillars

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/geo-scorer/internal/types"
)

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December|` +
	`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec`

var (
	isoDate      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayYear = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNames + `)\.?,?\s+(\d{4})\b`)
	monthYear    = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{4})\b`)
	lastUpdated  = regexp.MustCompile(`(?i)\blast\s+(updated|modified|reviewed)\b`)
)

// Freshness scores how recent and how explicitly dated the content is.
type Freshness struct{ base }

// NewFreshness returns the content freshness pillar.
func NewFreshness() *Freshness {
	return &Freshness{base{key: KeyFreshness, name: "Content Freshness", maxScore: 10}}
}

// Score implements Scorer.
func (p *Freshness) Score(_ context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	now := pc.now()

	dates := FindDates(doc.Text)
	var mostRecent time.Time
	future := 0
	for _, d := range dates {
		if d.After(now) {
			future++
			continue
		}
		if d.After(mostRecent) {
			mostRecent = d
		}
	}

	score := 0.0
	ageDays := -1
	if !mostRecent.IsZero() {
		ageDays = int(now.Sub(mostRecent).Hours() / 24)
		switch {
		case ageDays <= 90:
			score += 4
		case ageDays <= 180:
			score += 3
		case ageDays <= 365:
			score += 2
		case ageDays <= 730:
			score++
		}
	}

	published := len(doc.Times) > 0 || doc.Meta["article:published_time"] != "" ||
		len(doc.JSONLDField("datePublished")) > 0
	modified := doc.Meta["article:modified_time"] != "" || doc.Meta["og:updated_time"] != "" ||
		len(doc.JSONLDField("dateModified")) > 0
	if published {
		score += 2
	}
	if modified {
		score++
	}

	hasLastUpdated := lastUpdated.MatchString(doc.Text)
	if hasLastUpdated {
		score += 2
	}
	if len(dates) >= 3 {
		score++
	}

	ev := types.Evidence{
		"date_count":         len(dates),
		"future_date_count":  future,
		"has_published_date": published,
		"has_modified_date":  modified,
		"has_last_updated":   hasLastUpdated,
		"age_days":           ageDays,
		"evaluated_at":       now.UTC().Format(time.RFC3339),
	}
	if !mostRecent.IsZero() {
		ev["most_recent_date"] = mostRecent.Format("2006-01-02")
	}
	return finalize(score, p.maxScore, ev)
}

// FindDates extracts calendar dates written as ISO dates, "Month D, YYYY",
// "D Month YYYY" or "Month YYYY" (taken as the first of the month). Invalid
// calendar dates are skipped.
func FindDates(text string) []time.Time {
	dates := make([]time.Time, 0)
	add := func(year, month, day int) {
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day {
			return
		}
		dates = append(dates, t)
	}

	remaining := text
	for _, m := range isoDate.FindAllStringSubmatch(remaining, -1) {
		add(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	remaining = isoDate.ReplaceAllString(remaining, " ")
	for _, m := range monthDayYear.FindAllStringSubmatch(remaining, -1) {
		add(atoi(m[3]), monthNumber(m[1]), atoi(m[2]))
	}
	remaining = monthDayYear.ReplaceAllString(remaining, " ")
	for _, m := range dayMonthYear.FindAllStringSubmatch(remaining, -1) {
		add(atoi(m[3]), monthNumber(m[2]), atoi(m[1]))
	}
	remaining = dayMonthYear.ReplaceAllString(remaining, " ")
	for _, m := range monthYear.FindAllStringSubmatch(remaining, -1) {
		add(atoi(m[2]), monthNumber(m[1]), 1)
	}
	return dates
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func monthNumber(name string) int {
	prefix := strings.ToLower(name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for i, m := range []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"} {
		if m == prefix {
			return i + 1
		}
	}
	return 0
}
