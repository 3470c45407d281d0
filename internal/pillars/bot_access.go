package pillars

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/geo-scorer/internal/types"
)

const (
	robotsPoints     = 8.0
	metaRobotsPoints = 2.0

	// Partial-credit weights for policies that block some AI crawlers. The split
	// between the major subset and the full registry is a heuristic.
	majorBotWeight = 0.7
	allBotWeight   = 0.3
)

// BotAccess scores whether AI crawlers may read the site.
type BotAccess struct {
	base
	net Network
}

// NewBotAccess returns the bot access pillar.
func NewBotAccess(net Network) *BotAccess {
	return &BotAccess{base: base{key: KeyBotAccess, name: "AI Bot Accessibility", maxScore: 10}, net: net}
}

// Score implements Scorer.
func (p *BotAccess) Score(ctx context.Context, content string, pc *Context) *types.ScoreResult {
	doc := pc.document(content)
	ev := types.Evidence{}

	robotsScore := p.scoreRobots(ctx, pc.url(), ev)

	meta := strings.ToLower(doc.Meta["robots"])
	metaScore := metaRobotsPoints
	directives := make([]string, 0)
	for _, d := range strings.Split(meta, ",") {
		if d = strings.TrimSpace(d); d != "" {
			directives = append(directives, d)
		}
	}
	for _, d := range directives {
		switch d {
		case "noindex", "noai", "none":
			metaScore = 0
		case "nosnippet":
			metaScore = min(metaScore, 1)
		}
	}
	ev["meta_robots"] = directives
	ev["meta_robots_score"] = metaScore
	ev["robots_score"] = types.RoundTo(robotsScore, 2)

	return finalize(robotsScore+metaScore, p.maxScore, ev)
}

func (p *BotAccess) scoreRobots(ctx context.Context, pageURL string, ev types.Evidence) float64 {
	ev["robots_found"] = false
	if pageURL == "" {
		ev["reason"] = "no URL provided"
		ev["assumption"] = "permissive"
		return 0
	}
	robotsURL, err := SiblingURL(pageURL, "/robots.txt")
	if err != nil {
		ev["error"] = err.Error()
		ev["assumption"] = "permissive"
		return 0
	}
	ev["robots_url"] = robotsURL

	res, err := p.net.fetch(ctx, string(p.key), robotsURL)
	if err != nil {
		ev["error"] = err.Error()
		ev["assumption"] = "permissive"
		return 0
	}
	ev["status_code"] = res.StatusCode

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
	case res.StatusCode >= 400 && res.StatusCode < 500:
		// No policy file means every crawler is allowed.
		p.recordBots(ev, ParseRobots(""))
		return robotsPoints
	default:
		ev["error"] = fmt.Sprintf("unexpected HTTP status %d", res.StatusCode)
		ev["assumption"] = "permissive"
		return 0
	}

	ev["robots_found"] = true
	robots := ParseRobots(res.Body)
	ev["sitemaps"] = robots.Sitemaps
	allowed, majorAllowed, majorTotal := p.recordBots(ev, robots)

	total := len(AICrawlers)
	switch {
	case allowed == total:
		return robotsPoints
	case robots.WildcardBlocksAll():
		return 0
	default:
		return robotsPoints * (majorBotWeight*ratio(majorAllowed, majorTotal) + allBotWeight*ratio(allowed, total))
	}
}

func (p *BotAccess) recordBots(ev types.Evidence, robots *Robots) (allowed, majorAllowed, majorTotal int) {
	bots := make(map[string]bool, len(AICrawlers))
	allowedBots := make([]string, 0, len(AICrawlers))
	blockedBots := make([]string, 0)
	for _, bot := range AICrawlers {
		ok := robots.Allows(bot.Name)
		bots[bot.Name] = ok
		if bot.Major {
			majorTotal++
		}
		if ok {
			allowed++
			allowedBots = append(allowedBots, bot.Name)
			if bot.Major {
				majorAllowed++
			}
		} else {
			blockedBots = append(blockedBots, bot.Name)
		}
	}
	ev["bots"] = bots
	ev["allowed_bots"] = allowedBots
	ev["blocked_bots"] = blockedBots
	ev["allowed_count"] = allowed
	ev["total_bots"] = len(AICrawlers)
	ev["major_allowed"] = majorAllowed
	ev["major_total"] = majorTotal
	ev["wildcard_blocks_all"] = robots.WildcardBlocksAll()
	return allowed, majorAllowed, majorTotal
}
