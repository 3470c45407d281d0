package pillars

import "strings"

// RobotsGroup holds the rules recorded for one user agent.
type RobotsGroup struct {
	Allow    []string `json:"allow"`
	Disallow []string `json:"disallow"`
}

// Robots is a parsed robots.txt. Agent names are lowercased.
type Robots struct {
	Groups   map[string]*RobotsGroup
	Sitemaps []string
}

// ParseRobots reads a robots policy line by line. Consecutive User-agent lines
// share the rules that follow them; comments and blank lines are ignored and an
// empty Disallow records nothing. Lines of any length are read.
func ParseRobots(content string) *Robots {
	r := &Robots{Groups: make(map[string]*RobotsGroup), Sitemaps: make([]string, 0)}

	var current []string
	lastWasAgent := false

	for line := range strings.Lines(content) {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(field)) {
		case "user-agent":
			if !lastWasAgent {
				current = nil
			}
			agent := strings.ToLower(value)
			current = append(current, agent)
			if _, exists := r.Groups[agent]; !exists {
				r.Groups[agent] = &RobotsGroup{Allow: make([]string, 0), Disallow: make([]string, 0)}
			}
			lastWasAgent = true
		case "allow":
			lastWasAgent = false
			if value != "" {
				for _, agent := range current {
					r.Groups[agent].Allow = append(r.Groups[agent].Allow, value)
				}
			}
		case "disallow":
			lastWasAgent = false
			if value != "" {
				for _, agent := range current {
					r.Groups[agent].Disallow = append(r.Groups[agent].Disallow, value)
				}
			}
		case "sitemap":
			r.Sitemaps = append(r.Sitemaps, value)
		default:
			lastWasAgent = false
		}
	}
	return r
}

// Allows resolves whether bot may crawl the site root. A specific group with
// "Disallow: /" blocks; a specific group with an Allow or without any Disallow
// allows; otherwise the wildcard group decides, and the default is allowed.
func (r *Robots) Allows(bot string) bool {
	if g, ok := r.Groups[strings.ToLower(bot)]; ok {
		if g.blocksRoot() {
			return false
		}
		if len(g.Allow) > 0 || len(g.Disallow) == 0 {
			return true
		}
	}
	return !r.WildcardBlocksAll()
}

// WildcardBlocksAll reports whether the "*" group disallows the whole site.
func (r *Robots) WildcardBlocksAll() bool {
	g, ok := r.Groups["*"]
	return ok && g.blocksRoot()
}

func (g *RobotsGroup) blocksRoot() bool {
	for _, path := range g.Disallow {
		if path == "/" {
			return true
		}
	}
	return false
}

// AICrawler is a named AI crawler identity.
type AICrawler struct {
	Name  string
	Major bool
}

// AICrawlers is the fixed registry evaluated by the bot access pillar.
var AICrawlers = []AICrawler{
	{Name: "GPTBot", Major: true},
	{Name: "ChatGPT-User", Major: true},
	{Name: "OAI-SearchBot"},
	{Name: "ClaudeBot", Major: true},
	{Name: "Claude-Web"},
	{Name: "anthropic-ai"},
	{Name: "PerplexityBot", Major: true},
	{Name: "Google-Extended", Major: true},
	{Name: "Applebot-Extended"},
	{Name: "CCBot"},
	{Name: "Bytespider"},
	{Name: "Amazonbot"},
	{Name: "Meta-ExternalAgent"},
	{Name: "cohere-ai"},
	{Name: "YouBot"},
}
