package fetch

import (
	"net/url"
	"strings"
)

// Platform is a known publishing platform whose pages share a layout.
type Platform string

const (
	// PlatformMedium is medium.com and its custom-domain publications
	PlatformMedium Platform = "medium"
	// PlatformSubstack is substack.com newsletters
	PlatformSubstack Platform = "substack"
	// PlatformWordPress is wordpress.com hosted blogs
	PlatformWordPress Platform = "wordpress"
	// PlatformGhost is ghost.io hosted blogs
	PlatformGhost Platform = "ghost"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the publishing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case host == "medium.com" || strings.HasSuffix(host, ".medium.com"):
		return PlatformMedium
	case strings.HasSuffix(host, ".substack.com"):
		return PlatformSubstack
	case strings.HasSuffix(host, ".wordpress.com"):
		return PlatformWordPress
	case strings.HasSuffix(host, ".ghost.io"):
		return PlatformGhost
	default:
		return PlatformUnknown
	}
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformMedium:
		return []string{"article", "section[data-field='body']", "main"}
	case PlatformSubstack:
		return []string{".available-content", ".body.markup", "article", "main"}
	case PlatformWordPress:
		return []string{".entry-content", "article", ".post", "main"}
	case PlatformGhost:
		return []string{".gh-content", ".post-content", "article", "main"}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Subscription and share widgets
		"form",
		".subscribe",
		".subscription-widget",
		".social-share",
		".share-buttons",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",

		// Comments
		"#comments",
		".comments",
	}

	switch platform {
	case PlatformMedium:
		return append(common, ".pw-responses", "[data-testid='headerSocialShare']")
	case PlatformSubstack:
		return append(common, ".post-footer", ".paywall")
	case PlatformWordPress:
		return append(common, ".sharedaddy", ".jp-relatedposts", ".wpcnt")
	case PlatformGhost:
		return append(common, ".gh-post-upgrade-cta", ".footer-cta")
	default:
		return common
	}
}
