package pillars

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Network configures the pillars that fetch discovery files. A nil Fetcher makes
// every fetch fail with "no fetcher configured".
type Network struct {
	Fetcher Fetcher
	Timeout time.Duration
	Logger  *slog.Logger
}

func (n Network) timeout() time.Duration {
	if n.Timeout <= 0 {
		return DefaultFetchTimeout
	}
	return n.Timeout
}

func (n Network) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

var errNoFetcher = errors.New("no fetcher configured")

// fetch retrieves target under the network timeout. Failures are logged and
// returned so the caller can record them as evidence.
func (n Network) fetch(ctx context.Context, pillar, target string) (*FetchedText, error) {
	if n.Fetcher == nil {
		return nil, errNoFetcher
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout())
	defer cancel()

	start := time.Now()
	res, err := n.Fetcher.FetchText(ctx, target)
	if err != nil {
		n.logger().Warn("discovery fetch failed",
			"pillar", pillar, "url", target, "duration", time.Since(start), "error", err)
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("empty response for %s", target)
	}
	return res, nil
}

// SiblingURL resolves path against the origin of pageURL
// ("https://a.example/x/y", "/robots.txt" gives "https://a.example/robots.txt").
func SiblingURL(pageURL, path string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %q: %w", pageURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q must be absolute", pageURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: path}).String(), nil
}
