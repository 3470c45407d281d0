package fetch

import (
	"context"
	"errors"

	"github.com/jonathan/geo-scorer/internal/pillars"
)

// Client fetches discovery files for the network pillars.
type Client struct {
	options *Options
}

// NewClient returns a Client. A nil opts uses DefaultOptions.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{options: opts}
}

// FetchText implements pillars.Fetcher. HTTP error statuses come back as results;
// only transport failures are errors.
func (c *Client) FetchText(ctx context.Context, url string) (*pillars.FetchedText, error) {
	res, err := URL(ctx, url, c.options)
	if err != nil {
		var fetchErr *Error
		if res != nil && errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
			return &pillars.FetchedText{Body: res.Body, StatusCode: res.StatusCode}, nil
		}
		return nil, err
	}
	return &pillars.FetchedText{Body: res.Body, StatusCode: res.StatusCode}, nil
}

// SiblingURL resolves path against the origin of pageURL.
func SiblingURL(pageURL, path string) (string, error) {
	return pillars.SiblingURL(pageURL, path)
}
