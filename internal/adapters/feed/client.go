// internal/adapters/feed/client.go
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"holydeo/internal/adapters/observability"
)

// ErrFetch marks any transport failure or non-2xx answer from a feed host.
// Fetches are never retried here; the fixed-interval resync (or a manual
// refresh) is the retry path.
var ErrFetch = errors.New("feed: fetch failed")

// Feeds can be arbitrarily hosted; cap the body so a misbehaving host
// cannot balloon an import.
const maxFeedBytes = 10 << 20

type Client struct {
	hc *http.Client
	rl *rate.Limiter
}

// New builds a feed client with client-side rate limiting across all
// properties, so a dense schedule cannot hammer one calendar provider.
func New(rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		hc: &http.Client{Timeout: 20 * time.Second},
		rl: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/calendar")
	req.Header.Set("User-Agent", "holydeo/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveFeed(0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	observability.ObserveFeed(resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetch, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return body, nil
}
