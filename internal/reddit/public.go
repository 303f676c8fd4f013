package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dealscout/internal/model"
)

// PublicClient reads Reddit's public JSON endpoints without
// credentials. Requests are rate limited with jitter to stay polite.
type PublicClient struct {
	baseURL string
	client  *http.Client
	limiter *rateLimiter
}

func NewPublicClient() *PublicClient {
	return &PublicClient{
		baseURL: "https://www.reddit.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: newRateLimiter(2 * time.Second),
	}
}

func (c *PublicClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	c.limiter.wait()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("reddit public: blocked with status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reddit public: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Posts fetches a subreddit listing from /r/<sub>/<sort>.json.
func (c *PublicClient) Posts(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error) {
	q := url.Values{"limit": {fmt.Sprintf("%d", limit)}}
	body, err := c.get(ctx, fmt.Sprintf("/r/%s/%s.json", subreddit, normalizeSort(sort)), q)
	if err != nil {
		return nil, err
	}
	return parseListing(body, time.Now().UTC())
}

// Search queries /r/<sub>/search.json for each subreddit and merges
// the deduplicated results.
func (c *PublicClient) Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Post, error) {
	return searchEach(ctx, query, subreddits, limit, func(ctx context.Context, sub, query string, limit int) ([]model.Post, error) {
		q := url.Values{
			"q":           {query},
			"restrict_sr": {"on"},
			"sort":        {"new"},
			"t":           {"week"},
			"limit":       {fmt.Sprintf("%d", limit)},
		}
		body, err := c.get(ctx, fmt.Sprintf("/r/%s/search.json", sub), q)
		if err != nil {
			return nil, err
		}
		return parseListing(body, time.Now().UTC())
	})
}
