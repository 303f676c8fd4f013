package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"dealscout/internal/model"
)

const tokenURL = "https://www.reddit.com/api/v1/access_token"

// APIClient talks to the authenticated Reddit OAuth API.
type APIClient struct {
	clientID     string
	clientSecret string
	username     string
	password     string
	userAgent    string
	client       *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewAPIClient creates an authenticated API client using the password
// grant (script-type app credentials).
func NewAPIClient(clientID, clientSecret, username, password, userAgent string) *APIClient {
	return &APIClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		username:     username,
		password:     password,
		userAgent:    userAgent,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.username},
		"password":   {c.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("reddit auth: status %d", resp.StatusCode)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("reddit auth: empty token")
	}
	c.token = tok.AccessToken
	// Refresh a minute early.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.token, nil
}

func (c *APIClient) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://oauth.reddit.com"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reddit api: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Posts fetches a subreddit listing sorted by sort ("new", "hot",
// "top", "rising").
func (c *APIClient) Posts(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error) {
	q := url.Values{"limit": {fmt.Sprintf("%d", limit)}}
	body, err := c.get(ctx, fmt.Sprintf("/r/%s/%s.json", subreddit, normalizeSort(sort)), q)
	if err != nil {
		return nil, err
	}
	return parseListing(body, time.Now().UTC())
}

// Search runs a query restricted to each given subreddit and merges
// the deduplicated results.
func (c *APIClient) Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Post, error) {
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
