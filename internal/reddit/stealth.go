package reddit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dealscout/internal/model"
)

// browserHeaders imitate a desktop Chrome session for the HTML
// fallback when the JSON endpoints are blocked.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://www.google.com/",
}

// StealthClient scrapes old.reddit listing pages. Field extraction is
// best effort; rows missing an id or title are skipped.
type StealthClient struct {
	baseURL string
	client  *http.Client
	limiter *rateLimiter
}

func NewStealthClient() *StealthClient {
	return &StealthClient{
		baseURL: "https://old.reddit.com",
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: newRateLimiter(3 * time.Second),
	}
}

func (c *StealthClient) fetch(ctx context.Context, path string) (*goquery.Document, error) {
	c.limiter.wait()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reddit stealth: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// Posts scrapes /r/<sub>/<sort>/ and extracts up to limit posts.
func (c *StealthClient) Posts(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf("/r/%s/%s/", subreddit, normalizeSort(sort)))
	if err != nil {
		return nil, err
	}
	return extractThings(doc, subreddit, limit), nil
}

// Search scrapes /r/<sub>/search for each subreddit and merges the
// deduplicated results.
func (c *StealthClient) Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Post, error) {
	return searchEach(ctx, query, subreddits, limit, func(ctx context.Context, sub, query string, limit int) ([]model.Post, error) {
		path := fmt.Sprintf("/r/%s/search?q=%s&restrict_sr=on&sort=new&t=week", sub, strings.ReplaceAll(query, " ", "+"))
		doc, err := c.fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		return extractThings(doc, sub, limit), nil
	})
}

// extractThings pulls post rows (div.thing) out of an old.reddit
// listing page.
func extractThings(doc *goquery.Document, subreddit string, limit int) []model.Post {
	now := time.Now().UTC()
	var posts []model.Post
	doc.Find("div.thing").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("promoted") {
			return true
		}
		fullname, _ := s.Attr("data-fullname")
		if !strings.HasPrefix(fullname, "t3_") {
			return true
		}
		id := strings.TrimPrefix(fullname, "t3_")
		title := strings.TrimSpace(s.Find("a.title").First().Text())
		if title == "" {
			return true
		}

		permalink, _ := s.Attr("data-permalink")
		author := strings.TrimSpace(s.Find("a.author").First().Text())
		if author == "" {
			author = "[deleted]"
		}

		upvotes := 0
		if raw, ok := s.Find("div.score.unvoted").First().Attr("title"); ok {
			upvotes, _ = strconv.Atoi(raw)
		}
		comments := 0
		if raw := s.Find("a.comments").First().Text(); raw != "" {
			fields := strings.Fields(raw)
			if len(fields) > 0 {
				comments, _ = strconv.Atoi(fields[0])
			}
		}

		created := now
		if ts, ok := s.Find("time").First().Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				created = t.UTC()
			}
		}
		age := now.Sub(created).Hours()
		if age < 0 {
			age = 0
		}

		sub := subreddit
		if ds, ok := s.Attr("data-subreddit"); ok && ds != "" {
			sub = ds
		}
		externalURL, _ := s.Attr("data-url")
		if strings.HasPrefix(externalURL, "/r/") {
			externalURL = "" // self post
		}

		posts = append(posts, model.Post{
			SourceID:     id,
			Subreddit:    sub,
			PostType:     "post",
			Title:        title,
			Author:       author,
			Permalink:    "https://reddit.com" + permalink,
			ExternalURL:  externalURL,
			Upvotes:      upvotes,
			CommentCount: comments,
			AgeHours:     round2(age),
			CreatedAt:    created,
			NSFW:         s.HasClass("over18"),
			Locked:       s.HasClass("locked"),
		})
		return len(posts) < limit
	})
	return posts
}
