package reddit

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"dealscout/internal/model"
)

// listing mirrors the subset of Reddit's listing JSON used here.
type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type childData struct {
	ID            string  `json:"id"`
	Subreddit     string  `json:"subreddit"`
	Title         string  `json:"title"`
	SelfText      string  `json:"selftext"`
	Author        string  `json:"author"`
	Permalink     string  `json:"permalink"`
	URL           string  `json:"url"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	CreatedUTC    float64 `json:"created_utc"`
	IsSelf        bool    `json:"is_self"`
	LinkFlairText string  `json:"link_flair_text"`
	Over18        bool    `json:"over_18"`
	Locked        bool    `json:"locked"`
	Archived      bool    `json:"archived"`
}

// parseListing decodes a listing body into normalized posts, skipping
// malformed children rather than aborting the batch.
func parseListing(body []byte, now time.Time) ([]model.Post, error) {
	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var d childData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			continue
		}
		if d.ID == "" || d.Title == "" {
			continue
		}
		posts = append(posts, d.toPost(now))
	}
	return posts, nil
}

func (d childData) toPost(now time.Time) model.Post {
	created := time.Unix(int64(d.CreatedUTC), 0).UTC()
	age := now.Sub(created).Hours()
	if age < 0 {
		age = 0
	}
	author := d.Author
	if author == "" {
		author = "[deleted]"
	}
	external := d.URL
	if d.IsSelf {
		external = ""
	}
	return model.Post{
		SourceID:     d.ID,
		Subreddit:    d.Subreddit,
		PostType:     "post",
		Title:        d.Title,
		Body:         d.SelfText,
		Author:       author,
		Permalink:    "https://reddit.com" + d.Permalink,
		ExternalURL:  external,
		Upvotes:      d.Score,
		CommentCount: d.NumComments,
		AgeHours:     round2(age),
		CreatedAt:    created,
		Flair:        d.LinkFlairText,
		NSFW:         d.Over18,
		Locked:       d.Locked,
		Archived:     d.Archived,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// userAgents are rotated on unauthenticated requests.
var userAgents = []string{
	"Mozilla/5.0 (compatible; RedditMonitor/1.0)",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// rateLimiter enforces a minimum jittered delay between requests
// toward reddit. Rate limiting lives in the source, not the core.
type rateLimiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	last     time.Time
}

func newRateLimiter(minDelay time.Duration) *rateLimiter {
	return &rateLimiter{minDelay: minDelay}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elapsed := time.Since(r.last); elapsed < r.minDelay {
		jitter := time.Duration(500+rand.Intn(1000)) * time.Millisecond
		time.Sleep(r.minDelay - elapsed + jitter)
	}
	r.last = time.Now()
}

func normalizeSort(sort string) string {
	switch strings.ToLower(sort) {
	case "new", "hot", "top", "rising":
		return strings.ToLower(sort)
	default:
		return "new"
	}
}
