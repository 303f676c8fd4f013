package reddit

import (
	"context"
	"fmt"
	"log/slog"

	"dealscout/internal/config"
	"dealscout/internal/model"
)

// Source yields normalized post records for a scope. Implementations
// own their transport, auth, and rate limiting.
type Source interface {
	Posts(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error)
	Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Post, error)
}

// Fallback tries each source in order, moving on when one errors or
// comes back empty (blocked endpoints often return empty listings
// rather than errors).
type Fallback struct {
	sources []Source
}

func NewFallback(sources ...Source) *Fallback {
	return &Fallback{sources: sources}
}

// NewSource builds the default strategy chain from configuration:
// authenticated API when credentials are present, then the public JSON
// endpoints, then the stealth HTML scraper.
func NewSource(cfg config.RedditConfig) Source {
	var chain []Source
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		chain = append(chain, NewAPIClient(cfg.ClientID, cfg.ClientSecret, cfg.Username, cfg.Password, cfg.UserAgent))
	}
	chain = append(chain, NewPublicClient(), NewStealthClient())
	return NewFallback(chain...)
}

func (f *Fallback) Posts(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error) {
	var lastErr error
	for i, s := range f.sources {
		posts, err := s.Posts(ctx, subreddit, sort, limit)
		if err != nil {
			slog.Warn("post source failed, falling back", "subreddit", subreddit, "variant", i, "error", err)
			lastErr = err
			continue
		}
		if len(posts) == 0 && i < len(f.sources)-1 {
			slog.Debug("post source returned nothing, falling back", "subreddit", subreddit, "variant", i)
			continue
		}
		return posts, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (f *Fallback) Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Post, error) {
	var lastErr error
	for i, s := range f.sources {
		posts, err := s.Search(ctx, query, subreddits, limit)
		if err != nil {
			slog.Warn("search source failed, falling back", "query", query, "variant", i, "error", err)
			lastErr = err
			continue
		}
		if len(posts) == 0 && i < len(f.sources)-1 {
			continue
		}
		return posts, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// searchEach runs a per-subreddit fetch across scopes, deduplicating
// by source id. Per-subreddit failures are logged and skipped; the
// call fails only when every scope fails.
func searchEach(ctx context.Context, query string, subreddits []string, limit int,
	fetch func(ctx context.Context, sub, query string, limit int) ([]model.Post, error),
) ([]model.Post, error) {
	var (
		all     []model.Post
		seen    = map[string]bool{}
		failed  int
		lastErr error
	)
	for _, sub := range subreddits {
		posts, err := fetch(ctx, sub, query, limit)
		if err != nil {
			slog.Warn("search failed for subreddit", "subreddit", sub, "query", query, "error", err)
			failed++
			lastErr = err
			continue
		}
		for _, p := range posts {
			if seen[p.SourceID] {
				continue
			}
			seen[p.SourceID] = true
			all = append(all, p)
		}
		if len(all) >= limit {
			break
		}
	}
	if len(subreddits) > 0 && failed == len(subreddits) {
		return nil, fmt.Errorf("search failed for all %d subreddits: %w", failed, lastErr)
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
