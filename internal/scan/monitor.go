package scan

import (
	"context"
	"log/slog"
	"sort"

	"dealscout/internal/config"
	"dealscout/internal/match"
	"dealscout/internal/model"
	"dealscout/internal/reddit"
	"dealscout/internal/store"
)

// Result summarizes one scanned scope. Err carries a per-scope fetch
// failure; a failed scope never aborts a multi-scope run.
type Result struct {
	Subreddit     string
	PostsScanned  int
	Opportunities []model.Opportunity
	Err           string
}

// Monitor drives source -> matcher -> engagement scoring -> filters,
// producing ranked opportunity candidates per scope.
type Monitor struct {
	source      reddit.Source
	matcher     *match.Matcher
	maxPosts    int
	minScore    float64
	maxAgeHours float64
}

func NewMonitor(source reddit.Source, matcher *match.Matcher, cfg config.ScannerConfig) *Monitor {
	return &Monitor{
		source:      source,
		matcher:     matcher,
		maxPosts:    cfg.MaxPostsPerSub,
		minScore:    cfg.MinRelevanceScore,
		maxAgeHours: cfg.PostMaxAgeHours,
	}
}

// ScanSubreddit fetches up to limit new posts from one subreddit and
// scores the survivors. Zero limit and minScore fall back to the
// configured defaults.
func (m *Monitor) ScanSubreddit(ctx context.Context, subreddit string, limit int, minScore float64) Result {
	if limit <= 0 {
		limit = m.maxPosts
	}
	if minScore <= 0 {
		minScore = m.minScore
	}
	res := Result{Subreddit: subreddit}

	slog.Info("scanning subreddit", "subreddit", subreddit, "limit", limit)
	posts, err := m.source.Posts(ctx, subreddit, "new", limit)
	if err != nil {
		res.Err = err.Error()
		slog.Error("scan failed", "subreddit", subreddit, "error", err)
		return res
	}

	for _, post := range posts {
		res.PostsScanned++
		if opp, ok := m.evaluate(post, minScore); ok {
			res.Opportunities = append(res.Opportunities, opp)
			slog.Debug("opportunity found",
				"reddit_id", post.SourceID,
				"score", opp.RelevanceScore,
				"keywords", len(opp.Hits))
		}
	}

	sortByRelevance(res.Opportunities)
	slog.Info("scan complete",
		"subreddit", subreddit,
		"scanned", res.PostsScanned,
		"found", len(res.Opportunities))
	return res
}

// evaluate applies the filters in order, short-circuiting before any
// scoring work for posts that cannot qualify.
func (m *Monitor) evaluate(post model.Post, minScore float64) (model.Opportunity, bool) {
	if post.AgeHours > m.maxAgeHours {
		return model.Opportunity{}, false
	}
	if post.Locked || post.Archived {
		return model.Opportunity{}, false
	}
	if post.NSFW {
		return model.Opportunity{}, false
	}

	matched := m.matcher.Match(post.Body, post.Title)
	if !matched.Matched {
		return model.Opportunity{}, false
	}

	composite, tier := match.EngagementScore(post, matched.Score)
	if composite < minScore {
		return model.Opportunity{}, false
	}

	return model.Opportunity{
		Post:           post,
		RelevanceScore: composite,
		EngagementTier: tier,
		Hits:           matched.Hits,
		Categories:     matched.Categories,
		Status:         store.StatusPending,
	}, true
}

// ScanAll scans each subreddit sequentially. Scopes are isolated: a
// failure is recorded on its Result and the run continues.
func (m *Monitor) ScanAll(ctx context.Context, subreddits []string, limit int, minScore float64) []Result {
	slog.Info("starting full scan", "subreddit_count", len(subreddits))
	results := make([]Result, 0, len(subreddits))
	for _, sub := range subreddits {
		results = append(results, m.ScanSubreddit(ctx, sub, limit, minScore))
	}
	return results
}

// Search runs one combined cross-subreddit query scope through the
// same filter and scoring logic.
func (m *Monitor) Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Opportunity, error) {
	posts, err := m.source.Search(ctx, query, subreddits, limit)
	if err != nil {
		return nil, err
	}
	var opps []model.Opportunity
	for _, post := range posts {
		if opp, ok := m.evaluate(post, m.minScore); ok {
			opps = append(opps, opp)
		}
	}
	sortByRelevance(opps)
	return opps, nil
}

// HotOpportunities checks "hot" listings for keyword matches with a
// relaxed gate (match score >= 0.3 before engagement weighting).
func (m *Monitor) HotOpportunities(ctx context.Context, subreddits []string, limit int) []model.Opportunity {
	var opps []model.Opportunity
	for _, sub := range subreddits {
		posts, err := m.source.Posts(ctx, sub, "hot", 15)
		if err != nil {
			slog.Warn("hot fetch failed", "subreddit", sub, "error", err)
			continue
		}
		for _, post := range posts {
			matched := m.matcher.Match(post.Body, post.Title)
			if !matched.Matched || matched.Score < 0.3 {
				continue
			}
			composite, tier := match.EngagementScore(post, matched.Score)
			opps = append(opps, model.Opportunity{
				Post:           post,
				RelevanceScore: composite,
				EngagementTier: tier,
				Hits:           matched.Hits,
				Categories:     matched.Categories,
				Status:         store.StatusPending,
			})
		}
	}
	sortByRelevance(opps)
	if len(opps) > limit {
		opps = opps[:limit]
	}
	return opps
}

// sortByRelevance orders candidates descending by score; the stable
// sort keeps source order for ties.
func sortByRelevance(opps []model.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].RelevanceScore > opps[j].RelevanceScore
	})
}
