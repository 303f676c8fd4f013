package scan

import (
	"context"
	"errors"
	"testing"

	"dealscout/internal/config"
	"dealscout/internal/match"
	"dealscout/internal/model"
	"dealscout/internal/store"
)

type fakeSource struct {
	bySub map[string][]model.Post
	err   error
}

func (f *fakeSource) Posts(_ context.Context, subreddit, _ string, limit int) ([]model.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	posts := f.bySub[subreddit]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakeSource) Search(_ context.Context, _ string, subreddits []string, limit int) ([]model.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	var all []model.Post
	for _, sub := range subreddits {
		all = append(all, f.bySub[sub]...)
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func testConfig() config.ScannerConfig {
	return config.ScannerConfig{
		MaxPostsPerSub:    25,
		MinRelevanceScore: 0.4,
		PostMaxAgeHours:   24,
	}
}

func relevantPost(id string, age float64) model.Post {
	return model.Post{
		SourceID:     id,
		Subreddit:    "wholesaling",
		Title:        "Florida wholesale deals?",
		Body:         "Looking for off market deals in Florida, specifically Tampa area",
		AgeHours:     age,
		Upvotes:      15,
		CommentCount: 8,
	}
}

func newMonitor(src *fakeSource) *Monitor {
	matcher := match.New(config.DefaultKeywords(), "miami_specific")
	return NewMonitor(src, matcher, testConfig())
}

func TestScanSubredditFilters(t *testing.T) {
	lockedPost := relevantPost("locked1", 2)
	lockedPost.Locked = true
	nsfwPost := relevantPost("nsfw1", 2)
	nsfwPost.NSFW = true
	src := &fakeSource{bySub: map[string][]model.Post{
		"wholesaling": {
			relevantPost("good1", 3.5),
			relevantPost("old1", 30), // over max age
			lockedPost,
			nsfwPost,
			{SourceID: "offtopic1", Title: "Best pasta recipe", Body: "cooking post", AgeHours: 1},
		},
	}}

	res := newMonitor(src).ScanSubreddit(context.Background(), "wholesaling", 0, 0)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.PostsScanned != 5 {
		t.Errorf("posts scanned = %d, want 5", res.PostsScanned)
	}
	if len(res.Opportunities) != 1 {
		t.Fatalf("got %d opportunities, want 1: %+v", len(res.Opportunities), res.Opportunities)
	}
	opp := res.Opportunities[0]
	if opp.SourceID != "good1" {
		t.Errorf("kept wrong post: %s", opp.SourceID)
	}
	if opp.Status != store.StatusPending {
		t.Errorf("status = %s, want pending", opp.Status)
	}
	if opp.EngagementTier == "" || len(opp.Hits) == 0 || len(opp.Categories) == 0 {
		t.Errorf("match metadata not attached: %+v", opp)
	}
}

func TestScanSubredditMinScore(t *testing.T) {
	// A barely-matching stale post scores low and must be dropped.
	weak := model.Post{SourceID: "weak1", Title: "", Body: "thinking about probate", AgeHours: 20}
	src := &fakeSource{bySub: map[string][]model.Post{"wholesaling": {weak}}}

	res := newMonitor(src).ScanSubreddit(context.Background(), "wholesaling", 0, 0.4)
	if len(res.Opportunities) != 0 {
		t.Errorf("low-score post survived: %+v", res.Opportunities)
	}

	// The same post passes with the threshold lowered.
	res = newMonitor(src).ScanSubreddit(context.Background(), "wholesaling", 0, 0.1)
	if len(res.Opportunities) != 1 {
		t.Errorf("post dropped despite low threshold: %+v", res)
	}
}

func TestScanSubredditSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("rate limited")}
	res := newMonitor(src).ScanSubreddit(context.Background(), "wholesaling", 0, 0)
	if res.Err == "" {
		t.Fatal("fetch error not captured")
	}
	if res.PostsScanned != 0 || len(res.Opportunities) != 0 {
		t.Errorf("unexpected partial result: %+v", res)
	}
}

func TestScanAllIsolatesScopes(t *testing.T) {
	matcher := match.New(config.DefaultKeywords(), "")
	src := &fakeSource{bySub: map[string][]model.Post{
		"wholesaling": {relevantPost("good1", 2)},
	}}
	m := NewMonitor(&failingThenOK{inner: src, failFor: "florida"}, matcher, testConfig())

	results := m.ScanAll(context.Background(), []string{"florida", "wholesaling"}, 0, 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Err == "" {
		t.Error("failing scope did not record its error")
	}
	if len(results[1].Opportunities) != 1 {
		t.Error("healthy scope was aborted by the failing one")
	}
}

type failingThenOK struct {
	inner   *fakeSource
	failFor string
}

func (f *failingThenOK) Posts(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error) {
	if subreddit == f.failFor {
		return nil, errors.New("boom")
	}
	return f.inner.Posts(ctx, subreddit, sort, limit)
}

func (f *failingThenOK) Search(ctx context.Context, query string, subreddits []string, limit int) ([]model.Post, error) {
	return f.inner.Search(ctx, query, subreddits, limit)
}

func TestOpportunitiesSortedStable(t *testing.T) {
	// strong matches title+body, weak matches body only; ties keep
	// source order.
	strong := relevantPost("strong1", 3)
	tieA := model.Post{SourceID: "tieA", Body: "wholesale", AgeHours: 2, Upvotes: 10, CommentCount: 5}
	tieB := model.Post{SourceID: "tieB", Body: "wholesale", AgeHours: 2, Upvotes: 10, CommentCount: 5}
	src := &fakeSource{bySub: map[string][]model.Post{
		"wholesaling": {tieA, strong, tieB},
	}}

	res := newMonitor(src).ScanSubreddit(context.Background(), "wholesaling", 0, 0.1)
	if len(res.Opportunities) != 3 {
		t.Fatalf("got %d opportunities, want 3", len(res.Opportunities))
	}
	if res.Opportunities[0].SourceID != "strong1" {
		t.Errorf("descending order broken: %s first", res.Opportunities[0].SourceID)
	}
	if res.Opportunities[1].SourceID != "tieA" || res.Opportunities[2].SourceID != "tieB" {
		t.Errorf("tie order not stable: %s, %s",
			res.Opportunities[1].SourceID, res.Opportunities[2].SourceID)
	}
}

func TestSearchScope(t *testing.T) {
	src := &fakeSource{bySub: map[string][]model.Post{
		"wholesaling": {relevantPost("good1", 2)},
		"florida":     {{SourceID: "offtopic1", Title: "pasta", Body: "cooking", AgeHours: 1}},
	}}
	opps, err := newMonitor(src).Search(context.Background(), "off market", []string{"wholesaling", "florida"}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(opps) != 1 || opps[0].SourceID != "good1" {
		t.Errorf("search results = %+v", opps)
	}
}

func TestHotOpportunities(t *testing.T) {
	// weak matches one body phrase: keyword score 0.2, below the 0.3
	// hot gate even though the regular minScore path would keep it.
	weak := model.Post{SourceID: "weak1", Body: "wholesale", AgeHours: 2, Upvotes: 10, CommentCount: 5}
	src := &fakeSource{bySub: map[string][]model.Post{
		"wholesaling": {relevantPost("hot1", 2), weak},
		"florida":     {relevantPost("hot2", 3)},
	}}

	opps := newMonitor(src).HotOpportunities(context.Background(), []string{"wholesaling", "florida"}, 10)
	if len(opps) != 2 {
		t.Fatalf("got %d hot opportunities, want 2: %+v", len(opps), opps)
	}
	for _, opp := range opps {
		if opp.SourceID == "weak1" {
			t.Error("below-gate post survived the hot scan")
		}
	}

	capped := newMonitor(src).HotOpportunities(context.Background(), []string{"wholesaling", "florida"}, 1)
	if len(capped) != 1 {
		t.Errorf("merged list not capped: got %d", len(capped))
	}
}
