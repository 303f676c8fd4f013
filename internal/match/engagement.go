package match

import (
	"math"

	"dealscout/internal/model"
)

// Engagement tiers.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// EngagementScore combines the keyword relevance score with post
// freshness and moderate engagement volume into a composite 0..1 score
// and a coarse tier. Pure and deterministic.
func EngagementScore(post model.Post, relevance float64) (float64, string) {
	// Fresh posts get a bonus (under 6 hours).
	var freshness float64
	switch {
	case post.AgeHours < 6:
		freshness = 0.2
	case post.AgeHours < 12:
		freshness = 0.1
	}

	// Moderate engagement is good (not too hot, not dead).
	var volume float64
	if post.Upvotes >= 5 && post.Upvotes <= 100 {
		volume += 0.15
	}
	if post.CommentCount >= 3 && post.CommentCount <= 50 {
		volume += 0.15
	}

	score := math.Min(relevance*0.6+volume+freshness, 1.0)

	tier := TierLow
	switch {
	case score >= 0.7:
		tier = TierHigh
	case score >= 0.4:
		tier = TierMedium
	}
	return round2(score), tier
}
