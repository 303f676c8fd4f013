package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscout/internal/model"
)

func testOpportunity(sourceID string, score float64) *model.Opportunity {
	return &model.Opportunity{
		Post: model.Post{
			SourceID:  sourceID,
			Subreddit: "wholesaling",
			PostType:  "post",
			Title:     "Need deals in Tampa",
			Permalink: "https://reddit.com/r/wholesaling/comments/" + sourceID + "/",
		},
		RelevanceScore: score,
		EngagementTier: "medium",
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusReviewed, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusDismissed, true},
		{StatusPending, StatusResponded, true},
		{StatusReviewed, StatusApproved, true},
		{StatusApproved, StatusResponded, true},
		// expired only via the sweep
		{StatusPending, StatusExpired, false},
		// frozen states admit nothing
		{StatusExpired, StatusReviewed, false},
		{StatusResponded, StatusApproved, false},
		{StatusDismissed, StatusReviewed, false},
		// no self-loops, no return to pending
		{StatusReviewed, StatusReviewed, false},
		{StatusApproved, StatusPending, false},
		// unknown statuses
		{"bogus", StatusReviewed, false},
		{StatusPending, "bogus", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestMemoryCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, created, err := m.Create(ctx, testOpportunity("abc123", 0.8))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, id)

	// Second create with the same source id is a no-op, not an error.
	dupID, created, err := m.Create(ctx, testOpportunity("abc123", 0.9))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, dupID)

	pending, err := m.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, 0.8, pending[0].RelevanceScore, "duplicate must not overwrite")

	exists, err := m.Exists(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, _, err := m.Create(ctx, testOpportunity("abc123", 0.8))
	require.NoError(t, err)

	require.NoError(t, m.UpdateStatus(ctx, id, StatusReviewed, "alex"))
	opp, err := m.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusReviewed, opp.Status)
	assert.Equal(t, "alex", opp.ReviewedBy)
	require.NotNil(t, opp.ReviewedAt)

	require.NoError(t, m.UpdateStatus(ctx, id, StatusResponded, "alex"))
	err = m.UpdateStatus(ctx, id, StatusApproved, "alex")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = m.UpdateStatus(ctx, 999, StatusReviewed, "alex")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryExpireStale(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	staleID, _, err := m.Create(ctx, testOpportunity("old1", 0.7))
	require.NoError(t, err)
	reviewedID, _, err := m.Create(ctx, testOpportunity("old2", 0.7))
	require.NoError(t, err)
	freshID, _, err := m.Create(ctx, testOpportunity("new1", 0.7))
	require.NoError(t, err)

	require.NoError(t, m.UpdateStatus(ctx, reviewedID, StatusReviewed, "alex"))

	// Backdate the first two past the threshold.
	old := time.Now().Add(-72 * time.Hour)
	m.byID[staleID].StoredAt = old
	m.byID[reviewedID].StoredAt = old

	count, err := m.ExpireStale(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stale, _ := m.GetByID(ctx, staleID)
	assert.Equal(t, StatusExpired, stale.Status)

	reviewed, _ := m.GetByID(ctx, reviewedID)
	assert.Equal(t, StatusReviewed, reviewed.Status, "actioned opportunities never expire")

	fresh, _ := m.GetByID(ctx, freshID)
	assert.Equal(t, StatusPending, fresh.Status)
}

func TestMemoryGetPendingOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, tc := range []struct {
		id    string
		score float64
	}{{"a", 0.5}, {"b", 0.9}, {"c", 0.7}} {
		_, _, err := m.Create(ctx, testOpportunity(tc.id, tc.score))
		require.NoError(t, err)
	}
	pending, err := m.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].SourceID)
	assert.Equal(t, "c", pending[1].SourceID)
}

func TestMemoryMarkResponded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	opp := testOpportunity("abc123", 0.8)
	opp.SuggestedResponse = "drafted by the enricher"
	id, _, err := m.Create(ctx, opp)
	require.NoError(t, err)

	require.NoError(t, m.MarkResponded(ctx, id, "posted this reply", "cmt_1", "alex"))

	got, err := m.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusResponded, got.Status)
	assert.Equal(t, "alex", got.ReviewedBy)
	// The reply is a separate record; the enricher draft survives.
	assert.Equal(t, "drafted by the enricher", got.SuggestedResponse)

	responses := m.Responses(id)
	require.Len(t, responses, 1)
	assert.Equal(t, "posted this reply", responses[0].Text)
	assert.Equal(t, "cmt_1", responses[0].CommentID)

	// Responded is frozen: a second reply is rejected.
	err = m.MarkResponded(ctx, id, "again", "", "alex")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = m.MarkResponded(ctx, 999, "text", "", "alex")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetByStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a, _, err := m.Create(ctx, testOpportunity("a", 0.8))
	require.NoError(t, err)
	b, _, err := m.Create(ctx, testOpportunity("b", 0.7))
	require.NoError(t, err)
	_, _, err = m.Create(ctx, testOpportunity("c", 0.6))
	require.NoError(t, err)

	require.NoError(t, m.UpdateStatus(ctx, a, StatusApproved, "alex"))
	require.NoError(t, m.UpdateStatus(ctx, b, StatusApproved, "alex"))

	approved, err := m.GetByStatus(ctx, StatusApproved, 10)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
	for _, opp := range approved {
		assert.Equal(t, StatusApproved, opp.Status)
	}

	limited, err := m.GetByStatus(ctx, StatusApproved, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := m.GetByStatus(ctx, StatusRejected, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemorySlackTS(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, _, err := m.Create(ctx, testOpportunity("abc123", 0.8))
	require.NoError(t, err)

	require.NoError(t, m.UpdateSlackTS(ctx, id, "1724680000.12345"))
	opp, err := m.GetBySourceID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "1724680000.12345", opp.SlackTS)
}
