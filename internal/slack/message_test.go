package slack

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscout/internal/model"
)

func sampleOpportunity() *model.Opportunity {
	return &model.Opportunity{
		ID: 42,
		Post: model.Post{
			SourceID:     "t3_sample",
			Subreddit:    "RealEstate",
			Title:        "inherited a house, need to sell fast",
			Body:         "looking for a cash buyer in tampa",
			Author:       "seller123",
			Permalink:    "https://reddit.com/r/RealEstate/comments/sample",
			Upvotes:      12,
			CommentCount: 4,
			AgeHours:     3.5,
		},
		RelevanceScore: 0.85,
		EngagementTier: "high",
		Hits: []model.KeywordHit{
			{Phrase: "need to sell fast", Category: "investor_intent"},
			{Phrase: "cash buyer", Category: "deal_types"},
		},
	}
}

func findActionBlock(t *testing.T, blocks []slack.Block) *slack.ActionBlock {
	t.Helper()
	for _, b := range blocks {
		if ab, ok := b.(*slack.ActionBlock); ok {
			return ab
		}
	}
	t.Fatal("no action block in message")
	return nil
}

func TestOpportunityBlocksCarryID(t *testing.T) {
	blocks := buildOpportunityBlocks(sampleOpportunity())
	require.NotEmpty(t, blocks)

	ab := findActionBlock(t, blocks)
	require.Len(t, ab.Elements.ElementSet, 3)

	var ids []string
	for _, el := range ab.Elements.ElementSet {
		btn, ok := el.(*slack.ButtonBlockElement)
		require.True(t, ok)
		// Button value routes the click back to the stored row.
		assert.Equal(t, "42", btn.Value)
		ids = append(ids, btn.ActionID)
	}
	assert.ElementsMatch(t, []string{ActionApprove, ActionReject, ActionReview}, ids)
}

func TestOpportunityBlocksAISection(t *testing.T) {
	opp := sampleOpportunity()
	plain := buildOpportunityBlocks(opp)

	opp.AIAnalysis = &model.Analysis{
		UserIntent:     "seller",
		SuggestedAngle: "offer a quick cash close",
		DraftResponse:  "happy to take a look at the property",
	}
	enriched := buildOpportunityBlocks(opp)

	// The analysis adds a divider plus a section.
	assert.Equal(t, len(plain)+2, len(enriched))
}

func TestOpportunityBlocksTruncatesBody(t *testing.T) {
	opp := sampleOpportunity()
	long := make([]rune, 500)
	for i := range long {
		long[i] = 'x'
	}
	opp.Body = string(long)

	blocks := buildOpportunityBlocks(opp)
	sec, ok := blocks[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Less(t, len([]rune(sec.Text.Text)), 450)
}
