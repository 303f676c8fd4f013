package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"dealscout/internal/model"
)

// Button action ids handled by the interactivity endpoint.
const (
	ActionApprove = "opportunity_approve"
	ActionReject  = "opportunity_reject"
	ActionReview  = "opportunity_review"
)

func tierEmoji(tier string) string {
	switch tier {
	case "high":
		return ":fire:"
	case "medium":
		return ":star:"
	default:
		return ":mag:"
	}
}

// buildOpportunityBlocks renders one opportunity as a message card
// with inline triage buttons.
func buildOpportunityBlocks(opp *model.Opportunity) []slack.Block {
	header := fmt.Sprintf("%s *New Opportunity* — r/%s (%s, score %.2f)",
		tierEmoji(opp.EngagementTier), opp.Subreddit, opp.EngagementTier, opp.RelevanceScore)

	body := opp.Body
	if len([]rune(body)) > 300 {
		body = string([]rune(body)[:300]) + "…"
	}
	main := fmt.Sprintf("*<%s|%s>*\n%s", opp.Permalink, opp.Title, body)

	stats := fmt.Sprintf("u/%s · %d upvotes · %d comments · %.1fh old",
		opp.Author, opp.Upvotes, opp.CommentCount, opp.AgeHours)

	phrases := make([]string, 0, 5)
	for i, h := range opp.Hits {
		if i >= 5 {
			break
		}
		phrases = append(phrases, "`"+h.Phrase+"`")
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, header, false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, main, false, false), nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, stats, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "Matched: "+strings.Join(phrases, " "), false, false),
		),
	}

	if a := opp.AIAnalysis; a != nil && a.UserIntent != "" && a.UserIntent != "unknown" {
		ai := fmt.Sprintf("*Intent:* %s\n*Angle:* %s", a.UserIntent, a.SuggestedAngle)
		if a.DraftResponse != "" {
			ai += fmt.Sprintf("\n*Draft:* _%s_", a.DraftResponse)
		}
		if len(a.RedFlags) > 0 {
			ai += "\n:warning: " + strings.Join(a.RedFlags, "; ")
		}
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, ai, false, false), nil, nil),
		)
	}

	value := fmt.Sprintf("%d", opp.ID)
	blocks = append(blocks, slack.NewActionBlock("opportunity_actions",
		slack.NewButtonBlockElement(ActionApprove, value,
			slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false)).WithStyle(slack.StylePrimary),
		slack.NewButtonBlockElement(ActionReject, value,
			slack.NewTextBlockObject(slack.PlainTextType, "Reject", false, false)).WithStyle(slack.StyleDanger),
		slack.NewButtonBlockElement(ActionReview, value,
			slack.NewTextBlockObject(slack.PlainTextType, "Mark Reviewed", false, false)),
	))
	return blocks
}

// buildStatusUpdateBlocks renders the thread reply posted after a
// reviewer action.
func buildStatusUpdateBlocks(status, user string) []slack.Block {
	text := fmt.Sprintf(":bell: *%s* by <@%s>", strings.ToUpper(status), user)
	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	}
}

// buildDigestBlocks renders the daily digest summary.
func buildDigestBlocks(stats DigestStats, top []model.Opportunity) []slack.Block {
	header := fmt.Sprintf(":chart_with_upwards_trend: *Daily Digest* — %d opportunities this week (%d pending, avg score %.2f)",
		stats.Total, stats.Pending, stats.AvgScore)
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, header, false, false), nil, nil),
		slack.NewDividerBlock(),
	}
	for i, opp := range top {
		if i >= 5 {
			break
		}
		line := fmt.Sprintf("%d. <%s|%s> (r/%s, %.2f)",
			i+1, opp.Permalink, opp.Title, opp.Subreddit, opp.RelevanceScore)
		blocks = append(blocks,
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, line, false, false), nil, nil))
	}
	return blocks
}

// DigestStats is the summary line for the daily digest.
type DigestStats struct {
	Total    int64
	Pending  int64
	AvgScore float64
}

func statusEmoji(status string) string {
	switch status {
	case "approved":
		return "white_check_mark"
	case "rejected":
		return "x"
	case "responded":
		return "rocket"
	case "reviewed":
		return "eyes"
	default:
		return "question"
	}
}
