package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"dealscout/internal/config"
	"dealscout/internal/model"
)

// Bot posts opportunity cards to the team channel and reflects triage
// actions back onto them.
type Bot struct {
	client  *slack.Client
	channel string
}

func NewBot(cfg config.SlackConfig) *Bot {
	return &Bot{
		client:  slack.New(cfg.BotToken),
		channel: cfg.ChannelID,
	}
}

// PostOpportunity posts one opportunity card and returns the message
// timestamp used as the notification ref.
func (b *Bot) PostOpportunity(ctx context.Context, opp *model.Opportunity) (string, error) {
	fallback := fmt.Sprintf("New opportunity in r/%s: %s", opp.Subreddit, opp.Title)
	_, ts, err := b.client.PostMessageContext(ctx, b.channel,
		slack.MsgOptionBlocks(buildOpportunityBlocks(opp)...),
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		slog.Error("slack post failed", "reddit_id", opp.SourceID, "error", err)
		return "", err
	}
	slog.Info("opportunity posted to slack", "reddit_id", opp.SourceID, "ts", ts)
	return ts, nil
}

// UpdateMessage threads a status note under the original card and
// adds a matching reaction.
func (b *Bot) UpdateMessage(ctx context.Context, ts, status, user string) error {
	_, _, err := b.client.PostMessageContext(ctx, b.channel,
		slack.MsgOptionTS(ts),
		slack.MsgOptionBlocks(buildStatusUpdateBlocks(status, user)...),
		slack.MsgOptionText(fmt.Sprintf("%s by %s", status, user), false),
	)
	if err != nil {
		slog.Error("slack update failed", "ts", ts, "error", err)
		return err
	}
	if err := b.client.AddReactionContext(ctx, statusEmoji(status), slack.NewRefToMessage(b.channel, ts)); err != nil {
		// Reaction is cosmetic; an already-reacted error is fine.
		slog.Debug("slack reaction failed", "ts", ts, "error", err)
	}
	return nil
}

// PostDigest posts the daily digest summary.
func (b *Bot) PostDigest(ctx context.Context, stats DigestStats, top []model.Opportunity) (string, error) {
	_, ts, err := b.client.PostMessageContext(ctx, b.channel,
		slack.MsgOptionBlocks(buildDigestBlocks(stats, top)...),
		slack.MsgOptionText("Daily opportunity digest", false),
	)
	if err != nil {
		slog.Error("slack digest failed", "error", err)
		return "", err
	}
	return ts, nil
}

// SendAlert posts a plain operational alert.
func (b *Bot) SendAlert(ctx context.Context, level, title, message string) error {
	emoji := map[string]string{
		"info":    ":information_source:",
		"warning": ":warning:",
		"error":   ":x:",
	}[level]
	if emoji == "" {
		emoji = ":bell:"
	}
	_, _, err := b.client.PostMessageContext(ctx, b.channel,
		slack.MsgOptionText(fmt.Sprintf("%s *%s*\n%s", emoji, title, message), false),
	)
	return err
}

// TestAuth verifies the bot token.
func (b *Bot) TestAuth(ctx context.Context) error {
	_, err := b.client.AuthTestContext(ctx)
	return err
}
