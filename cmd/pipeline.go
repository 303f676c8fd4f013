package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dealscout/internal/ai"
	"dealscout/internal/cache"
	"dealscout/internal/config"
	"dealscout/internal/match"
	"dealscout/internal/reddit"
	"dealscout/internal/redisclient"
	"dealscout/internal/runner"
	"dealscout/internal/scan"
	"dealscout/internal/slack"
	"dealscout/internal/store"
)

// newMatcher loads the keyword taxonomy, falling back to the built-in
// set when no file is configured.
func newMatcher(cfg config.Config) (*match.Matcher, error) {
	keywords := config.DefaultKeywords()
	if cfg.Scanner.KeywordsFile != "" {
		loaded, err := config.LoadKeywords(cfg.Scanner.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("load keywords %s: %w", cfg.Scanner.KeywordsFile, err)
		}
		keywords = loaded
	}
	return match.New(keywords, cfg.Scanner.BonusCategory), nil
}

func newMonitor(cfg config.Config) (*scan.Monitor, error) {
	matcher, err := newMatcher(cfg)
	if err != nil {
		return nil, err
	}
	source := reddit.NewSource(cfg.Reddit)
	return scan.NewMonitor(source, matcher, cfg.Scanner), nil
}

// newRunner assembles the full pipeline against Postgres. Optional
// integrations (Slack, OpenAI, Redis) attach only when configured.
func newRunner(ctx context.Context, cfg config.Config) (*runner.Runner, *store.Postgres, error) {
	monitor, err := newMonitor(cfg)
	if err != nil {
		return nil, nil, err
	}
	pg, err := store.Connect(ctx, cfg.Database.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	r := runner.New(monitor, pg).WithScanLogger(pg)
	if cfg.Slack.BotToken != "" {
		r = r.WithNotifier(slack.NewBot(cfg.Slack))
	} else {
		slog.Warn("slack bot token not set; notifications disabled")
	}
	if cfg.OpenAI.APIKey != "" {
		r = r.WithEnricher(ai.NewOpenAI(ai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}))
	}
	if cfg.Redis.Addr != "" {
		r = r.WithSeenCache(cache.New(redisclient.New(cfg.Redis)))
	}
	return r, pg, nil
}

func runnerRequest(cfg config.Config, subreddits []string, minScore float64, maxNotifications int) runner.Request {
	if len(subreddits) == 0 {
		subreddits = cfg.Scanner.Subreddits
	}
	// Triggered runs default to the wider 0.5 net; the configured
	// min_relevance_score backstops direct Monitor calls only.
	if minScore <= 0 {
		minScore = runner.DefaultMinScore
	}
	if maxNotifications <= 0 {
		maxNotifications = cfg.Scanner.MaxNotifications
	}
	return runner.Request{
		Subreddits:       subreddits,
		Limit:            cfg.Scanner.MaxPostsPerSub,
		MinScore:         minScore,
		MaxNotifications: maxNotifications,
		ExpireAfter:      time.Duration(cfg.Scanner.ExpireAfterHours) * time.Hour,
	}
}
