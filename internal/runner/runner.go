package runner

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"dealscout/internal/model"
	"dealscout/internal/scan"
	"dealscout/internal/store"
)

// Scanner produces scored candidates per subreddit.
type Scanner interface {
	ScanAll(ctx context.Context, subreddits []string, limit int, minScore float64) []scan.Result
}

// Notifier delivers one opportunity card and returns its message id.
type Notifier interface {
	PostOpportunity(ctx context.Context, opp *model.Opportunity) (string, error)
}

// Enricher attaches an AI analysis to a stored opportunity.
type Enricher interface {
	Analyze(ctx context.Context, opp *model.Opportunity) (*model.Analysis, error)
}

// SeenCache is the optional short-term dedupe layer in front of the
// store. A nil SeenCache disables it; the store's unique key remains
// the source of truth either way.
type SeenCache interface {
	IsSeen(ctx context.Context, sourceID string) (bool, error)
	MarkSeen(ctx context.Context, sourceID string, d time.Duration) error
	IsNotified(ctx context.Context, sourceID string) (bool, error)
	MarkNotified(ctx context.Context, sourceID string, d time.Duration) error
}

// ScanLogger records per-run bookkeeping rows. Optional.
type ScanLogger interface {
	StartScanLog(ctx context.Context, subreddits []string) (int64, error)
	CompleteScanLog(ctx context.Context, id int64, postsScanned, found, notified int, runErr string) error
}

// Request configures one pipeline run.
type Request struct {
	Subreddits       []string
	Limit            int
	MinScore         float64
	MaxNotifications int
	ExpireAfter      time.Duration
	SkipEnrichment   bool
	SkipNotify       bool
}

// RunError ties a failure to the scope it happened in.
type RunError struct {
	Subreddit string `json:"subreddit"`
	Error     string `json:"error"`
}

// Summary reports what one run did.
type Summary struct {
	StartedAt            time.Time  `json:"started_at"`
	Duration             string     `json:"duration"`
	SubredditsScanned    int        `json:"subreddits_scanned"`
	PostsScanned         int        `json:"posts_scanned"`
	OpportunitiesFound   int        `json:"opportunities_found"`
	NotificationsSent    int        `json:"notifications_sent"`
	OpportunitiesExpired int64      `json:"opportunities_expired"`
	Errors               []RunError `json:"errors,omitempty"`
}

// Trigger-level defaults. DefaultMinScore is deliberately looser than
// the monitor's configured threshold: a triggered run casts the wider
// net, the config value only backstops direct Monitor calls.
const (
	DefaultMinScore         = 0.5
	DefaultMaxNotifications = 10

	seenTTL     = 7 * 24 * time.Hour
	notifiedTTL = 30 * 24 * time.Hour
)

// Runner wires the full pipeline: scan, persist, enrich, notify,
// expire. Enricher, notifier, cache and logger may be nil; the run
// degrades to scan-and-store.
type Runner struct {
	scanner  Scanner
	store    store.Store
	enricher Enricher
	notifier Notifier
	cache    SeenCache
	scanLog  ScanLogger
}

func New(scanner Scanner, st store.Store) *Runner {
	return &Runner{scanner: scanner, store: st}
}

func (r *Runner) WithEnricher(e Enricher) *Runner {
	r.enricher = e
	return r
}

func (r *Runner) WithNotifier(n Notifier) *Runner {
	r.notifier = n
	return r
}

func (r *Runner) WithSeenCache(c SeenCache) *Runner {
	r.cache = c
	return r
}

func (r *Runner) WithScanLogger(l ScanLogger) *Runner {
	r.scanLog = l
	return r
}

// Run executes one full pipeline pass and reports a summary. Failures
// in individual subreddits, enrichment and notification are recorded
// and do not abort the run; only a nil store or scanner is fatal.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	summary := Summary{StartedAt: start.UTC()}

	if req.MinScore <= 0 {
		req.MinScore = DefaultMinScore
	}

	var logID int64
	if r.scanLog != nil {
		id, err := r.scanLog.StartScanLog(ctx, req.Subreddits)
		if err != nil {
			slog.Warn("scan log open failed", "error", err)
		} else {
			logID = id
		}
	}

	results := r.scanner.ScanAll(ctx, req.Subreddits, req.Limit, req.MinScore)
	summary.SubredditsScanned = len(results)

	var fresh []model.Opportunity
	for _, res := range results {
		summary.PostsScanned += res.PostsScanned
		if res.Err != "" {
			summary.Errors = append(summary.Errors, RunError{Subreddit: res.Subreddit, Error: res.Err})
			continue
		}
		for _, opp := range res.Opportunities {
			stored, err := r.persist(ctx, opp)
			if err != nil {
				summary.Errors = append(summary.Errors, RunError{Subreddit: res.Subreddit, Error: err.Error()})
				continue
			}
			if stored != nil {
				fresh = append(fresh, *stored)
			}
		}
	}
	summary.OpportunitiesFound = len(fresh)

	// Rank across all subreddits so the notification budget goes to the
	// best candidates of the whole run, not the first subreddit scanned.
	sortByRelevance(fresh)

	maxNotify := req.MaxNotifications
	if maxNotify <= 0 {
		maxNotify = DefaultMaxNotifications
	}
	for i := range fresh {
		opp := &fresh[i]
		if summary.NotificationsSent >= maxNotify {
			break
		}
		if !req.SkipEnrichment && r.enricher != nil {
			analysis, err := r.enricher.Analyze(ctx, opp)
			if err != nil {
				slog.Warn("enrichment degraded", "source_id", opp.SourceID, "error", err)
			}
			opp.AIAnalysis = analysis
			if analysis != nil {
				opp.SuggestedResponse = analysis.DraftResponse
				if err := r.store.UpdateAnalysis(ctx, opp.ID, analysis, opp.SuggestedResponse); err != nil {
					slog.Warn("analysis persist failed", "opportunity_id", opp.ID, "error", err)
				}
			}
		}
		if req.SkipNotify || r.notifier == nil {
			continue
		}
		sent, err := r.notify(ctx, opp)
		if err != nil {
			summary.Errors = append(summary.Errors, RunError{Subreddit: opp.Subreddit, Error: err.Error()})
			continue
		}
		if sent {
			summary.NotificationsSent++
		}
	}

	if req.ExpireAfter > 0 {
		expired, err := r.store.ExpireStale(ctx, req.ExpireAfter)
		if err != nil {
			summary.Errors = append(summary.Errors, RunError{Error: "expire sweep: " + err.Error()})
		} else {
			summary.OpportunitiesExpired = expired
		}
	}

	summary.Duration = time.Since(start).Round(time.Millisecond).String()
	if r.scanLog != nil && logID > 0 {
		runErr := ""
		if len(summary.Errors) > 0 {
			runErr = summary.Errors[0].Error
		}
		if err := r.scanLog.CompleteScanLog(ctx, logID, summary.PostsScanned,
			summary.OpportunitiesFound, summary.NotificationsSent, runErr); err != nil {
			slog.Warn("scan log close failed", "error", err)
		}
	}

	slog.Info("run complete",
		"subreddits", summary.SubredditsScanned,
		"posts", summary.PostsScanned,
		"found", summary.OpportunitiesFound,
		"notified", summary.NotificationsSent,
		"expired", summary.OpportunitiesExpired,
		"errors", len(summary.Errors),
		"duration", summary.Duration)
	return summary, nil
}

// persist stores one candidate, returning nil when it was already
// known. The cache read is an optimization; a cache miss still hits
// the store's unique key, so a flushed cache never double-stores.
func (r *Runner) persist(ctx context.Context, opp model.Opportunity) (*model.Opportunity, error) {
	if r.cache != nil {
		if seen, err := r.cache.IsSeen(ctx, opp.SourceID); err == nil && seen {
			return nil, nil
		}
	}
	opp.Status = store.StatusPending
	id, created, err := r.store.Create(ctx, &opp)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.MarkSeen(ctx, opp.SourceID, seenTTL); err != nil {
			slog.Warn("seen cache write failed", "source_id", opp.SourceID, "error", err)
		}
	}
	if !created {
		return nil, nil
	}
	opp.ID = id
	return &opp, nil
}

// notify posts one card. sent is false when the notified-cache says a
// message already went out for this post, so the caller never counts a
// message that was not posted this run.
func (r *Runner) notify(ctx context.Context, opp *model.Opportunity) (sent bool, err error) {
	if r.cache != nil {
		if notified, err := r.cache.IsNotified(ctx, opp.SourceID); err == nil && notified {
			return false, nil
		}
	}
	ts, err := r.notifier.PostOpportunity(ctx, opp)
	if err != nil {
		return false, err
	}
	opp.SlackTS = ts
	if err := r.store.UpdateSlackTS(ctx, opp.ID, ts); err != nil {
		slog.Warn("slack ts persist failed", "opportunity_id", opp.ID, "error", err)
	}
	if r.cache != nil {
		if err := r.cache.MarkNotified(ctx, opp.SourceID, notifiedTTL); err != nil {
			slog.Warn("notified cache write failed", "source_id", opp.SourceID, "error", err)
		}
	}
	return true, nil
}

func sortByRelevance(opps []model.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].RelevanceScore > opps[j].RelevanceScore
	})
}
