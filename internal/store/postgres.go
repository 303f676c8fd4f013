package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealscout/internal/model"
)

var _ Store = (*Postgres)(nil)

// Postgres implements Store on a pgx connection pool. Transient errors
// (connection loss) are retried with bounded exponential backoff;
// SQL-level errors are permanent and propagate.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection and verifies it with a ping.
func Connect(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() { s.pool.Close() }

// Ping checks connectivity.
func (s *Postgres) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// InitSchema applies the schema (idempotent).
func (s *Postgres) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// withRetry retries fn on transient failures. Postgres-reported errors
// and row-level outcomes are permanent.
func (s *Postgres) withRetry(ctx context.Context, fn func() error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return backoff.Permanent(err)
		}
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		slog.Warn("database operation failed, retrying", "error", err)
		return err
	}, bo)
}

const oppColumns = `id, reddit_id, subreddit, post_type, title, body, author, permalink, url,
	upvotes, comment_count, post_age_hours, relevance_score, engagement_potential,
	matched_keywords, matched_categories, ai_analysis, suggested_response, status,
	slack_message_ts, created_at, reviewed_at, reviewed_by`

func (s *Postgres) Create(ctx context.Context, opp *model.Opportunity) (int64, bool, error) {
	hits, err := json.Marshal(opp.Hits)
	if err != nil {
		return 0, false, err
	}
	cats, err := json.Marshal(opp.Categories)
	if err != nil {
		return 0, false, err
	}
	var analysis []byte
	if opp.AIAnalysis != nil {
		if analysis, err = json.Marshal(opp.AIAnalysis); err != nil {
			return 0, false, err
		}
	}
	status := opp.Status
	if status == "" {
		status = StatusPending
	}

	var id int64
	var created bool
	err = s.withRetry(ctx, func() error {
		row := s.pool.QueryRow(ctx, `
			INSERT INTO opportunities (
				reddit_id, subreddit, post_type, title, body, author, permalink, url,
				upvotes, comment_count, post_age_hours, relevance_score,
				engagement_potential, matched_keywords, matched_categories,
				ai_analysis, suggested_response, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),$9,$10,$11,$12,$13,$14,$15,$16,NULLIF($17,''),$18)
			ON CONFLICT (reddit_id) DO NOTHING
			RETURNING id
		`,
			opp.SourceID, opp.Subreddit, opp.PostType, opp.Title, opp.Body, opp.Author,
			opp.Permalink, opp.ExternalURL, opp.Upvotes, opp.CommentCount, opp.AgeHours,
			opp.RelevanceScore, opp.EngagementTier, hits, cats, analysis,
			opp.SuggestedResponse, status,
		)
		if err := row.Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Duplicate reddit_id: defined no-op, not an error.
				created = false
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	if created {
		slog.Info("opportunity created", "id", id, "reddit_id", opp.SourceID)
	}
	return id, created, nil
}

func (s *Postgres) Exists(ctx context.Context, sourceID string) (bool, error) {
	var exists bool
	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM opportunities WHERE reddit_id = $1)`, sourceID,
		).Scan(&exists)
	})
	return exists, err
}

func (s *Postgres) GetByID(ctx context.Context, id int64) (*model.Opportunity, error) {
	return s.getOne(ctx, `SELECT `+oppColumns+` FROM opportunities WHERE id = $1`, id)
}

func (s *Postgres) GetBySourceID(ctx context.Context, sourceID string) (*model.Opportunity, error) {
	return s.getOne(ctx, `SELECT `+oppColumns+` FROM opportunities WHERE reddit_id = $1`, sourceID)
}

func (s *Postgres) getOne(ctx context.Context, query string, arg any) (*model.Opportunity, error) {
	var opp *model.Opportunity
	err := s.withRetry(ctx, func() error {
		rows, err := s.pool.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			return ErrNotFound
		}
		opp, err = scanOpportunity(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return opp, nil
}

func (s *Postgres) GetPending(ctx context.Context, limit int) ([]model.Opportunity, error) {
	return s.getMany(ctx, `
		SELECT `+oppColumns+` FROM opportunities
		WHERE status = $1
		ORDER BY relevance_score DESC, created_at DESC
		LIMIT $2`, StatusPending, limit)
}

func (s *Postgres) GetByStatus(ctx context.Context, status string, limit int) ([]model.Opportunity, error) {
	return s.getMany(ctx, `
		SELECT `+oppColumns+` FROM opportunities
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`, status, limit)
}

func (s *Postgres) getMany(ctx context.Context, query string, args ...any) ([]model.Opportunity, error) {
	var out []model.Opportunity
	err := s.withRetry(ctx, func() error {
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			opp, err := scanOpportunity(rows)
			if err != nil {
				return err
			}
			out = append(out, *opp)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, id int64, status, actor string) error {
	if !ValidStatus(status) || status == StatusPending || status == StatusExpired {
		return fmt.Errorf("%w: to %q", ErrInvalidTransition, status)
	}
	return s.withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE opportunities
			SET status = $1, reviewed_at = NOW(), reviewed_by = NULLIF($2, '')
			WHERE id = $3
			  AND status <> $1
			  AND status NOT IN ($4, $5, $6)
		`, status, actor, id, StatusExpired, StatusResponded, StatusDismissed)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var current string
			if err := s.pool.QueryRow(ctx, `SELECT status FROM opportunities WHERE id = $1`, id).Scan(&current); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrNotFound
				}
				return err
			}
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
		}
		slog.Info("opportunity status updated", "id", id, "status", status, "actor", actor)
		return nil
	})
}

// UpdateAnalysis attaches the AI enrichment to a stored row.
func (s *Postgres) UpdateAnalysis(ctx context.Context, id int64, analysis *model.Analysis, suggestedResponse string) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	return s.withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE opportunities
			SET ai_analysis = $1, suggested_response = NULLIF($2, '')
			WHERE id = $3
		`, raw, suggestedResponse, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Postgres) UpdateSlackTS(ctx context.Context, id int64, ts string) error {
	return s.withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx,
			`UPDATE opportunities SET slack_message_ts = $1 WHERE id = $2`, ts, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Postgres) MarkResponded(ctx context.Context, id int64, responseText, commentID, postedBy string) error {
	if err := s.UpdateStatus(ctx, id, StatusResponded, postedBy); err != nil {
		return err
	}
	return s.withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO responses (opportunity_id, response_text, reddit_comment_id, posted_by)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		`, id, responseText, commentID, postedBy)
		return err
	})
}

func (s *Postgres) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	var count int64
	err := s.withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE opportunities
			SET status = $1
			WHERE status = $2 AND created_at < $3
		`, StatusExpired, StatusPending, time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		count = tag.RowsAffected()
		return nil
	})
	if err == nil {
		slog.Info("opportunities expired", "count", count)
	}
	return count, err
}

func (s *Postgres) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx, `
			SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE status = 'pending'),
				COUNT(*) FILTER (WHERE status = 'approved'),
				COUNT(*) FILTER (WHERE status = 'rejected'),
				COUNT(*) FILTER (WHERE status = 'responded'),
				COALESCE(AVG(relevance_score), 0)
			FROM opportunities
			WHERE created_at > NOW() - INTERVAL '7 days'
		`).Scan(&st.Total, &st.Pending, &st.Approved, &st.Rejected, &st.Responded, &st.AvgRelevanceScore)
	})
	return st, err
}

// StartScanLog opens a scan_logs row and returns its id.
func (s *Postgres) StartScanLog(ctx context.Context, subreddits []string) (int64, error) {
	var id int64
	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO scan_logs (subreddits) VALUES ($1) RETURNING id`,
			strings.Join(subreddits, ","),
		).Scan(&id)
	})
	return id, err
}

// CompleteScanLog closes a scan_logs row with counters and duration.
func (s *Postgres) CompleteScanLog(ctx context.Context, id int64, postsScanned, found, notified int, errMsg string) error {
	return s.withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, `
			UPDATE scan_logs
			SET completed_at = NOW(),
			    posts_scanned = $1,
			    opportunities_found = $2,
			    notifications_sent = $3,
			    errors = NULLIF($4, ''),
			    duration_seconds = EXTRACT(EPOCH FROM (NOW() - started_at))
			WHERE id = $5
		`, postsScanned, found, notified, errMsg, id)
		return err
	})
}

// scanOpportunity reads one opportunities row in oppColumns order.
func scanOpportunity(rows pgx.Rows) (*model.Opportunity, error) {
	var (
		opp        model.Opportunity
		url        *string
		hits, cats []byte
		analysis   []byte
		suggested  *string
		slackTS    *string
		reviewedBy *string
	)
	err := rows.Scan(
		&opp.ID, &opp.SourceID, &opp.Subreddit, &opp.PostType, &opp.Title, &opp.Body,
		&opp.Author, &opp.Permalink, &url, &opp.Upvotes, &opp.CommentCount,
		&opp.AgeHours, &opp.RelevanceScore, &opp.EngagementTier, &hits, &cats,
		&analysis, &suggested, &opp.Status, &slackTS, &opp.StoredAt,
		&opp.ReviewedAt, &reviewedBy,
	)
	if err != nil {
		return nil, err
	}
	if url != nil {
		opp.ExternalURL = *url
	}
	if suggested != nil {
		opp.SuggestedResponse = *suggested
	}
	if slackTS != nil {
		opp.SlackTS = *slackTS
	}
	if reviewedBy != nil {
		opp.ReviewedBy = *reviewedBy
	}
	if len(hits) > 0 {
		if err := json.Unmarshal(hits, &opp.Hits); err != nil {
			return nil, err
		}
	}
	if len(cats) > 0 {
		if err := json.Unmarshal(cats, &opp.Categories); err != nil {
			return nil, err
		}
	}
	if len(analysis) > 0 {
		opp.AIAnalysis = &model.Analysis{}
		if err := json.Unmarshal(analysis, opp.AIAnalysis); err != nil {
			return nil, err
		}
	}
	return &opp, nil
}
