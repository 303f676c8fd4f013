package store

// Schema is the Postgres schema applied by `dealscout initdb`.
const Schema = `
CREATE TABLE IF NOT EXISTS opportunities (
    id                   BIGSERIAL PRIMARY KEY,
    reddit_id            TEXT NOT NULL UNIQUE,
    subreddit            TEXT NOT NULL,
    post_type            TEXT NOT NULL DEFAULT 'post',
    title                TEXT NOT NULL,
    body                 TEXT NOT NULL DEFAULT '',
    author               TEXT NOT NULL DEFAULT '[deleted]',
    permalink            TEXT NOT NULL,
    url                  TEXT,
    upvotes              INTEGER NOT NULL DEFAULT 0,
    comment_count        INTEGER NOT NULL DEFAULT 0,
    post_age_hours       DOUBLE PRECISION NOT NULL DEFAULT 0,
    relevance_score      DOUBLE PRECISION NOT NULL,
    engagement_potential TEXT NOT NULL,
    matched_keywords     JSONB NOT NULL DEFAULT '[]',
    matched_categories   JSONB NOT NULL DEFAULT '[]',
    ai_analysis          JSONB,
    suggested_response   TEXT,
    status               TEXT NOT NULL DEFAULT 'pending',
    slack_message_ts     TEXT,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    reviewed_at          TIMESTAMPTZ,
    reviewed_by          TEXT
);

CREATE INDEX IF NOT EXISTS idx_opportunities_status
    ON opportunities (status, relevance_score DESC);
CREATE INDEX IF NOT EXISTS idx_opportunities_created_at
    ON opportunities (created_at);

CREATE TABLE IF NOT EXISTS responses (
    id                BIGSERIAL PRIMARY KEY,
    opportunity_id    BIGINT NOT NULL REFERENCES opportunities (id),
    response_text     TEXT NOT NULL,
    reddit_comment_id TEXT,
    posted_by         TEXT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scan_logs (
    id                  BIGSERIAL PRIMARY KEY,
    subreddits          TEXT NOT NULL,
    started_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at        TIMESTAMPTZ,
    posts_scanned       INTEGER NOT NULL DEFAULT 0,
    opportunities_found INTEGER NOT NULL DEFAULT 0,
    notifications_sent  INTEGER NOT NULL DEFAULT 0,
    errors              TEXT,
    duration_seconds    DOUBLE PRECISION
);
`
