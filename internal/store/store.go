package store

import (
	"context"
	"errors"
	"time"

	"dealscout/internal/model"
)

// Opportunity statuses. An opportunity starts pending; expired is set
// only by the sweep and only from pending.
const (
	StatusPending   = "pending"
	StatusReviewed  = "reviewed"
	StatusDismissed = "dismissed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusResponded = "responded"
	StatusExpired   = "expired"
)

var (
	ErrNotFound          = errors.New("opportunity not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusDismissed, StatusApproved,
		StatusRejected, StatusResponded, StatusExpired:
		return true
	}
	return false
}

// frozen statuses admit no further transitions.
func frozen(s string) bool {
	return s == StatusExpired || s == StatusResponded || s == StatusDismissed
}

// CanTransition reports whether a reviewer action may move an
// opportunity from one status to another. Expired is reachable only
// through ExpireStale, never through UpdateStatus.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if from == to || frozen(from) {
		return false
	}
	if to == StatusPending || to == StatusExpired {
		return false
	}
	return true
}

// Store is the opportunity persistence contract. Create is
// insert-or-ignore keyed on the post's source id: a duplicate reports
// created=false with no error, and is safe under concurrent calls for
// the same source id.
type Store interface {
	Create(ctx context.Context, opp *model.Opportunity) (id int64, created bool, err error)
	Exists(ctx context.Context, sourceID string) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Opportunity, error)
	GetBySourceID(ctx context.Context, sourceID string) (*model.Opportunity, error)
	GetPending(ctx context.Context, limit int) ([]model.Opportunity, error)
	GetByStatus(ctx context.Context, status string, limit int) ([]model.Opportunity, error)
	UpdateStatus(ctx context.Context, id int64, status, actor string) error
	UpdateAnalysis(ctx context.Context, id int64, analysis *model.Analysis, suggestedResponse string) error
	UpdateSlackTS(ctx context.Context, id int64, ts string) error
	MarkResponded(ctx context.Context, id int64, responseText, commentID, postedBy string) error
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}

// Response is one outreach reply recorded against an opportunity.
type Response struct {
	OpportunityID int64
	Text          string
	CommentID     string
	PostedBy      string
	CreatedAt     time.Time
}

// Stats summarizes the last seven days of opportunities.
type Stats struct {
	Total             int64   `json:"total"`
	Pending           int64   `json:"pending"`
	Approved          int64   `json:"approved"`
	Rejected          int64   `json:"rejected"`
	Responded         int64   `json:"responded"`
	AvgRelevanceScore float64 `json:"avg_relevance_score"`
}
