package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dealscout/internal/model"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used for dry runs and tests. It
// implements the same insert-or-ignore and transition semantics as the
// Postgres store.
type Memory struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*model.Opportunity
	bySrc     map[string]int64
	responses []Response
}

func NewMemory() *Memory {
	return &Memory{
		nextID: 1,
		byID:   map[int64]*model.Opportunity{},
		bySrc:  map[string]int64{},
	}
}

func (m *Memory) Create(_ context.Context, opp *model.Opportunity) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.bySrc[opp.SourceID]; dup {
		return 0, false, nil
	}
	stored := *opp
	stored.ID = m.nextID
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	stored.StoredAt = time.Now().UTC()
	m.nextID++
	m.byID[stored.ID] = &stored
	m.bySrc[stored.SourceID] = stored.ID
	return stored.ID, true, nil
}

func (m *Memory) Exists(_ context.Context, sourceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bySrc[sourceID]
	return ok, nil
}

func (m *Memory) GetByID(_ context.Context, id int64) (*model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	opp, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *opp
	return &cp, nil
}

func (m *Memory) GetBySourceID(_ context.Context, sourceID string) (*model.Opportunity, error) {
	m.mu.Lock()
	id, ok := m.bySrc[sourceID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetByID(context.Background(), id)
}

func (m *Memory) GetPending(_ context.Context, limit int) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Opportunity
	for _, opp := range m.byID {
		if opp.Status == StatusPending {
			out = append(out, *opp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].StoredAt.After(out[j].StoredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetByStatus(_ context.Context, status string, limit int) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Opportunity
	for _, opp := range m.byID {
		if opp.Status == status {
			out = append(out, *opp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StoredAt.After(out[j].StoredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id int64, status, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	opp, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if !CanTransition(opp.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, status)
	}
	now := time.Now().UTC()
	opp.Status = status
	opp.ReviewedAt = &now
	opp.ReviewedBy = actor
	return nil
}

func (m *Memory) UpdateAnalysis(_ context.Context, id int64, analysis *model.Analysis, suggestedResponse string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	opp, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	opp.AIAnalysis = analysis
	opp.SuggestedResponse = suggestedResponse
	return nil
}

func (m *Memory) UpdateSlackTS(_ context.Context, id int64, ts string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	opp, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	opp.SlackTS = ts
	return nil
}

// MarkResponded freezes the opportunity and records the reply as a
// separate response row, matching the Postgres store. The suggested
// response stays what the enricher drafted.
func (m *Memory) MarkResponded(ctx context.Context, id int64, responseText, commentID, postedBy string) error {
	if err := m.UpdateStatus(ctx, id, StatusResponded, postedBy); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, Response{
		OpportunityID: id,
		Text:          responseText,
		CommentID:     commentID,
		PostedBy:      postedBy,
		CreatedAt:     time.Now().UTC(),
	})
	return nil
}

// Responses returns the recorded replies for one opportunity.
func (m *Memory) Responses(id int64) []Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Response
	for _, r := range m.responses {
		if r.OpportunityID == id {
			out = append(out, r)
		}
	}
	return out
}

// Backdate shifts a stored opportunity's StoredAt into the past so
// tests can exercise the expiry sweep without sleeping.
func (m *Memory) Backdate(sourceID string, by time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.bySrc[sourceID]; ok {
		m.byID[id].StoredAt = m.byID[id].StoredAt.Add(-by)
	}
}

func (m *Memory) ExpireStale(_ context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var count int64
	for _, opp := range m.byID {
		if opp.Status == StatusPending && opp.StoredAt.Before(cutoff) {
			opp.Status = StatusExpired
			count++
		}
	}
	return count, nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st Stats
	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	var scoreSum float64
	for _, opp := range m.byID {
		if opp.StoredAt.Before(cutoff) {
			continue
		}
		st.Total++
		scoreSum += opp.RelevanceScore
		switch opp.Status {
		case StatusPending:
			st.Pending++
		case StatusApproved:
			st.Approved++
		case StatusRejected:
			st.Rejected++
		case StatusResponded:
			st.Responded++
		}
	}
	if st.Total > 0 {
		st.AvgRelevanceScore = scoreSum / float64(st.Total)
	}
	return st, nil
}
