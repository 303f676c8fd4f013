package model

import "time"

// KeywordHit records a single phrase match with its per-field counts
// and weighted contribution.
type KeywordHit struct {
	Phrase    string  `json:"phrase"`
	Category  string  `json:"category"`
	TitleHits int     `json:"title_hits"`
	BodyHits  int     `json:"body_hits"`
	Score     float64 `json:"score"`
}

// Analysis is the structured AI enrichment attached to an opportunity.
type Analysis struct {
	RelevanceScore      float64  `json:"relevance_score"`
	EngagementPotential string   `json:"engagement_potential"`
	UserIntent          string   `json:"user_intent"`
	SuggestedAngle      string   `json:"suggested_angle"`
	RedFlags            []string `json:"red_flags"`
	ShouldEngage        bool     `json:"should_engage"`
	Reasoning           string   `json:"reasoning"`
	DraftResponse       string   `json:"draft_response"`
}

// Opportunity is a scored post considered worth human engagement.
// Status values and their transitions are owned by the store package.
type Opportunity struct {
	ID                int64        `json:"id"`
	Post                           // embedded normalized post fields
	RelevanceScore    float64      `json:"relevance_score"`
	EngagementTier    string       `json:"engagement_tier"` // low|medium|high
	Hits              []KeywordHit `json:"matched_keywords"`
	Categories        []string     `json:"matched_categories"`
	Status            string       `json:"status"`
	SlackTS           string       `json:"slack_message_ts,omitempty"`
	AIAnalysis        *Analysis    `json:"ai_analysis,omitempty"`
	SuggestedResponse string       `json:"suggested_response,omitempty"`
	StoredAt          time.Time    `json:"stored_at"`
	ReviewedAt        *time.Time   `json:"reviewed_at,omitempty"`
	ReviewedBy        string       `json:"reviewed_by,omitempty"`
}
