package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"dealscout/internal/model"
)

// Enricher produces a qualitative analysis for an opportunity. A
// failed analysis must degrade to the heuristic scores, never block
// the pipeline.
type Enricher interface {
	Analyze(ctx context.Context, opp *model.Opportunity) (*model.Analysis, error)
}

const analysisPrompt = `You are an expert at identifying Reddit posts in wholesale real estate communities that present opportunities for genuine engagement. You represent a Florida off-market real estate deal platform.

CRITICAL DM/COMMENT RULES (from proven outreach data):
- Goal of message 1 is to get message 2, NOT to close
- NO pitching, NO links, NO "I help X do Y"
- Reference something SPECIFIC they said
- Show you understand their problem
- Ask ONE question only
- Sound like a helpful community member, not a salesperson
- Volume is a trap. Relevance is the game.

Analyze this Reddit post:

Subreddit: r/%s
Title: %s
Content: %s
Post Stats: %d upvotes | %d comments | Posted %.1f hours ago
Matched Keywords: %s

Evaluate relevance to Florida wholesale/off-market deals, engagement potential, the user's actual intent, a specific angle based on Florida market experience, reasons NOT to engage, and a draft response that references something specific from their post, asks ONE clarifying question, contains no links and no pitch, and is 2-4 sentences max.

Respond in this exact JSON format:
{
    "relevance_score": 0.0,
    "engagement_potential": "high|medium|low",
    "user_intent": "string describing what they're looking for",
    "suggested_angle": "specific approach to take",
    "red_flags": ["list of concerns, or empty"],
    "should_engage": true,
    "reasoning": "1-2 sentence explanation",
    "draft_response": "The actual response to post - SHORT, one question, no pitch"
}

Important: Only respond with valid JSON, no additional text.`

// OpenAIClient implements Enricher using OpenAI Chat Completions.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	if cfg.Model == "" {
		panic("OpenAI model must be specified")
	}
	return &OpenAIClient{client: c, model: cfg.Model}
}

// Analyze asks the model for a structured analysis. On any failure it
// returns the heuristic fallback alongside the error so callers can
// proceed.
func (o *OpenAIClient) Analyze(ctx context.Context, opp *model.Opportunity) (*model.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	body := opp.Body
	if len([]rune(body)) > 2000 {
		body = string([]rune(body)[:2000])
	}
	phrases := make([]string, 0, 5)
	for i, h := range opp.Hits {
		if i >= 5 {
			break
		}
		phrases = append(phrases, h.Phrase)
	}
	prompt := fmt.Sprintf(analysisPrompt,
		opp.Subreddit, opp.Title, body,
		opp.Upvotes, opp.CommentCount, opp.AgeHours,
		strings.Join(phrases, ", "))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	if err != nil {
		slog.Error("analysis request failed", "reddit_id", opp.SourceID, "error", err)
		return FallbackAnalysis(opp, err), err
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("openai: empty response")
		return FallbackAnalysis(opp, err), err
	}

	analysis, err := parseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Error("analysis parse failed", "reddit_id", opp.SourceID, "error", err)
		return FallbackAnalysis(opp, err), err
	}
	slog.Info("post analyzed",
		"reddit_id", opp.SourceID,
		"relevance_score", analysis.RelevanceScore,
		"should_engage", analysis.ShouldEngage)
	return analysis, nil
}

// parseAnalysis decodes the model output, tolerating fenced code
// blocks and surrounding prose.
func parseAnalysis(content string) (*model.Analysis, error) {
	try := func(s string) (*model.Analysis, bool) {
		var a model.Analysis
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			return nil, false
		}
		return &a, true
	}
	if a, ok := try(content); ok {
		return a, nil
	}
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			if a, ok := try(strings.TrimSpace(rest[:end])); ok {
				return a, nil
			}
		}
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			if a, ok := try(strings.TrimSpace(rest[:end])); ok {
				return a, nil
			}
		}
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		if a, ok := try(content[start : end+1]); ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no valid JSON in model response")
}

// FallbackAnalysis carries the heuristic scores forward when
// enrichment fails. ShouldEngage is false so nobody acts on a draft
// that was never written.
func FallbackAnalysis(opp *model.Opportunity, cause error) *model.Analysis {
	return &model.Analysis{
		RelevanceScore:      opp.RelevanceScore,
		EngagementPotential: opp.EngagementTier,
		UserIntent:          "unknown",
		RedFlags:            []string{"Analysis failed"},
		ShouldEngage:        false,
		Reasoning:           fmt.Sprintf("Analysis error: %v", cause),
	}
}

// seriousFlags disqualify engagement regardless of score.
var seriousFlags = []string{"legal", "complaint", "lawsuit", "scam", "spam"}

// ShouldEngage gates the draft-response surface on the analysis. It
// never gates persistence or notification.
func ShouldEngage(a *model.Analysis, minScore float64) bool {
	if a == nil || !a.ShouldEngage {
		return false
	}
	if a.RelevanceScore < minScore {
		return false
	}
	for _, flag := range a.RedFlags {
		lower := strings.ToLower(flag)
		for _, serious := range seriousFlags {
			if strings.Contains(lower, serious) {
				return false
			}
		}
	}
	return true
}
