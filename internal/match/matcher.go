package match

import (
	"log/slog"
	"math"
	"regexp"
	"sort"

	"dealscout/internal/config"
	"dealscout/internal/model"
)

const (
	titleWeight = 1.5
	bodyWeight  = 1.0
	// A category can be designated at construction to multiply its
	// contribution. May name a category absent from the taxonomy, in
	// which case it never fires.
	bonusMultiplier = 1.3
	// Ten weighted hits saturate the normalized score.
	saturationHits = 10.0
	// Each distinct category adds 0.1, capped at 0.3.
	categoryBonusStep = 0.1
	categoryBonusCap  = 0.3
)

// Result is the outcome of matching a post against the taxonomy.
// Matched is true iff Hits is non-empty.
type Result struct {
	Matched    bool
	Score      float64
	Hits       []model.KeywordHit
	Categories []string
}

type pattern struct {
	re     *regexp.Regexp
	phrase string
}

// Matcher matches post text against a weighted keyword taxonomy.
type Matcher struct {
	keywords      config.Keywords
	bonusCategory string
	compiled      map[string][]pattern
	categories    []string // sorted, for deterministic iteration
}

// New compiles the taxonomy into per-category patterns. bonusCategory
// names the category whose hits are multiplied; it may be empty or
// unknown.
func New(keywords config.Keywords, bonusCategory string) *Matcher {
	m := &Matcher{
		keywords:      keywords,
		bonusCategory: bonusCategory,
		compiled:      make(map[string][]pattern, len(keywords)),
	}
	for category := range keywords {
		m.compile(category)
	}
	m.refreshCategories()
	return m
}

// compile builds case-insensitive whole-phrase patterns for one
// category. Word boundaries keep "whole" from matching inside
// "wholesaler".
func (m *Matcher) compile(category string) {
	phrases := m.keywords[category]
	ps := make([]pattern, 0, len(phrases))
	for _, phrase := range phrases {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
		ps = append(ps, pattern{re: re, phrase: phrase})
	}
	m.compiled[category] = ps
}

func (m *Matcher) refreshCategories() {
	m.categories = m.categories[:0]
	for c := range m.compiled {
		m.categories = append(m.categories, c)
	}
	sort.Strings(m.categories)
}

// Match scores body and title against all categories. Title hits weigh
// 1.5x body hits; the score is normalized to 0..1 with a diversity
// bonus for distinct categories.
func (m *Matcher) Match(body, title string) Result {
	var (
		hits       []model.KeywordHit
		matchedCat = map[string]bool{}
		total      float64
	)
	for _, category := range m.categories {
		for _, p := range m.compiled[category] {
			titleHits := len(p.re.FindAllStringIndex(title, -1))
			bodyHits := len(p.re.FindAllStringIndex(body, -1))
			if titleHits == 0 && bodyHits == 0 {
				continue
			}
			score := float64(titleHits)*titleWeight + float64(bodyHits)*bodyWeight
			if category == m.bonusCategory {
				score *= bonusMultiplier
			}
			hits = append(hits, model.KeywordHit{
				Phrase:    p.phrase,
				Category:  category,
				TitleHits: titleHits,
				BodyHits:  bodyHits,
				Score:     round2(score),
			})
			matchedCat[category] = true
			total += score
		}
	}

	normalized := math.Min(total/saturationHits, 1.0)
	bonus := math.Min(float64(len(matchedCat))*categoryBonusStep, categoryBonusCap)
	final := math.Min(normalized+bonus, 1.0)

	categories := make([]string, 0, len(matchedCat))
	for c := range matchedCat {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return Result{
		Matched:    len(hits) > 0,
		Score:      round2(final),
		Hits:       hits,
		Categories: categories,
	}
}

// QuickMatch reports whether any phrase matches, without scoring.
func (m *Matcher) QuickMatch(body, title string) bool {
	combined := title + " " + body
	for _, category := range m.categories {
		for _, p := range m.compiled[category] {
			if p.re.MatchString(combined) {
				return true
			}
		}
	}
	return false
}

// AddKeywords appends phrases to a category at runtime and recompiles
// that category only. Already-computed results are unaffected.
func (m *Matcher) AddKeywords(category string, phrases []string) {
	m.keywords[category] = append(m.keywords[category], phrases...)
	m.compile(category)
	m.refreshCategories()
	slog.Info("custom keywords added", "category", category, "count", len(phrases))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
