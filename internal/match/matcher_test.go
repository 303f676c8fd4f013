package match

import (
	"testing"

	"dealscout/internal/config"
)

func newTestMatcher() *Matcher {
	return New(config.DefaultKeywords(), "miami_specific")
}

func TestMatchFloridaWholesalePost(t *testing.T) {
	m := newTestMatcher()
	body := "Looking for off market deals in Florida, specifically Tampa area"
	title := "Florida wholesale deals?"

	res := m.Match(body, title)
	if !res.Matched {
		t.Fatal("expected a match")
	}
	if len(res.Hits) == 0 {
		t.Fatal("matched result must carry keyword hits")
	}
	if res.Score <= 0.3 {
		t.Errorf("score = %v, want > 0.3", res.Score)
	}
	wantCats := map[string]bool{"florida_markets": false, "wholesaling": false}
	for _, c := range res.Categories {
		if _, ok := wantCats[c]; ok {
			wantCats[c] = true
		}
	}
	for c, seen := range wantCats {
		if !seen {
			t.Errorf("missing category %s in %v", c, res.Categories)
		}
	}
}

func TestMatchUnrelatedPost(t *testing.T) {
	m := newTestMatcher()
	res := m.Match("Random unrelated post about cooking", "Best pasta recipe")
	if res.Matched {
		t.Errorf("unexpected match: %+v", res.Hits)
	}
	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
	if len(res.Hits) != 0 {
		t.Errorf("hits = %v, want empty", res.Hits)
	}
}

func TestMatchedIffHitsNonEmpty(t *testing.T) {
	m := newTestMatcher()
	for _, tc := range []struct{ body, title string }{
		{"wholesale deal in tampa", ""},
		{"", "motivated seller here"},
		{"nothing relevant at all", "still nothing"},
		{"", ""},
	} {
		res := m.Match(tc.body, tc.title)
		if res.Matched != (len(res.Hits) > 0) {
			t.Errorf("Match(%q, %q): matched=%v with %d hits", tc.body, tc.title, res.Matched, len(res.Hits))
		}
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	m := newTestMatcher()
	lower := m.Match("looking for a motivated seller in miami", "")
	upper := m.Match("LOOKING FOR A MOTIVATED SELLER IN MIAMI", "")
	if lower.Score != upper.Score {
		t.Errorf("case changed score: %v vs %v", lower.Score, upper.Score)
	}
	if !upper.Matched {
		t.Error("uppercase text did not match")
	}
}

func TestNoSubstringMatches(t *testing.T) {
	m := New(config.Keywords{"test": {"whole"}}, "")
	if res := m.Match("the wholesaler found a buyer", ""); res.Matched {
		t.Errorf("phrase matched inside a larger word: %+v", res.Hits)
	}
	if res := m.Match("the whole thing", ""); !res.Matched {
		t.Error("whole-word occurrence did not match")
	}
}

func TestTitleWeighting(t *testing.T) {
	m := New(config.Keywords{"test": {"wholesale"}}, "")
	inTitle := m.Match("", "wholesale")
	inBody := m.Match("wholesale", "")
	// 1.5/10 vs 1.0/10, each plus the 0.1 single-category bonus.
	if inTitle.Score != 0.25 {
		t.Errorf("title hit score = %v, want 0.25", inTitle.Score)
	}
	if inBody.Score != 0.2 {
		t.Errorf("body hit score = %v, want 0.2", inBody.Score)
	}
}

func TestBonusCategoryMultiplier(t *testing.T) {
	kw := config.Keywords{"miami_specific": {"brickell"}}
	with := New(kw, "miami_specific").Match("condo in brickell", "")
	without := New(kw, "").Match("condo in brickell", "")
	if with.Hits[0].Score != 1.3 {
		t.Errorf("bonus hit score = %v, want 1.3", with.Hits[0].Score)
	}
	if without.Hits[0].Score != 1.0 {
		t.Errorf("plain hit score = %v, want 1.0", without.Hits[0].Score)
	}
	// An inactive bonus category naming no real category never fires.
	inactive := New(config.Keywords{"other": {"brickell"}}, "miami_specific").Match("condo in brickell", "")
	if inactive.Hits[0].Score != 1.0 {
		t.Errorf("inactive bonus changed score: %v", inactive.Hits[0].Score)
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	body := "motivated seller with a vacant property in tampa, need advice on comps"
	a := newTestMatcher().Match(body, "wholesale question")
	for i := 0; i < 10; i++ {
		b := newTestMatcher().Match(body, "wholesale question")
		if a.Score != b.Score {
			t.Fatalf("score varies across constructions: %v vs %v", a.Score, b.Score)
		}
		if len(a.Hits) != len(b.Hits) {
			t.Fatalf("hit count varies: %d vs %d", len(a.Hits), len(b.Hits))
		}
	}
}

func TestScoreCappedAtOne(t *testing.T) {
	m := newTestMatcher()
	body := ""
	for i := 0; i < 30; i++ {
		body += "motivated seller wholesale tampa miami foreclosure probate need advice "
	}
	res := m.Match(body, "wholesale wholesale wholesale")
	if res.Score > 1.0 {
		t.Errorf("score = %v, want <= 1.0", res.Score)
	}
}

func TestQuickMatch(t *testing.T) {
	m := newTestMatcher()
	if !m.QuickMatch("any motivated seller leads?", "") {
		t.Error("QuickMatch missed a keyword")
	}
	if m.QuickMatch("nothing to see here", "plain title") {
		t.Error("QuickMatch false positive")
	}
}

func TestAddKeywords(t *testing.T) {
	m := New(config.Keywords{"deal_types": {"probate"}}, "")
	if m.QuickMatch("seller financing available", "") {
		t.Fatal("phrase matched before being added")
	}
	m.AddKeywords("deal_types", []string{"seller financing"})
	if !m.QuickMatch("seller financing available", "") {
		t.Error("added phrase did not match")
	}
	// New category created on demand.
	m.AddKeywords("creative", []string{"subject to"})
	res := m.Match("buying subject to the existing mortgage", "")
	if !res.Matched || res.Categories[0] != "creative" {
		t.Errorf("new category not matched: %+v", res)
	}
}
