package reddit

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const listingHTML = `
<div id="siteTable">
  <div class="thing over18" data-fullname="t3_aaa111" data-subreddit="FloridaRealEstate"
       data-permalink="/r/FloridaRealEstate/comments/aaa111/title/" data-url="https://example.com/news">
    <a class="title">Cash buyer looking for Naples inventory</a>
    <a class="author">investor1</a>
    <div class="score unvoted" title="42">42</div>
    <a class="comments">7 comments</a>
    <time datetime="2026-08-26T10:00:00+00:00"></time>
  </div>
  <div class="thing promoted" data-fullname="t3_ad0001">
    <a class="title">Sponsored thing</a>
  </div>
  <div class="thing" data-fullname="t2_user99">
    <a class="title">Not a post row</a>
  </div>
  <div class="thing" data-fullname="t3_bbb222" data-permalink="/r/FloridaRealEstate/comments/bbb222/x/"
       data-url="/r/FloridaRealEstate/comments/bbb222/x/">
    <a class="title">Self post with sparse metadata</a>
    <a class="comments">comment</a>
  </div>
</div>`

func TestExtractThings(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	posts := extractThings(doc, "FloridaRealEstate", 25)
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2 (promoted and non-post rows skipped)", len(posts))
	}

	p := posts[0]
	if p.SourceID != "aaa111" {
		t.Errorf("source id = %s", p.SourceID)
	}
	if p.Upvotes != 42 || p.CommentCount != 7 {
		t.Errorf("votes/comments = %d/%d, want 42/7", p.Upvotes, p.CommentCount)
	}
	if !p.NSFW {
		t.Error("over18 class not mapped to NSFW")
	}
	if p.ExternalURL != "https://example.com/news" {
		t.Errorf("external url = %s", p.ExternalURL)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created at = %v", p.CreatedAt)
	}

	sparse := posts[1]
	if sparse.Author != "[deleted]" {
		t.Errorf("missing author should normalize to [deleted], got %s", sparse.Author)
	}
	if sparse.ExternalURL != "" {
		t.Errorf("self permalink url should clear external url, got %s", sparse.ExternalURL)
	}
}

func TestExtractThingsLimit(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	posts := extractThings(doc, "FloridaRealEstate", 1)
	if len(posts) != 1 {
		t.Fatalf("limit not applied: got %d posts", len(posts))
	}
}
