package model

import "time"

// Post represents a single normalized forum post from a source.
type Post struct {
	SourceID     string    `json:"source_id"`
	Subreddit    string    `json:"subreddit"`
	PostType     string    `json:"post_type"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Author       string    `json:"author"`
	Permalink    string    `json:"permalink"`
	ExternalURL  string    `json:"external_url,omitempty"`
	Upvotes      int       `json:"upvotes"`
	CommentCount int       `json:"comment_count"`
	AgeHours     float64   `json:"age_hours"`
	CreatedAt    time.Time `json:"created_at"`
	Flair        string    `json:"flair,omitempty"`
	NSFW         bool      `json:"nsfw"`
	Locked       bool      `json:"locked"`
	Archived     bool      `json:"archived"`
}
