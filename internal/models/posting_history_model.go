package models

import "time"

// PostingHistory is one row per platform attempt, kept in Postgres as an audit log.
type PostingHistory struct {
	ID             int64     `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	PostID         string    `db:"post_id" json:"post_id"`
	Platform       string    `db:"platform" json:"platform"`
	ExternalPostID string    `db:"external_post_id" json:"external_post_id"`
	URL            string    `db:"url" json:"url"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	Trigger        string    `db:"trigger" json:"trigger"` // scheduled, immediate
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
