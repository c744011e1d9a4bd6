package models

import "time"

// PostingHistory is an append-only audit row, one per publish attempt.
type PostingHistory struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	PostID          int64     `db:"post_id" json:"post_id"`
	AccountID       int64     `db:"account_id" json:"account_id"`
	Success         bool      `db:"success" json:"success"`
	RateLimited     bool      `db:"rate_limited" json:"rate_limited"`
	InstagramPostID string    `db:"instagram_post_id" json:"instagram_post_id,omitempty"`
	ErrorMessage    string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
