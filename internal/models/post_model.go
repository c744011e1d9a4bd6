package models

import "time"

type Post struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	Caption         string     `db:"caption" json:"caption"`
	MediaURL        string     `db:"media_url" json:"media_url"`
	ScheduledTime   time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Status          string     `db:"status" json:"status"` // scheduled, processing, posted, failed
	InstagramPostID string     `db:"instagram_post_id" json:"instagram_post_id,omitempty"`
	Permalink       string     `db:"permalink" json:"permalink,omitempty"`
	ErrorMessage    string     `db:"error_message" json:"error_message,omitempty"`
	PostedAt        *time.Time `db:"posted_at" json:"posted_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusScheduled  = "scheduled"
	PostStatusProcessing = "processing"
	PostStatusPosted     = "posted"
	PostStatusFailed     = "failed"
)
