package models

import "time"

type Post struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	AccountID      *int64     `db:"account_id" json:"account_id,omitempty"`
	Content        string     `db:"content" json:"content"`
	Prompt         *string    `db:"prompt" json:"prompt,omitempty"`
	Tone           *string    `db:"tone" json:"tone,omitempty"`
	Length         *string    `db:"length" json:"length,omitempty"`
	Hashtags       *string    `db:"hashtags" json:"hashtags,omitempty"`
	MediaURL       *string    `db:"media_url" json:"media_url,omitempty"`
	Status         string     `db:"status" json:"status"` // draft, scheduled, published, failed
	LinkedInPostID *string    `db:"linkedin_post_id" json:"linkedin_post_id,omitempty"`
	ScheduledFor   *time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at,omitempty"`
	ErrorMessage   *string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PostUpdate carries the columns to change; nil fields are left untouched.
type PostUpdate struct {
	Content        *string
	Hashtags       *string
	AccountID      *int64
	Status         *string
	LinkedInPostID *string
	ScheduledFor   *time.Time
	PublishedAt    *time.Time
	ErrorMessage   *string

	ClearErrorMessage bool
}

// Text returns the content as it is published, hashtags appended on their own line.
func (p *Post) Text() string {
	if p.Hashtags == nil || *p.Hashtags == "" {
		return p.Content
	}
	return p.Content + "\n\n" + *p.Hashtags
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusFailed:
		return true
	}
	return false
}
