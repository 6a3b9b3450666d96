package models

import (
	"time"
)

type LinkedInAccount struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	LinkedInID     string     `db:"linkedin_id" json:"linkedin_id"`
	Name           string     `db:"name" json:"name"`
	AccountType    string     `db:"account_type" json:"account_type"` // personal, company
	ProfilePicture string     `db:"profile_picture_url" json:"profile_picture"`
	AccessToken    string     `db:"access_token" json:"-"`
	RefreshToken   string     `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	FollowerCount  int        `db:"follower_count" json:"follower_count"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type AccountTokenUpdate struct {
	AccessToken    string
	RefreshToken   string // empty keeps the stored refresh token
	TokenExpiresAt *time.Time
}

const (
	AccountTypePersonal = "personal"
	AccountTypeCompany  = "company"
)

// TokenExpired reports whether the access token is no longer usable at now.
// An account without a recorded expiry is treated as valid.
func (a *LinkedInAccount) TokenExpired(now time.Time) bool {
	return a.TokenExpiresAt != nil && !a.TokenExpiresAt.After(now)
}
