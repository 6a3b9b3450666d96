package models

import (
	"testing"
	"time"
)

func TestPostText(t *testing.T) {
	tags := "#golang #linkedin"
	empty := ""

	tests := []struct {
		name     string
		post     Post
		expected string
	}{
		{"no hashtags", Post{Content: "Hello"}, "Hello"},
		{"empty hashtags", Post{Content: "Hello", Hashtags: &empty}, "Hello"},
		{"with hashtags", Post{Content: "Hello", Hashtags: &tags}, "Hello\n\n#golang #linkedin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.post.Text(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidPostStatus(t *testing.T) {
	for _, s := range []string{PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusFailed} {
		if !ValidPostStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if ValidPostStatus("posted") {
		t.Error("expected posted to be invalid")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name     string
		expiry   *time.Time
		expected bool
	}{
		{"no expiry", nil, false},
		{"past", &past, true},
		{"exactly now", &now, true},
		{"future", &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := LinkedInAccount{TokenExpiresAt: tt.expiry}
			if got := acc.TokenExpired(now); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
