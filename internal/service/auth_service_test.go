package service

import (
	"context"
	"testing"

	config "github.com/maheshrc27/linkpost/configs"
	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

func newTestAuthService(users *fakeUserRepo, info *transfer.GoogleUserInfo) *authService {
	s := NewAuthService(&config.Config{}, users).(*authService)
	s.profile = func(ctx context.Context, code string) (*transfer.GoogleUserInfo, error) {
		return info, nil
	}
	return s
}

func TestLoginCallback_NewUser(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*models.User{}}
	s := newTestAuthService(users, &transfer.GoogleUserInfo{ID: "g-1", Email: "ada@example.com", Name: "Ada"})

	userID, err := s.LoginCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userID != 50 {
		t.Errorf("expected created user id, got %d", userID)
	}
	if len(users.created) != 1 || users.created[0].GoogleID != "g-1" {
		t.Errorf("unexpected created users %+v", users.created)
	}
}

func TestLoginCallback_ExistingUser(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*models.User{
		"ada@example.com": {ID: 9, Email: "ada@example.com"},
	}}
	s := newTestAuthService(users, &transfer.GoogleUserInfo{ID: "g-1", Email: "ada@example.com", Name: "Ada"})

	userID, err := s.LoginCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userID != 9 {
		t.Errorf("expected existing user 9, got %d", userID)
	}
	if len(users.created) != 0 {
		t.Error("expected no new user")
	}
	if len(users.updated) != 1 || users.updated[0].GoogleID != "g-1" {
		t.Errorf("expected google id linked, got %+v", users.updated)
	}
}

func TestLoginCallback_EmptyCode(t *testing.T) {
	s := newTestAuthService(&fakeUserRepo{}, nil)

	if _, err := s.LoginCallback(context.Background(), ""); err == nil {
		t.Error("expected error for empty code")
	}
}
