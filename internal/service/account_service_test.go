package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

const testSecret = "test-secret"

func TestAccountCallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	accounts := &fakeAccountRepo{owned: map[int64]int64{}}
	li := &fakeLinkedInOAuth{
		ExchangeFunc: func(ctx context.Context, code string) (*linkedin.Token, error) {
			if code != "auth-code" {
				t.Errorf("unexpected code %s", code)
			}
			return &linkedin.Token{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, nil
		},
		UserInfoFunc: func(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
			return &transfer.LinkedInUserInfo{Sub: "abc", Name: "Ada Lovelace", Picture: "https://media/p.jpg"}, nil
		},
	}

	s := NewAccountService(testSecret, li, accounts).(*accountService)
	s.now = func() time.Time { return now }

	if _, err := s.GetAuthURL(context.Background(), 7); err != nil {
		t.Fatalf("auth url: %v", err)
	}

	acc, err := s.Callback(context.Background(), "auth-code", li.lastState)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if acc.UserID != 7 {
		t.Errorf("expected account for user 7, got %d", acc.UserID)
	}
	if acc.LinkedInID != "abc" || acc.AccountType != models.AccountTypePersonal {
		t.Errorf("unexpected account %+v", acc)
	}
	if acc.TokenExpiresAt == nil || !acc.TokenExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", acc.TokenExpiresAt)
	}
	if len(accounts.upserted) != 1 || accounts.upserted[0].RefreshToken != "refresh" {
		t.Errorf("expected account stored with refresh token, got %+v", accounts.upserted)
	}
}

func TestAccountCallback_BadState(t *testing.T) {
	s := NewAccountService(testSecret, &fakeLinkedInOAuth{}, &fakeAccountRepo{})

	if _, err := s.Callback(context.Background(), "code", "not-a-token"); err == nil {
		t.Error("expected error for invalid state")
	}
	if _, err := s.Callback(context.Background(), "", "state"); err == nil {
		t.Error("expected error for empty code")
	}
}

func TestAccountCallback_ExchangeRejected(t *testing.T) {
	li := &fakeLinkedInOAuth{
		ExchangeFunc: func(ctx context.Context, code string) (*linkedin.Token, error) {
			return nil, &linkedin.AuthError{Message: "exchange code rejected: invalid_grant"}
		},
	}
	accounts := &fakeAccountRepo{}
	s := NewAccountService(testSecret, li, accounts)

	s.GetAuthURL(context.Background(), 7)
	_, err := s.Callback(context.Background(), "code", li.lastState)
	if linkedin.KindOf(err) != linkedin.KindAuth {
		t.Errorf("expected auth error, got %v", err)
	}
	if len(accounts.upserted) != 0 {
		t.Error("expected nothing stored")
	}
}

func TestDeleteAccount(t *testing.T) {
	accounts := &fakeAccountRepo{owned: map[int64]int64{10: 1}}
	s := NewAccountService(testSecret, &fakeLinkedInOAuth{}, accounts)

	if err := s.Delete(context.Background(), 2, 10); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if err := s.Delete(context.Background(), 1, 10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(accounts.removed) != 1 {
		t.Errorf("expected account removed, got %v", accounts.removed)
	}
}
