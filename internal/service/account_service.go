package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/internal/transfer"
	"github.com/maheshrc27/linkpost/pkg/utils"
)

const oauthStateTTL = 10 * time.Minute

type LinkedInOAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*linkedin.Token, error)
	UserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error)
}

type AccountService interface {
	GetAuthURL(ctx context.Context, userID int64) (string, error)
	Callback(ctx context.Context, code, state string) (*models.LinkedInAccount, error)
	List(ctx context.Context, userID int64) ([]*models.LinkedInAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	secretKey string
	li        LinkedInOAuth
	ar        repository.LinkedInAccountRepository
	now       func() time.Time
}

func NewAccountService(secretKey string, li LinkedInOAuth, ar repository.LinkedInAccountRepository) AccountService {
	return &accountService{
		secretKey: secretKey,
		li:        li,
		ar:        ar,
		now:       time.Now,
	}
}

// GetAuthURL returns the LinkedIn consent URL. The state is a short lived
// token naming the user so the callback can attach the account to them.
func (s *accountService) GetAuthURL(ctx context.Context, userID int64) (string, error) {
	state, err := utils.GenerateToken(s.secretKey, strconv.FormatInt(userID, 10), oauthStateTTL)
	if err != nil {
		return "", err
	}
	return s.li.AuthCodeURL(state), nil
}

func (s *accountService) Callback(ctx context.Context, code, state string) (*models.LinkedInAccount, error) {
	if code == "" || state == "" {
		err := invalidf("code or state is empty")
		slog.Info(err.Error())
		return nil, err
	}

	claims, err := utils.ValidateToken(s.secretKey, state)
	if err != nil {
		return nil, invalidf("invalid or expired state")
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || userID == 0 {
		return nil, invalidf("invalid state")
	}

	tok, err := s.li.Exchange(ctx, code)
	if err != nil {
		slog.Warn("linkedin code exchange failed", "user_id", userID, "error", err)
		return nil, err
	}

	info, err := s.li.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		slog.Warn("linkedin user info failed", "user_id", userID, "error", err)
		return nil, err
	}

	acc := &models.LinkedInAccount{
		UserID:         userID,
		LinkedInID:     info.Sub,
		Name:           info.Name,
		AccountType:    models.AccountTypePersonal,
		ProfilePicture: info.Picture,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
		IsActive:       true,
	}
	if tok.ExpiresIn > 0 {
		expiry := s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		acc.TokenExpiresAt = &expiry
	}

	id, err := s.ar.Upsert(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("error saving linkedin account: %w", err)
	}
	acc.ID = id

	slog.Info("linkedin account connected", "user_id", userID, "account_id", id)
	return acc, nil
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.LinkedInAccount, error) {
	accounts, err := s.ar.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting accounts")
	}
	return accounts, nil
}

// Delete disconnects an account. Its posts stay, without an account.
func (s *accountService) Delete(ctx context.Context, userID, accountID int64) error {
	if accountID == 0 {
		err := invalidf("account id is not valid")
		slog.Info(err.Error())
		return err
	}

	ok, err := s.ar.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccountNotFound
	}

	return s.ar.Remove(ctx, accountID)
}
