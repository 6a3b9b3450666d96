package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

var ErrUserNotFound = errors.New("user doesn't exist")

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*transfer.UserInfo, error)
	RemoveUser(ctx context.Context, userID int64) error
}

type userService struct {
	u  repository.UserRepository
	ar repository.LinkedInAccountRepository
	pr repository.PostRepository
}

func NewUserService(u repository.UserRepository, ar repository.LinkedInAccountRepository, pr repository.PostRepository) UserService {
	return &userService{
		u:  u,
		ar: ar,
		pr: pr,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*transfer.UserInfo, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !isExist {
		slog.Info("user not found", "user_id", id)
		return nil, ErrUserNotFound
	}

	accounts, err := s.ar.ListByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	posts, err := s.pr.ListByUserID(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	counts := map[string]int{
		models.PostStatusDraft:     0,
		models.PostStatusScheduled: 0,
		models.PostStatusPublished: 0,
		models.PostStatusFailed:    0,
	}
	for _, p := range posts {
		counts[p.Status]++
	}

	return &transfer.UserInfo{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
		Accounts:       len(accounts),
		Posts:          counts,
	}, nil
}

// RemoveUser deletes the user. Accounts, posts and keys go with it.
func (s *userService) RemoveUser(ctx context.Context, userID int64) error {
	if err := s.u.Remove(ctx, userID); err != nil {
		return fmt.Errorf("failed to remove user %d: %w", userID, err)
	}
	slog.Info("user removed", "user_id", userID)
	return nil
}
