package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/maheshrc27/linkpost/configs"
	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

type AuthService interface {
	LoginURL(state string) string
	LoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	oauth   *oauth2.Config
	u       repository.UserRepository
	profile func(ctx context.Context, code string) (*transfer.GoogleUserInfo, error)
}

func NewAuthService(cfg *config.Config, u repository.UserRepository) AuthService {
	s := &authService{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{googleoauth.UserinfoEmailScope, googleoauth.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
		u: u,
	}
	s.profile = s.googleProfile
	return s
}

func (s *authService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	userInfo, err := s.profile(ctx, code)
	if err != nil {
		return 0, err
	}
	if userInfo.Email == "" {
		return 0, errors.New("google account has no email")
	}

	user, isExist, err := s.u.GetByEmail(ctx, userInfo.Email)
	if err != nil {
		return 0, err
	}

	if !isExist {
		userID, err := s.u.Create(ctx, &models.User{
			GoogleID:       userInfo.ID,
			Email:          userInfo.Email,
			Name:           userInfo.Name,
			ProfilePicture: userInfo.Picture,
		})
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
		slog.Info("user signed up", "user_id", userID)
		return userID, nil
	}

	if user.GoogleID == "" {
		user.GoogleID = userInfo.ID
		user.Name = userInfo.Name
		user.ProfilePicture = userInfo.Picture
		if err := s.u.Update(ctx, user); err != nil {
			return 0, err
		}
	}

	return user.ID, nil
}

func (s *authService) googleProfile(ctx context.Context, code string) (*transfer.GoogleUserInfo, error) {
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" || s.oauth.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return nil, err
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(s.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create google oauth service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}

	return &transfer.GoogleUserInfo{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
