package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/pkg/utils"
)

const maxApiKeys = 5

var (
	ErrKeyLimit    = invalidf("Only %d API Keys can be created.", maxApiKeys)
	ErrKeyNotFound = errors.New("Key doesn't exist")
)

type ApiKeyService interface {
	Create(ctx context.Context, userID int64, name string) (*models.ApiKey, error)
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{
		k: k,
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64, name string) (*models.ApiKey, error) {
	count, err := s.k.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if count >= maxApiKeys {
		slog.Info(ErrKeyLimit.Error(), "user_id", userID)
		return nil, ErrKeyLimit
	}

	key, err := utils.GenerateRandomKey(24)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("Error generating API key")
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		Name:   strings.TrimSpace(name),
		ApiKey: key,
	}

	apiKey.ID, err = s.k.Create(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("Error saving API key")
	}
	return apiKey, nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, isExist, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}

	if !isExist {
		return 0, ErrKeyNotFound
	}

	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	apiKeys, err := s.k.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting API keys")
	}
	return apiKeys, nil
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	if keyID == 0 {
		err := invalidf("KeyID is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.k.CheckByUserID(ctx, keyID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		slog.Info(ErrKeyNotFound.Error(), "key_id", keyID)
		return ErrKeyNotFound
	}

	return s.k.Remove(ctx, keyID)
}
