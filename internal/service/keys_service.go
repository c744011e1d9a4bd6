package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

type ApiKeyService interface {
	Create(ctx context.Context, userID int64) error
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{k: k}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64) error {
	keys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if len(keys) > 4 {
		err = errors.New("only 5 API keys can be created")
		slog.Info(err.Error())
		return err
	}

	key, err := utils.GenerateRandomKey(16)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("error generating API key")
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		ApiKey: key,
	}

	if _, err := s.k.Create(ctx, apiKey); err != nil {
		return fmt.Errorf("error saving API key")
	}
	return nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, exists, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errors.New("key doesn't exist")
	}
	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	apiKeys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting API keys")
	}
	return apiKeys, nil
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("user id is not valid")
		slog.Info(err.Error())
		return err
	}

	if keyID == 0 {
		err = errors.New("key id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.k.CheckByUserID(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("key doesn't exist")
		slog.Info(err.Error())
		return err
	}

	return s.k.Remove(ctx, keyID)
}
