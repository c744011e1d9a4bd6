package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/instagram"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

// PlatformService manages the connected Instagram account: OAuth connect,
// refresh, listing and disconnect. In mock mode the injected Authorizer
// fabricates a demo account instead of redirecting to the platform.
type PlatformService interface {
	GetAuthURL(state string) string
	HandleCallback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, acc *models.SocialAccount) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	cfg  config.Config
	sa   repository.SocialAccountRepository
	auth instagram.Authorizer
}

func NewPlatformService(cfg config.Config, sa repository.SocialAccountRepository, auth instagram.Authorizer) PlatformService {
	return &platformService{
		cfg:  cfg,
		sa:   sa,
		auth: auth,
	}
}

func (s *platformService) GetAuthURL(state string) string {
	return s.auth.AuthCodeURL(state)
}

// HandleCallback completes the connect flow: exchanges the code for a
// long-lived token and stores the account with the token encrypted.
func (s *platformService) HandleCallback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}
	if userID == 0 {
		err := errors.New("user not found")
		slog.Info(err.Error())
		return err
	}

	token, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := s.auth.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encryptedToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformInstagram,
		AccountID:       userInfo.UserID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Username,
		ProfilePicture:  userInfo.ProfilePicture,
		AccessToken:     encryptedToken,
		RefreshToken:    encryptedToken,
		TokenExpiresAt:  token.ExpiresAt,
		Connected:       true,
	}

	if _, err := s.sa.Create(ctx, nil, accountInfo); err != nil {
		return err
	}

	return nil
}

// RefreshToken extends the account's token. When refresh fails the
// account flips to disconnected so the posting service stops before any
// publish call; the user has to reconnect.
func (s *platformService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := s.auth.Refresh(ctx, accessToken)
	if err != nil {
		if discErr := s.sa.SetConnected(ctx, acc.ID, false); discErr != nil {
			slog.Error("failed to mark account disconnected", "account_id", acc.ID, "error", discErr.Error())
		}
		return fmt.Errorf("token refresh failed, account disconnected: %w", err)
	}

	encryptedToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.sa.SetToken(ctx, acc.ID, encryptedToken, token.ExpiresAt)
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	accounts, err := s.sa.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing social accounts")
	}
	return accounts, nil
}

func (s *platformService) Delete(ctx context.Context, userID, accountID int64) error {
	exists, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !exists {
		err = errors.New("account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	return s.sa.Remove(ctx, accountID)
}
