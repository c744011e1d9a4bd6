package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/instagram"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

// PostingService publishes one image to the user's connected Instagram
// account. It never touches post rows or history itself; marking posts
// and logging attempts belongs to the dispatcher that called it.
type PostingService interface {
	PostImage(ctx context.Context, userID int64, imageURL, caption string) *transfer.PostResult
}

// ClientFactory builds a publishing client bound to one account's
// credential. Injected so tests swap in a double without any network.
type ClientFactory func(cfg config.Config, accountID, accessToken string) instagram.Client

type postingService struct {
	cfg       config.Config
	sa        repository.SocialAccountRepository
	newClient ClientFactory

	mu      sync.Mutex
	clients map[string]*cachedClient
}

// cachedClient pins one client per account so its pacing state spans
// publishes. The token is kept alongside; a rotated token rebuilds the
// client.
type cachedClient struct {
	token  string
	client instagram.Client
}

func NewPostingService(cfg config.Config, sa repository.SocialAccountRepository) PostingService {
	return NewPostingServiceWithFactory(cfg, sa, instagram.NewClient)
}

func NewPostingServiceWithFactory(cfg config.Config, sa repository.SocialAccountRepository, factory ClientFactory) PostingService {
	return &postingService{
		cfg:       cfg,
		sa:        sa,
		newClient: factory,
		clients:   make(map[string]*cachedClient),
	}
}

// clientFor returns the account's long-lived client. Building a fresh
// client per publish would reset the rate limiter between attempts and
// let a sweep of due posts blow through the per-minute budget.
func (s *postingService) clientFor(accountID, accessToken string) instagram.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[accountID]; ok && c.token == accessToken {
		return c.client
	}
	client := s.newClient(s.cfg, accountID, accessToken)
	s.clients[accountID] = &cachedClient{token: accessToken, client: client}
	return client
}

func failure(msg string) *transfer.PostResult {
	return &transfer.PostResult{Success: false, Error: msg}
}

func (s *postingService) PostImage(ctx context.Context, userID int64, imageURL, caption string) *transfer.PostResult {
	if imageURL == "" {
		return failure("image url is required")
	}
	if caption == "" {
		return failure("caption is required")
	}

	acc, err := s.sa.GetByUserPlatform(ctx, userID, models.PlatformInstagram)
	if err != nil {
		return failure(fmt.Sprintf("error looking up instagram account: %v", err))
	}
	if acc == nil || !acc.Connected {
		return failure("no connected instagram account")
	}

	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Error("failed to decrypt access token", "account_id", acc.ID, "error", err.Error())
		return failure("stored credential is unreadable")
	}

	client := s.clientFor(acc.AccountID, accessToken)

	if !client.ValidateToken(ctx) {
		return failure("access token is invalid or expired, reconnect the account")
	}

	containerID, err := client.CreateMediaContainer(ctx, imageURL, caption)
	if err != nil {
		return s.publishFailure("creating media container", err)
	}

	postID, err := client.PublishMediaContainer(ctx, containerID)
	if err != nil {
		return s.publishFailure("publishing media container", err)
	}

	permalink, err := client.GetPermalink(ctx, postID)
	if err != nil {
		// Best effort only; the post is live either way.
		slog.Info("permalink fetch failed", "post_id", postID, "error", err.Error())
		permalink = ""
	}

	return &transfer.PostResult{
		Success:   true,
		PostID:    postID,
		Permalink: permalink,
	}
}

func (s *postingService) publishFailure(op string, err error) *transfer.PostResult {
	slog.Info("publish attempt failed", "op", op, "error", err.Error())
	return &transfer.PostResult{
		Success:     false,
		RateLimited: instagram.IsRateLimited(err),
		Error:       fmt.Sprintf("%s: %v", op, err),
	}
}
