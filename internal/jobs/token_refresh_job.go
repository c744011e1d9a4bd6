package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	pf service.PlatformService
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, pf service.PlatformService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		pf: pf,
	}
}

// RefreshTokens refreshes every connected account whose token expires
// within the next 30 minutes (or already has). Failed refreshes mark the
// account disconnected inside the platform service.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.pf.RefreshToken(ctx, acc); err != nil {
				slog.Info("unable to refresh token", "account_id", acc.ID, "error", err.Error())
			}
		}(acc)
	}

	wg.Wait()
}
