package job

import (
	"context"
	"log/slog"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/metrics"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

// PublishJob picks up due posts and drives them through the posting
// service: claim, publish, record the outcome, append a history row. It
// is the only code that moves a post out of the scheduled state.
type PublishJob struct {
	cfg config.Config
	pr  repository.PostRepository
	ph  repository.PostingHistoryRepository
	sa  repository.SocialAccountRepository
	ps  service.PostingService
}

func NewPublishJob(
	cfg config.Config,
	pr repository.PostRepository,
	ph repository.PostingHistoryRepository,
	sa repository.SocialAccountRepository,
	ps service.PostingService) *PublishJob {
	return &PublishJob{
		cfg: cfg,
		pr:  pr,
		ph:  ph,
		sa:  sa,
		ps:  ps,
	}
}

// Run is the cron entry point.
func (j *PublishJob) Run() {
	if err := j.Sweep(context.Background()); err != nil {
		slog.Error("sweep failed", "error", err.Error())
	}
}

// Sweep drains every due post, oldest first, up to the configured batch
// size. Posts are processed serially; concurrent publishes to the same
// account would defeat the client's request pacing.
func (j *PublishJob) Sweep(ctx context.Context) error {
	posts, err := j.pr.ListDue(ctx, time.Now(), j.cfg.SweepBatchSize)
	if err != nil {
		return err
	}

	for _, post := range posts {
		metrics.DuePostsSwept.Inc()
		j.PublishOne(ctx, post)
	}
	return nil
}

// PublishOne claims the post and publishes it. A failed claim means a
// concurrent invocation (cron tick, manual post-now, stale queue task)
// already owns the post; it is skipped without an error.
func (j *PublishJob) PublishOne(ctx context.Context, post *models.Post) {
	claimed, err := j.pr.ClaimForProcessing(ctx, post.ID)
	if err != nil {
		slog.Error("failed to claim post", "post_id", post.ID, "error", err.Error())
		return
	}
	if !claimed {
		metrics.ClaimConflicts.Inc()
		slog.Info("post already claimed, skipping", "post_id", post.ID)
		return
	}

	result := j.ps.PostImage(ctx, post.UserID, post.MediaURL, post.Caption)

	switch {
	case result.Success:
		if err := j.pr.MarkPosted(ctx, post.ID, result.PostID, result.Permalink); err != nil {
			slog.Error("failed to mark post as posted", "post_id", post.ID, "error", err.Error())
		}
		metrics.PublishAttempts.WithLabelValues(metrics.OutcomePosted).Inc()
		slog.Info("post published", "post_id", post.ID, "instagram_post_id", result.PostID)

	case result.RateLimited:
		// Back to scheduled so the next sweep retries instead of
		// burying the post in failed.
		if err := j.pr.Release(ctx, post.ID); err != nil {
			slog.Error("failed to release rate-limited post", "post_id", post.ID, "error", err.Error())
		}
		metrics.PublishAttempts.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		slog.Info("publish rate limited, post deferred", "post_id", post.ID)

	default:
		if err := j.pr.MarkFailed(ctx, post.ID, result.Error); err != nil {
			slog.Error("failed to mark post as failed", "post_id", post.ID, "error", err.Error())
		}
		metrics.PublishAttempts.WithLabelValues(metrics.OutcomeFailed).Inc()
		slog.Info("publish failed", "post_id", post.ID, "error", result.Error)
	}

	j.recordHistory(ctx, post, result.Success, result.RateLimited, result.PostID, result.Error)
}

func (j *PublishJob) recordHistory(ctx context.Context, post *models.Post, success, rateLimited bool, instagramPostID, errorMessage string) {
	var accountID int64
	if acc, err := j.sa.GetByUserPlatform(ctx, post.UserID, models.PlatformInstagram); err == nil && acc != nil {
		accountID = acc.ID
	}

	history := models.PostingHistory{
		UserID:          post.UserID,
		PostID:          post.ID,
		AccountID:       accountID,
		Success:         success,
		RateLimited:     rateLimited,
		InstagramPostID: instagramPostID,
		ErrorMessage:    errorMessage,
	}
	if _, err := j.ph.Create(ctx, &history); err != nil {
		slog.Error("failed to record posting history", "post_id", post.ID, "error", err.Error())
	}
}
