package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr repository.PostRepository
	sa repository.SocialAccountRepository
}

func NewPostService(pr repository.PostRepository, sa repository.SocialAccountRepository) PostService {
	return &postService{
		pr: pr,
		sa: sa,
	}
}

// CreatePost stores a scheduled post and returns its id plus the delay
// until it is due, which the caller uses to enqueue the publish task.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}
	if pc.Caption == "" {
		err := errors.New("caption cannot be empty")
		slog.Info(err.Error())
		return 0, 0, err
	}
	if pc.MediaURL == "" {
		err := errors.New("media url cannot be empty")
		slog.Info(err.Error())
		return 0, 0, err
	}

	scheduledTime, err := time.Parse("2006-01-02T15:04", pc.ScheduledTime)
	if err != nil {
		err = fmt.Errorf("invalid scheduled time format: %w", err)
		slog.Error(err.Error())
		return 0, 0, err
	}

	acc, err := s.sa.GetByUserPlatform(ctx, userID, models.PlatformInstagram)
	if err != nil {
		return 0, 0, fmt.Errorf("error checking instagram account: %w", err)
	}
	if acc == nil || !acc.Connected {
		err := errors.New("no connected instagram account")
		slog.Info(err.Error())
		return 0, 0, err
	}

	post := models.Post{
		UserID:        userID,
		Caption:       pc.Caption,
		MediaURL:      pc.MediaURL,
		ScheduledTime: scheduledTime,
		Status:        models.PostStatusScheduled,
	}

	postID, err := s.pr.Create(ctx, nil, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	delay := time.Until(scheduledTime)
	if delay < 0 {
		delay = 0
	}

	return postID, delay, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post")
	}

	return nil
}
