package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postpilot/internal/models"
)

func (q *Queue) HandleSchedulePostTask(ctx context.Context, task *asynq.Task) error {
	var payload SchedulePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	post, err := q.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		// Deleted between scheduling and firing.
		slog.Info("scheduled post no longer exists", "post_id", payload.PostID)
		return nil
	}
	if post.Status != models.PostStatusScheduled {
		slog.Info("scheduled post already handled", "post_id", post.ID, "status", post.Status)
		return nil
	}

	q.pub.PublishOne(ctx, post)
	return nil
}
