package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

func EnqueuePost(asynqClient *asynq.Client, payload SchedulePostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSchedulePost, taskPayload)

	if _, err := asynqClient.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		return err
	}

	slog.Info("publish task scheduled", "post_id", payload.PostID, "delay", delay.String())
	return nil
}
