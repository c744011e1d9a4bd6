package queue

import (
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/repository"
)

const TaskTypeSchedulePost = "schedule:post"

type SchedulePostPayload struct {
	PostID int64 `json:"post_id"`
}

// Queue handles delayed publish tasks. It routes through the same claim
// path as the cron sweep, so a task firing for a post the sweep already
// handled is a harmless no-op.
type Queue struct {
	pr  repository.PostRepository
	pub *job.PublishJob
}

func NewQueue(pr repository.PostRepository, pub *job.PublishJob) *Queue {
	return &Queue{
		pr:  pr,
		pub: pub,
	}
}
