package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomePosted      = "posted"
	OutcomeFailed      = "failed"
	OutcomeRateLimited = "rate_limited"
)

var (
	PublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postpilot_publish_attempts_total",
		Help: "Publish attempts by outcome.",
	}, []string{"outcome"})

	DuePostsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postpilot_due_posts_swept_total",
		Help: "Due posts picked up by the sweep job.",
	})

	ClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postpilot_claim_conflicts_total",
		Help: "Due posts skipped because another invocation claimed them first.",
	})
)
