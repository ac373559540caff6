// Package ratelimit counts requests per client key over a sliding window.
// Limiters are injected into the HTTP layer so a single-node deployment can
// use the in-process ring buffer while multi-node deployments share Redis.
package ratelimit

import (
	"context"
	"time"
)

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
