package ratelimit

import "context"

// RateLimiter bounds how often a caller identified by key may act.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
