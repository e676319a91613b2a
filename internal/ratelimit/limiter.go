// Package ratelimit caps how many chat messages a user may send per
// sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more event for key fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Limit    int
	Interval time.Duration
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
