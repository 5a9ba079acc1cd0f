package ratelimit

import "context"

// Pacer holds callers back until a call to scope fits the configured rate.
// It never rejects a call outright.
type Pacer interface {
	Wait(ctx context.Context, scope string) error
}
