package dedup

import (
	"context"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
)

// Store remembers which ticket notifications have already been sent.
type Store interface {
	// Seen reports whether key was recorded before. A store that has never
	// been written to reports false for every key.
	Seen(ctx context.Context, key domain.NotificationKey) (bool, error)
	// Record marks key as sent.
	Record(ctx context.Context, key domain.NotificationKey) error
}

// Claimer is implemented by stores that can check and record a key in one
// atomic step.
type Claimer interface {
	Claim(ctx context.Context, key domain.NotificationKey) (bool, error)
}
