package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates work across replicas (Redis). The worker
// takes a per-conversation lock before generating a title so the same
// thread is never titled twice.
type DistributedLock interface {
	// Acquire attempts to take a named lock for the given TTL.
	// Returns true if taken, false if already held elsewhere.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release drops a named lock if this instance holds it
	Release(ctx context.Context, name string) error
}
