package domain

import (
	"context"
	"time"
)

// ReviewSource is the upstream data collaborator. FetchPrimary failures are
// fatal to a load; FetchSecondary failures are tolerated by callers.
type ReviewSource interface {
	FetchPrimary(ctx context.Context) (PrimaryPayload, error)
	FetchSecondary(ctx context.Context, placeRef string) (SecondaryPayload, error)
}

// KVStore holds persisted operator state. Get reports ok=false for absent keys.
//
// Update is an atomic read-modify-write of one key, safe across processes
// sharing the store. fn gets the current value (nil when absent) and returns
// the replacement; a nil replacement removes the key. fn may run more than
// once and must not keep side effects from an earlier run.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// OverlayReader is the read side of the overlay store used by the filter engine.
type OverlayReader interface {
	Entry(id string) Overlay
}

type Clock func() time.Time
