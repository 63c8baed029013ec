// Package tokenstore persists the single opaque session token that survives
// process restarts. Exactly one token is held at a time, under one
// well-known slot; a stored token is never trusted until the directory
// revalidates it.
package tokenstore

import "context"

// Store is the durable single-slot token persistence contract.
// Error Contract: Load returns ("", nil) when no token is stored; Clear on an
// empty slot is a no-op.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
