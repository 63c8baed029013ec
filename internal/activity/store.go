package activity

import (
	"context"

	dErrors "nyumba/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "activity entry not found")

// Store is the append-only persistence contract for the audit trail.
// List returns entries most recent first.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
}
