// Package store defines the moderation repository collaborator: the
// relational data store whose stored procedures own image approval state.
package store

import (
	"context"

	"github.com/google/uuid"

	"nyumba/internal/moderation/models"
	dErrors "nyumba/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "image not found")

// StatusCounts are the three independent counts over the approval tri-state.
type StatusCounts struct {
	Pending  int
	Approved int
	Rejected int
}

// Repository is the authoritative store for ImageRecord state.
//
// Error Contract: write methods return ErrNotFound when the image does not
// exist and wrapped CodeInternal errors for transport failures. Reject
// deletes the record outright; a rejected image is a delete-with-audit-trail,
// not a persisted state.
type Repository interface {
	// ListPending returns unreviewed images joined with their property
	// summary, oldest first (FIFO review queue).
	ListPending(ctx context.Context) ([]models.ImageRecord, error)
	// ListReviewed returns reviewed images, most recently reviewed first.
	ListReviewed(ctx context.Context) ([]models.ImageRecord, error)
	// Approve stamps approval=true and the reviewer on the record in place.
	Approve(ctx context.Context, imageID, adminID uuid.UUID, comment *string) error
	// Reject stamps reviewer and reason, then deletes the record.
	Reject(ctx context.Context, imageID, adminID uuid.UUID, reason string, comment *string) error
	// BulkApprove sets approval=true, stamps the reviewer and review time,
	// and clears any stale rejection reason on all ids in one batched write.
	BulkApprove(ctx context.Context, imageIDs []uuid.UUID, adminID uuid.UUID) error
	// CountByStatus runs the three status counts. No atomicity across them.
	CountByStatus(ctx context.Context) (StatusCounts, error)
}
