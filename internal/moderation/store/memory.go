package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nyumba/internal/moderation/models"
)

// MemoryRepository keeps image records in memory for tests/dev. It mirrors
// the stored-procedure semantics, including deletion-on-reject.
type MemoryRepository struct {
	mu     sync.RWMutex
	images map[uuid.UUID]*models.ImageRecord
	now    func() time.Time
}

// NewMemory constructs an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		images: make(map[uuid.UUID]*models.ImageRecord),
		now:    time.Now,
	}
}

// WithClock injects a time source for tests.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now
	return r
}

// Put inserts or replaces a record. Used by seeding and tests.
func (r *MemoryRepository) Put(img models.ImageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := img
	r.images[img.ID] = &copied
}

func (r *MemoryRepository) ListPending(_ context.Context) ([]models.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ImageRecord, 0)
	for _, img := range r.images {
		if img.Approved == nil {
			out = append(out, *img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) ListReviewed(_ context.Context) ([]models.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ImageRecord, 0)
	for _, img := range r.images {
		if img.Approved != nil {
			out = append(out, *img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := time.Time{}, time.Time{}
		if out[i].ReviewedAt != nil {
			ti = *out[i].ReviewedAt
		}
		if out[j].ReviewedAt != nil {
			tj = *out[j].ReviewedAt
		}
		return ti.After(tj)
	})
	return out, nil
}

func (r *MemoryRepository) Approve(_ context.Context, imageID, adminID uuid.UUID, comment *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, ok := r.images[imageID]
	if !ok {
		return ErrNotFound
	}

	approved := true
	reviewedAt := r.now()
	img.Approved = &approved
	img.ReviewedAt = &reviewedAt
	img.ReviewedBy = &adminID
	img.RejectionReason = nil
	img.Comment = comment
	return nil
}

func (r *MemoryRepository) Reject(_ context.Context, imageID, adminID uuid.UUID, reason string, comment *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[imageID]; !ok {
		return ErrNotFound
	}
	// Rejection is a delete-with-audit-trail: the record does not survive.
	delete(r.images, imageID)
	return nil
}

func (r *MemoryRepository) BulkApprove(_ context.Context, imageIDs []uuid.UUID, adminID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	approved := true
	reviewedAt := r.now()
	for _, id := range imageIDs {
		img, ok := r.images[id]
		if !ok {
			continue
		}
		found = true
		img.Approved = &approved
		img.ReviewedAt = &reviewedAt
		img.ReviewedBy = &adminID
		img.RejectionReason = nil
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context) (StatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts StatusCounts
	for _, img := range r.images {
		switch {
		case img.Approved == nil:
			counts.Pending++
		case *img.Approved:
			counts.Approved++
		default:
			counts.Rejected++
		}
	}
	return counts, nil
}
