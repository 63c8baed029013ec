package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"nyumba/internal/moderation/models"
	dErrors "nyumba/pkg/domain-errors"
)

const imageColumns = `id, property_id, image_url, thumbnail_url, caption, is_primary, display_order, created_at,
	admin_approved, admin_reviewed_at, admin_reviewed_by, admin_rejection_reason, admin_comment,
	property_title, property_address, property_city, owner_name, owner_email, owner_phone`

// PostgresRepository reads through the review views and writes through the
// stored procedures that own approval state.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed repository.
func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]models.ImageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+imageColumns+`
		   FROM pending_image_reviews
		  ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending images: %w", err)
	}
	defer rows.Close()
	return scanImages(rows)
}

func (r *PostgresRepository) ListReviewed(ctx context.Context) ([]models.ImageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+imageColumns+`
		   FROM image_review_history
		  ORDER BY admin_reviewed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reviewed images: %w", err)
	}
	defer rows.Close()
	return scanImages(rows)
}

func (r *PostgresRepository) Approve(ctx context.Context, imageID, adminID uuid.UUID, comment *string) error {
	if _, err := r.db.ExecContext(ctx,
		`SELECT approve_property_image($1, $2, $3)`, imageID, adminID, comment); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "approve_property_image call failed")
	}
	return nil
}

func (r *PostgresRepository) Reject(ctx context.Context, imageID, adminID uuid.UUID, reason string, comment *string) error {
	if _, err := r.db.ExecContext(ctx,
		`SELECT reject_property_image($1, $2, $3, $4)`, imageID, adminID, reason, comment); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "reject_property_image call failed")
	}
	return nil
}

func (r *PostgresRepository) BulkApprove(ctx context.Context, imageIDs []uuid.UUID, adminID uuid.UUID) error {
	if len(imageIDs) == 0 {
		return nil
	}

	ids := make([]string, len(imageIDs))
	for i, id := range imageIDs {
		ids[i] = id.String()
	}

	// One batched UPDATE; clearing the rejection reason guards against a
	// record that was once stamped and then re-queued upstream. The reviewer
	// stamp keeps bulk decisions attributable and sortable in the history
	// view, same as single approvals.
	result, err := r.db.ExecContext(ctx,
		`UPDATE property_images
		    SET admin_approved = TRUE,
		        admin_reviewed_at = now(),
		        admin_reviewed_by = $2,
		        admin_rejection_reason = NULL
		  WHERE id = ANY($1::uuid[])`, ids, adminID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "bulk approve failed")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var counts StatusCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT
		    COUNT(*) FILTER (WHERE admin_approved IS NULL),
		    COUNT(*) FILTER (WHERE admin_approved IS TRUE),
		    COUNT(*) FILTER (WHERE admin_approved IS FALSE)
		   FROM property_images`).
		Scan(&counts.Pending, &counts.Approved, &counts.Rejected)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count images by status: %w", err)
	}
	return counts, nil
}

func scanImages(rows *sql.Rows) ([]models.ImageRecord, error) {
	var images []models.ImageRecord
	for rows.Next() {
		var img models.ImageRecord
		var reviewedBy sql.Null[uuid.UUID]
		if err := rows.Scan(
			&img.ID,
			&img.PropertyID,
			&img.ImageURL,
			&img.ThumbnailURL,
			&img.Caption,
			&img.Primary,
			&img.DisplayOrder,
			&img.CreatedAt,
			&img.Approved,
			&img.ReviewedAt,
			&reviewedBy,
			&img.RejectionReason,
			&img.Comment,
			&img.Property.Title,
			&img.Property.Address,
			&img.Property.City,
			&img.Property.OwnerName,
			&img.Property.OwnerEmail,
			&img.Property.OwnerPhone,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("scan image record: %w", err)
		}
		if reviewedBy.Valid {
			id := reviewedBy.V
			img.ReviewedBy = &id
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image records: %w", err)
	}
	return images, nil
}
