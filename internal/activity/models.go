package activity

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies an admin action in the audit trail.
type Type string

const (
	TypeImageApproved     Type = "image_approved"
	TypeImageRejected     Type = "image_rejected"
	TypeBulkImageApproved Type = "bulk_image_approved"
	TypeAdminLogin        Type = "admin_login"
	TypePinCreated        Type = "pin_created"
)

// Entry is one append-only audit record of an admin action. Metadata carries
// denormalized display fields (property id/title, image url, rejection
// reason) so the trail reads without joins. Entries are never mutated or
// deleted by this system.
type Entry struct {
	ID          uuid.UUID
	AdminID     uuid.UUID
	Type        Type
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
