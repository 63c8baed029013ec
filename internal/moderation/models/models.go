package models

import (
	"time"

	"github.com/google/uuid"
)

// ImageRecord is one property photo awaiting or having received moderation.
// Approved is tri-state and is the single authoritative status: nil means
// pending, true approved, false rejected. Nothing else is ever used to infer
// status. Review fields are populated only once reviewed; RejectionReason
// only on rejections.
type ImageRecord struct {
	ID           uuid.UUID
	PropertyID   uuid.UUID
	ImageURL     string
	ThumbnailURL *string
	Caption      *string
	Primary      bool
	DisplayOrder int
	CreatedAt    time.Time

	Approved        *bool
	ReviewedAt      *time.Time
	ReviewedBy      *uuid.UUID
	RejectionReason *string
	Comment         *string

	Property PropertySummary
}

// PropertySummary carries the denormalized listing fields the dashboard
// shows next to an image. The repository owns this join.
type PropertySummary struct {
	Title      string
	Address    string
	City       string
	OwnerName  string
	OwnerEmail string
	OwnerPhone string
}

// IsPending reports whether the image has not been reviewed yet.
func (r *ImageRecord) IsPending() bool {
	return r.Approved == nil
}

// IsApproved reports whether the image was approved.
func (r *ImageRecord) IsApproved() bool {
	return r.Approved != nil && *r.Approved
}

// Stats are independent counts over the approval tri-state. Total is the sum
// of the three; a small skew under concurrent writes is acceptable, this is
// a display metric.
type Stats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// Filter selects which images a listing returns.
type Filter string

const (
	FilterPending  Filter = "pending"
	FilterApproved Filter = "approved"
	FilterAll      Filter = "all"
)

// ParseFilter maps a query string value to a Filter, defaulting to pending.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterApproved:
		return FilterApproved
	case FilterAll:
		return FilterAll
	default:
		return FilterPending
	}
}
