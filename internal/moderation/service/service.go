// Package service implements the moderation workflow over the image
// repository: listing queues, approving and rejecting images, and keeping
// the query cache and audit trail consistent with every decision.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ActivityRecorder
//go:generate mockgen -source=../store/store.go -destination=mocks/repository_mock.go -package=mocks Repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nyumba/internal/activity"
	"nyumba/internal/assets"
	"nyumba/internal/cache"
	"nyumba/internal/moderation/models"
	"nyumba/internal/moderation/store"
	"nyumba/internal/platform/metrics"
	"nyumba/internal/platform/middleware"
	domainerrors "nyumba/pkg/domain-errors"
)

// Cache operation names. Every cached read and every invalidation refers to
// one of these.
const (
	OpPendingList  = "pendingList"
	OpReviewedList = "reviewedList"
	OpStats        = "stats"
	OpActivity     = "activity"
)

// PendingKey is the cache key for the pending review queue.
func PendingKey() cache.Key { return cache.NewKey(OpPendingList) }

// ReviewedKey is the cache key for the review history.
func ReviewedKey() cache.Key { return cache.NewKey(OpReviewedList) }

// StatsKey is the cache key for the status counts.
func StatsKey() cache.Key { return cache.NewKey(OpStats) }

// ActivityKey is the cache key for the recent activity feed at a given
// page size.
func ActivityKey(limit int) cache.Key {
	return cache.NewKey(OpActivity, strconv.Itoa(limit))
}

// ActivityRecorder appends to and reads the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry) error
	List(ctx context.Context, limit int) ([]activity.Entry, error)
}

// Controller coordinates moderation decisions. All reads go through the
// query cache; all writes invalidate exactly the cache entries the decision
// affects and append one audit entry.
type Controller struct {
	repo     store.Repository
	cache    *cache.Cache
	recorder ActivityRecorder
	remover  assets.Remover
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	pendingTTL  time.Duration
	reviewedTTL time.Duration
	statsTTL    time.Duration
	activityTTL time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics attaches moderation counters.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = mx
	}
}

// WithRemover enables storage cleanup after rejections.
func WithRemover(remover assets.Remover) Option {
	return func(c *Controller) {
		c.remover = remover
	}
}

// WithTracer overrides the tracer. Tests pass a noop provider's tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

// WithCacheTTLs overrides how long each cached query stays fresh.
func WithCacheTTLs(pending, stats time.Duration) Option {
	return func(c *Controller) {
		c.pendingTTL = pending
		c.reviewedTTL = pending
		c.statsTTL = stats
		c.activityTTL = stats
	}
}

// New constructs a Controller. The acting admin is taken from each call's
// context, stamped there by the session middleware.
func New(repo store.Repository, qc *cache.Cache, recorder ActivityRecorder, opts ...Option) *Controller {
	c := &Controller{
		repo:        repo,
		cache:       qc,
		recorder:    recorder,
		logger:      slog.Default(),
		pendingTTL:  30 * time.Second,
		reviewedTTL: 30 * time.Second,
		statsTTL:    60 * time.Second,
		activityTTL: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("nyumba/moderation")
	}
	return c
}

// ListPending returns unreviewed images, oldest first.
func (c *Controller) ListPending(ctx context.Context) ([]models.ImageRecord, error) {
	return cache.Fetch(ctx, c.cache, PendingKey(), c.pendingTTL, c.repo.ListPending)
}

// ListReviewed returns reviewed images, most recent decision first.
func (c *Controller) ListReviewed(ctx context.Context) ([]models.ImageRecord, error) {
	return cache.Fetch(ctx, c.cache, ReviewedKey(), c.reviewedTTL, c.repo.ListReviewed)
}

// ListFiltered returns images matching the filter. The approved and all
// views are derived from the two cached queues rather than cached on their
// own, so invalidation stays a closed set.
func (c *Controller) ListFiltered(ctx context.Context, filter models.Filter) ([]models.ImageRecord, error) {
	switch filter {
	case models.FilterApproved:
		reviewed, err := c.ListReviewed(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.ImageRecord, 0, len(reviewed))
		for _, img := range reviewed {
			if img.IsApproved() {
				out = append(out, img)
			}
		}
		return out, nil
	case models.FilterAll:
		pending, err := c.ListPending(ctx)
		if err != nil {
			return nil, err
		}
		reviewed, err := c.ListReviewed(ctx)
		if err != nil {
			return nil, err
		}
		return append(pending, reviewed...), nil
	default:
		return c.ListPending(ctx)
	}
}

// Stats returns the moderation counters.
func (c *Controller) Stats(ctx context.Context) (models.Stats, error) {
	return cache.Fetch(ctx, c.cache, StatsKey(), c.statsTTL, c.fetchStats)
}

func (c *Controller) fetchStats(ctx context.Context) (models.Stats, error) {
	counts, err := c.repo.CountByStatus(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return models.Stats{
		Pending:  counts.Pending,
		Approved: counts.Approved,
		Rejected: counts.Rejected,
		Total:    counts.Pending + counts.Approved + counts.Rejected,
	}, nil
}

// StartBackgroundRefresh schedules the periodic refetch of the hot queries
// so reads stay warm between invalidations. The reviewed list is refreshed
// by write invalidation only. The fetchers store the same types the read
// paths expect.
func (c *Controller) StartBackgroundRefresh(r *cache.Refresher, pending, stats, activityFeed time.Duration) {
	r.Every(pending, PendingKey(), func(ctx context.Context) (any, error) {
		return c.repo.ListPending(ctx)
	})
	r.Every(stats, StatsKey(), func(ctx context.Context) (any, error) {
		return c.fetchStats(ctx)
	})
	r.Every(activityFeed, ActivityKey(50), func(ctx context.Context) (any, error) {
		return c.recorder.List(ctx, 50)
	})
}

// Activity returns the most recent audit entries.
func (c *Controller) Activity(ctx context.Context, limit int) ([]activity.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return cache.Fetch(ctx, c.cache, ActivityKey(limit), c.activityTTL, func(ctx context.Context) ([]activity.Entry, error) {
		return c.recorder.List(ctx, limit)
	})
}

// Approve marks one image approved by the current admin, with an optional
// reviewer comment.
func (c *Controller) Approve(ctx context.Context, imageID uuid.UUID, comment *string) error {
	adminID, err := c.requireAdmin(ctx)
	if err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "moderation.approve",
		trace.WithAttributes(attribute.String("image_id", imageID.String())))
	defer span.End()

	img, err := c.findImage(ctx, imageID)
	if err != nil {
		return spanError(span, err)
	}

	if err := c.repo.Approve(ctx, imageID, adminID, comment); err != nil {
		return spanError(span, domainerrors.Wrap(err, domainerrors.CodeInternal, "approving image"))
	}

	if c.metrics != nil {
		c.metrics.IncrementImagesApproved()
	}

	c.record(ctx, activity.Entry{
		AdminID:     adminID,
		Type:        activity.TypeImageApproved,
		Description: fmt.Sprintf("Approved image for %q", img.Property.Title),
		Metadata:    c.imageMetadata(img, comment),
	})

	c.cache.Invalidate(PendingKey(), ReviewedKey(), StatsKey())
	c.cache.InvalidateOp(OpActivity)
	return nil
}

// Reject removes one image. The rejection reason is mandatory and is
// validated before anything is touched; a rejected image's record and its
// stored object are both deleted, the reason surviving only in the audit
// trail.
func (c *Controller) Reject(ctx context.Context, imageID uuid.UUID, reason string, comment *string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domainerrors.New(domainerrors.CodeMissingRejectionReason, "rejection reason is required")
	}

	adminID, err := c.requireAdmin(ctx)
	if err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "moderation.reject",
		trace.WithAttributes(attribute.String("image_id", imageID.String())))
	defer span.End()

	img, err := c.findImage(ctx, imageID)
	if err != nil {
		return spanError(span, err)
	}

	// Storage cleanup goes first: once the record is deleted there is
	// nothing left to retry the cleanup against. A cleanup failure never
	// blocks the decision.
	c.removeStoredObject(ctx, img.ImageURL)

	if err := c.repo.Reject(ctx, imageID, adminID, reason, comment); err != nil {
		return spanError(span, domainerrors.Wrap(err, domainerrors.CodeInternal, "rejecting image"))
	}

	if c.metrics != nil {
		c.metrics.IncrementImagesRejected()
	}

	meta := c.imageMetadata(img, comment)
	meta["rejectionReason"] = reason
	c.record(ctx, activity.Entry{
		AdminID:     adminID,
		Type:        activity.TypeImageRejected,
		Description: fmt.Sprintf("Rejected image for %q", img.Property.Title),
		Metadata:    meta,
	})

	c.cache.Invalidate(PendingKey(), ReviewedKey(), StatsKey())
	c.cache.InvalidateOp(OpActivity)
	return nil
}

// BulkApprove approves every image in the batch as one action with a single
// audit entry. The stats cache is deliberately left alone; it catches up on
// its refresh interval.
func (c *Controller) BulkApprove(ctx context.Context, imageIDs []uuid.UUID) error {
	if len(imageIDs) == 0 {
		return domainerrors.New(domainerrors.CodeInvalidInput, "no images selected")
	}

	adminID, err := c.requireAdmin(ctx)
	if err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "moderation.bulk_approve",
		trace.WithAttributes(attribute.Int("batch_size", len(imageIDs))))
	defer span.End()

	if err := c.repo.BulkApprove(ctx, imageIDs, adminID); err != nil {
		return spanError(span, domainerrors.Wrap(err, domainerrors.CodeInternal, "bulk approving images"))
	}

	if c.metrics != nil {
		c.metrics.ObserveBulkApproval(len(imageIDs))
	}

	ids := make([]string, len(imageIDs))
	for i, id := range imageIDs {
		ids[i] = id.String()
	}
	c.record(ctx, activity.Entry{
		AdminID:     adminID,
		Type:        activity.TypeBulkImageApproved,
		Description: fmt.Sprintf("Bulk approved %d images", len(imageIDs)),
		Metadata: map[string]any{
			"imageIds": ids,
			"count":    len(imageIDs),
		},
	})

	c.cache.Invalidate(PendingKey(), ReviewedKey())
	c.cache.InvalidateOp(OpActivity)
	return nil
}

// requireAdmin resolves the acting admin from the call context. Decisions
// are attributed to the admin whose token authenticated this request, not to
// whichever admin authenticated last.
func (c *Controller) requireAdmin(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.GetAdminID(ctx)
	if raw == "" {
		return uuid.Nil, domainerrors.New(domainerrors.CodeUnauthenticated, "no authenticated admin")
	}
	adminID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domainerrors.New(domainerrors.CodeUnauthenticated, "no authenticated admin")
	}
	return adminID, nil
}

// findImage resolves the record a decision refers to, checking the pending
// queue first. The record supplies the denormalized audit metadata and the
// storage URL.
func (c *Controller) findImage(ctx context.Context, imageID uuid.UUID) (models.ImageRecord, error) {
	pending, err := c.ListPending(ctx)
	if err != nil {
		return models.ImageRecord{}, err
	}
	for _, img := range pending {
		if img.ID == imageID {
			return img, nil
		}
	}

	reviewed, err := c.ListReviewed(ctx)
	if err != nil {
		return models.ImageRecord{}, err
	}
	for _, img := range reviewed {
		if img.ID == imageID {
			return img, nil
		}
	}

	return models.ImageRecord{}, domainerrors.New(domainerrors.CodeNotFound,
		fmt.Sprintf("image %s not found", imageID))
}

// removeStoredObject deletes the underlying storage object. Failures are
// logged and counted, never surfaced; the rejection has already committed.
func (c *Controller) removeStoredObject(ctx context.Context, imageURL string) {
	if c.remover == nil {
		return
	}

	ref, err := assets.ParseObjectURL(imageURL)
	if err != nil {
		c.logger.WarnContext(ctx, "image url not deletable", "url", imageURL, "error", err)
		return
	}
	if err := c.remover.Remove(ctx, ref); err != nil {
		c.logger.WarnContext(ctx, "storage object delete failed", "object", ref.String(), "error", err)
		if c.metrics != nil {
			c.metrics.IncrementAssetDeleteFailures()
		}
	}
}

func (c *Controller) imageMetadata(img models.ImageRecord, comment *string) map[string]any {
	meta := map[string]any{
		"propertyId":    img.PropertyID.String(),
		"propertyTitle": img.Property.Title,
		"imageUrl":      img.ImageURL,
	}
	if comment != nil && *comment != "" {
		meta["comment"] = *comment
	}
	return meta
}

func (c *Controller) record(ctx context.Context, entry activity.Entry) {
	if err := c.recorder.Record(ctx, entry); err != nil {
		c.logger.ErrorContext(ctx, "failed to record activity",
			"activity_type", entry.Type, "error", err)
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
