package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nyumba/internal/activity"
	"nyumba/internal/assets"
	"nyumba/internal/cache"
	"nyumba/internal/moderation/models"
	"nyumba/internal/moderation/service/mocks"
	"nyumba/internal/moderation/store"
	"nyumba/internal/platform/middleware"
	domainerrors "nyumba/pkg/domain-errors"
)

// countingRepo wraps the in-memory repository and counts repository reads so
// tests can tell a cache hit from a refetch.
type countingRepo struct {
	*store.MemoryRepository
	mu           sync.Mutex
	pendingCalls int
	countCalls   int
}

func (r *countingRepo) ListPending(ctx context.Context) ([]models.ImageRecord, error) {
	r.mu.Lock()
	r.pendingCalls++
	r.mu.Unlock()
	return r.MemoryRepository.ListPending(ctx)
}

func (r *countingRepo) CountByStatus(ctx context.Context) (store.StatusCounts, error) {
	r.mu.Lock()
	r.countCalls++
	r.mu.Unlock()
	return r.MemoryRepository.CountByStatus(ctx)
}

func (r *countingRepo) counts() (pending, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingCalls, r.countCalls
}

type ControllerSuite struct {
	suite.Suite
	repo          *countingRepo
	activityStore *activity.MemoryStore
	recorder      *activity.Recorder
	remover       *assets.MemoryRemover
	controller    *Controller
	adminID       uuid.UUID
	ctx           context.Context
}

func (s *ControllerSuite) SetupTest() {
	s.repo = &countingRepo{MemoryRepository: store.NewMemory()}
	s.activityStore = activity.NewMemoryStore()
	s.recorder = activity.NewRecorder(s.activityStore)
	s.remover = assets.NewMemoryRemover()

	s.adminID = uuid.New()
	s.ctx = middleware.WithAdminID(context.Background(), s.adminID.String())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.controller = New(s.repo, cache.New(cache.WithLogger(logger)), s.recorder,
		WithLogger(logger),
		WithRemover(s.remover),
		WithCacheTTLs(time.Minute, time.Minute),
	)
}

func (s *ControllerSuite) seedPending(age time.Duration) models.ImageRecord {
	id := uuid.New()
	img := models.ImageRecord{
		ID:         id,
		PropertyID: uuid.New(),
		ImageURL:   "https://project.example.com/storage/v1/object/public/property-images/" + id.String() + ".jpg",
		CreatedAt:  time.Now().Add(-age),
		Property: models.PropertySummary{
			Title: "Three bedroom house",
			City:  "Mombasa",
		},
	}
	s.repo.Put(img)
	return img
}

func (s *ControllerSuite) entries() []activity.Entry {
	entries, err := s.recorder.List(context.Background(), 50)
	s.Require().NoError(err)
	return entries
}

func (s *ControllerSuite) TestListPendingServedFromCache() {
	s.seedPending(time.Hour)
	ctx := context.Background()

	first, err := s.controller.ListPending(ctx)
	s.Require().NoError(err)
	s.Len(first, 1)

	second, err := s.controller.ListPending(ctx)
	s.Require().NoError(err)
	s.Len(second, 1)

	pendingCalls, _ := s.repo.counts()
	s.Equal(1, pendingCalls)
}

func (s *ControllerSuite) TestListPendingOldestFirst() {
	newer := s.seedPending(time.Minute)
	older := s.seedPending(time.Hour)

	pending, err := s.controller.ListPending(context.Background())
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(older.ID, pending[0].ID)
	s.Equal(newer.ID, pending[1].ID)
}

func (s *ControllerSuite) TestApproveRecordsActivityAndRefreshesCounts() {
	img := s.seedPending(time.Hour)
	ctx := s.ctx

	stats, err := s.controller.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.Pending)

	comment := "great lighting"
	s.Require().NoError(s.controller.Approve(ctx, img.ID, &comment))

	reviewed, err := s.controller.ListReviewed(ctx)
	s.Require().NoError(err)
	s.Require().Len(reviewed, 1)
	s.True(reviewed[0].IsApproved())
	s.Require().NotNil(reviewed[0].ReviewedBy)
	s.Equal(s.adminID, *reviewed[0].ReviewedBy)

	entries := s.entries()
	s.Require().Len(entries, 1)
	s.Equal(activity.TypeImageApproved, entries[0].Type)
	s.Equal(s.adminID, entries[0].AdminID)
	s.Equal(img.PropertyID.String(), entries[0].Metadata["propertyId"])
	s.Equal(img.Property.Title, entries[0].Metadata["propertyTitle"])
	s.Equal(img.ImageURL, entries[0].Metadata["imageUrl"])
	s.Equal(comment, entries[0].Metadata["comment"])

	// Counts were invalidated; reads converge on the refetched value.
	s.Eventually(func() bool {
		st, err := s.controller.Stats(ctx)
		return err == nil && st.Approved == 1 && st.Pending == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *ControllerSuite) TestRejectRemovesRecordEverywhere() {
	img := s.seedPending(time.Hour)
	ctx := s.ctx

	err := s.controller.Reject(ctx, img.ID, "photo does not show the property", nil)
	s.Require().NoError(err)

	counts, err := s.repo.MemoryRepository.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(store.StatusCounts{}, counts)

	entries := s.entries()
	s.Require().Len(entries, 1)
	s.Equal(activity.TypeImageRejected, entries[0].Type)
	s.Equal("photo does not show the property", entries[0].Metadata["rejectionReason"])
	s.Equal(img.ImageURL, entries[0].Metadata["imageUrl"])

	removed := s.remover.Removed()
	s.Require().Len(removed, 1)
	s.Equal("property-images", removed[0].Bucket)
	s.Equal(img.ID.String()+".jpg", removed[0].Path)
}

func (s *ControllerSuite) TestRejectUnknownImage() {
	err := s.controller.Reject(s.ctx, uuid.New(), "blurry", nil)
	s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	s.Empty(s.entries())
	s.Empty(s.remover.Removed())
}

func (s *ControllerSuite) TestBulkApproveSingleAuditEntry() {
	first := s.seedPending(3 * time.Hour)
	second := s.seedPending(2 * time.Hour)
	third := s.seedPending(time.Hour)
	ctx := s.ctx

	err := s.controller.BulkApprove(ctx, []uuid.UUID{first.ID, second.ID, third.ID})
	s.Require().NoError(err)

	entries := s.entries()
	s.Require().Len(entries, 1)
	s.Equal(activity.TypeBulkImageApproved, entries[0].Type)
	s.Equal(3, entries[0].Metadata["count"])
	ids, ok := entries[0].Metadata["imageIds"].([]string)
	s.Require().True(ok)
	s.Len(ids, 3)
}

func (s *ControllerSuite) TestBulkApproveLeavesStatsCacheWarm() {
	img := s.seedPending(time.Hour)
	ctx := s.ctx

	stats, err := s.controller.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.Pending)

	s.Require().NoError(s.controller.BulkApprove(ctx, []uuid.UUID{img.ID}))

	// The counts query was not invalidated: the cached value is served
	// as-is and the repository is not hit again.
	stats, err = s.controller.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.Pending)

	_, countCalls := s.repo.counts()
	s.Equal(1, countCalls)
}

func (s *ControllerSuite) TestBulkApproveEmptySelection() {
	err := s.controller.BulkApprove(s.ctx, nil)
	s.True(domainerrors.HasCode(err, domainerrors.CodeInvalidInput))
	s.Empty(s.entries())
}

func (s *ControllerSuite) TestListFiltered() {
	pendingImg := s.seedPending(time.Hour)
	approvedImg := s.seedPending(2 * time.Hour)
	ctx := s.ctx
	s.Require().NoError(s.controller.Approve(ctx, approvedImg.ID, nil))

	approved, err := s.controller.ListFiltered(ctx, models.FilterApproved)
	s.Require().NoError(err)
	s.Require().Len(approved, 1)
	s.Equal(approvedImg.ID, approved[0].ID)

	// The pending queue was invalidated by the approval; stale reads
	// converge once the background refetch lands.
	s.Eventually(func() bool {
		pending, err := s.controller.ListFiltered(ctx, models.FilterPending)
		return err == nil && len(pending) == 1 && pending[0].ID == pendingImg.ID
	}, 2*time.Second, 10*time.Millisecond)

	all, err := s.controller.ListFiltered(ctx, models.FilterAll)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ControllerSuite) TestActivityFeed() {
	img := s.seedPending(time.Hour)
	ctx := s.ctx
	s.Require().NoError(s.controller.Approve(ctx, img.ID, nil))

	s.Eventually(func() bool {
		entries, err := s.controller.Activity(ctx, 10)
		return err == nil && len(entries) == 1 && entries[0].Type == activity.TypeImageApproved
	}, 2*time.Second, 10*time.Millisecond)
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

// Rejection without a reason must be refused before any repository,
// storage, or audit call is made. The mocks carry no expectations, so any
// call fails the test.
func TestRejectWithoutReasonMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	recorder := mocks.NewMockActivityRecorder(ctrl)

	controller := New(repo, cache.New(), recorder,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	for _, reason := range []string{"", "   ", "\t\n"} {
		err := controller.Reject(context.Background(), uuid.New(), reason, nil)
		if !domainerrors.HasCode(err, domainerrors.CodeMissingRejectionReason) {
			t.Fatalf("reason %q: expected missing rejection reason error, got %v", reason, err)
		}
	}
}

// A context without an admin id, or with one that does not parse, must be
// rejected before any repository or audit call is made.
func TestModerationRequiresAuthenticatedAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	recorder := mocks.NewMockActivityRecorder(ctrl)

	controller := New(repo, cache.New(), recorder,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	for name, ctx := range map[string]context.Context{
		"missing":    context.Background(),
		"unparsable": middleware.WithAdminID(context.Background(), "not-a-uuid"),
	} {
		if err := controller.Approve(ctx, uuid.New(), nil); !domainerrors.HasCode(err, domainerrors.CodeUnauthenticated) {
			t.Fatalf("%s approve: expected unauthenticated error, got %v", name, err)
		}
		if err := controller.Reject(ctx, uuid.New(), "blurry", nil); !domainerrors.HasCode(err, domainerrors.CodeUnauthenticated) {
			t.Fatalf("%s reject: expected unauthenticated error, got %v", name, err)
		}
		if err := controller.BulkApprove(ctx, []uuid.UUID{uuid.New()}); !domainerrors.HasCode(err, domainerrors.CodeUnauthenticated) {
			t.Fatalf("%s bulk approve: expected unauthenticated error, got %v", name, err)
		}
	}
}

// Each decision is attributed to the admin carried by that call's context,
// not to whichever staff member logged in last.
func (s *ControllerSuite) TestDecisionsAttributedToCallingAdmin() {
	first := s.seedPending(2 * time.Hour)
	second := s.seedPending(time.Hour)

	otherAdmin := uuid.New()
	otherCtx := middleware.WithAdminID(context.Background(), otherAdmin.String())

	s.Require().NoError(s.controller.Approve(s.ctx, first.ID, nil))
	s.Require().NoError(s.controller.Approve(otherCtx, second.ID, nil))

	byImage := map[string]uuid.UUID{}
	for _, e := range s.entries() {
		id, ok := e.Metadata["imageUrl"].(string)
		s.Require().True(ok)
		byImage[id] = e.AdminID
	}
	s.Equal(s.adminID, byImage[first.ImageURL])
	s.Equal(otherAdmin, byImage[second.ImageURL])

	reviewed, err := s.repo.MemoryRepository.ListReviewed(context.Background())
	s.Require().NoError(err)
	for _, img := range reviewed {
		s.Require().NotNil(img.ReviewedBy)
		switch img.ID {
		case first.ID:
			s.Equal(s.adminID, *img.ReviewedBy)
		case second.ID:
			s.Equal(otherAdmin, *img.ReviewedBy)
		}
	}
}
