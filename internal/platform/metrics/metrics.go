package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	LoginsTotal      *prometheus.CounterVec
	AuthFailures     prometheus.Counter
	PinsCreated      prometheus.Counter
	SessionsResumed  prometheus.Counter
	SessionsRevoked  prometheus.Counter

	ImagesApproved       prometheus.Counter
	ImagesRejected       prometheus.Counter
	BulkApprovalSize     prometheus.Histogram
	AssetDeleteFailures  prometheus.Counter
	ActivityAppendErrors prometheus.Counter

	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CacheRefreshes *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyumba_logins_total",
			Help: "Total number of successful admin logins, labeled by method (password, pin)",
		}, []string{"method"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		PinsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_pins_created_total",
			Help: "Total number of PINs created on first login",
		}),
		SessionsResumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_sessions_resumed_total",
			Help: "Total number of sessions revalidated from the persisted token",
		}),
		SessionsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_sessions_revoked_total",
			Help: "Total number of logouts",
		}),
		ImagesApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_images_approved_total",
			Help: "Total number of property images approved (single approvals)",
		}),
		ImagesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_images_rejected_total",
			Help: "Total number of property images rejected and deleted",
		}),
		BulkApprovalSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyumba_bulk_approval_size",
			Help:    "Number of images per bulk approval",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		AssetDeleteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_asset_delete_failures_total",
			Help: "Total number of best-effort storage deletions that failed",
		}),
		ActivityAppendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyumba_activity_append_errors_total",
			Help: "Total number of activity log appends that failed",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyumba_cache_hits_total",
			Help: "Query cache hits, labeled by operation",
		}, []string{"op"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyumba_cache_misses_total",
			Help: "Query cache misses, labeled by operation",
		}, []string{"op"}),
		CacheRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyumba_cache_refreshes_total",
			Help: "Query cache background refreshes, labeled by operation",
		}, []string{"op"}),
	}
}

// IncrementLogins increments the successful login counter for a method
func (m *Metrics) IncrementLogins(method string) {
	m.LoginsTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementPinsCreated() {
	m.PinsCreated.Inc()
}

func (m *Metrics) IncrementSessionsResumed() {
	m.SessionsResumed.Inc()
}

func (m *Metrics) IncrementSessionsRevoked() {
	m.SessionsRevoked.Inc()
}

func (m *Metrics) IncrementImagesApproved() {
	m.ImagesApproved.Inc()
}

func (m *Metrics) IncrementImagesRejected() {
	m.ImagesRejected.Inc()
}

// ObserveBulkApproval records the size of one bulk approval batch
func (m *Metrics) ObserveBulkApproval(size int) {
	m.BulkApprovalSize.Observe(float64(size))
}

func (m *Metrics) IncrementAssetDeleteFailures() {
	m.AssetDeleteFailures.Inc()
}

func (m *Metrics) IncrementActivityAppendErrors() {
	m.ActivityAppendErrors.Inc()
}

func (m *Metrics) IncrementCacheHits(op string) {
	m.CacheHits.WithLabelValues(op).Inc()
}

func (m *Metrics) IncrementCacheMisses(op string) {
	m.CacheMisses.WithLabelValues(op).Inc()
}

func (m *Metrics) IncrementCacheRefreshes(op string) {
	m.CacheRefreshes.WithLabelValues(op).Inc()
}
