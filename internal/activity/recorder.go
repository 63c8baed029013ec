package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder captures activity entries. It is append-only and uses the storage
// layer for persistence so tests can swap sinks easily. Appends are
// best-effort by contract: a failure is logged and counted, never surfaced
// to the moderation decision that produced the entry.
type Recorder struct {
	store   Store
	entries chan Entry
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics AppendErrorCounter
	async   bool
}

// AppendErrorCounter is the slice of the metrics surface the recorder needs.
type AppendErrorCounter interface {
	IncrementActivityAppendErrors()
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Entries are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.entries = make(chan Entry, size)
			r.async = true
		}
	}
}

// WithRecorderLogger sets a logger for append error reporting.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithRecorderMetrics counts append failures.
func WithRecorderMetrics(m AppendErrorCounter) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.async {
		r.wg.Add(1)
		go r.processEntries()
	}
	return r
}

// processEntries runs in a goroutine and persists entries from the channel.
func (r *Recorder) processEntries() {
	defer r.wg.Done()
	for entry := range r.entries {
		if err := r.store.Append(context.Background(), entry); err != nil {
			r.reportAppendFailure(entry, err)
		}
	}
}

// Close shuts down the async recorder and waits for pending entries to drain.
func (r *Recorder) Close() {
	if r.async && r.entries != nil {
		close(r.entries)
		r.wg.Wait()
	}
}

// Record stamps and persists an entry. In async mode the send is
// non-blocking; a full buffer drops the entry with a warning so the hot path
// is never held up by the audit sink.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if r.async {
		select {
		case r.entries <- entry:
			return nil
		default:
			if r.logger != nil {
				r.logger.Warn("activity buffer full, entry dropped",
					"activity_type", entry.Type,
					"admin_id", entry.AdminID,
				)
			}
			if r.metrics != nil {
				r.metrics.IncrementActivityAppendErrors()
			}
			return nil
		}
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.reportAppendFailure(entry, err)
		return err
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]Entry, error) {
	return r.store.List(ctx, limit)
}

func (r *Recorder) reportAppendFailure(entry Entry, err error) {
	if r.logger != nil {
		r.logger.Error("failed to persist activity entry",
			"error", err,
			"activity_type", entry.Type,
			"admin_id", entry.AdminID,
		)
	}
	if r.metrics != nil {
		r.metrics.IncrementActivityAppendErrors()
	}
}
