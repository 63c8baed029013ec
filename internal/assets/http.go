package assets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainerrors "nyumba/pkg/domain-errors"
)

// HTTPRemover deletes objects through the storage service's REST API.
type HTTPRemover struct {
	endpoint   string
	serviceKey string
	client     *http.Client
	logger     *slog.Logger
}

// HTTPOption configures an HTTPRemover.
type HTTPOption func(*HTTPRemover)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPRemover) {
		r.client = client
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(r *HTTPRemover) {
		r.logger = logger
	}
}

// NewHTTPRemover constructs a remover against the storage endpoint, e.g.
// https://project.example.com. The service key authorizes deletes.
func NewHTTPRemover(endpoint, serviceKey string, opts ...HTTPOption) *HTTPRemover {
	r := &HTTPRemover{
		endpoint:   strings.TrimRight(endpoint, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Remove issues a DELETE for the object. A 404 from storage is treated as
// success since the object is gone either way.
func (r *HTTPRemover) Remove(ctx context.Context, ref ObjectRef) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", r.endpoint, ref.Bucket, ref.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "building storage delete request")
	}
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "calling storage delete")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		r.logger.DebugContext(ctx, "storage object already gone", "object", ref.String())
		return nil
	default:
		return domainerrors.New(domainerrors.CodeInternal,
			fmt.Sprintf("storage delete for %s returned status %d", ref.String(), resp.StatusCode))
	}
}
