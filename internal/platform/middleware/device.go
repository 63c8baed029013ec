package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type contextKeyDevice struct{}

// Device summarizes the client making a request. It is recorded in activity
// log metadata for login events so the audit trail shows where an admin
// signed in from.
type Device struct {
	Browser  string
	OS       string
	Platform string // desktop or mobile
}

// String renders the device summary for activity metadata.
func (d Device) String() string {
	if d.Browser == "" && d.OS == "" {
		return "unknown"
	}
	return d.Browser + "/" + d.OS + "/" + d.Platform
}

// DeviceInfo parses the User-Agent header into a device summary and stores it
// on the request context.
func DeviceInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithDevice(r.Context(), ParseDevice(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithDevice returns a context carrying the device summary. Exposed for tests
// and callers that bypass HTTP.
func WithDevice(ctx context.Context, d Device) context.Context {
	return context.WithValue(ctx, contextKeyDevice{}, d)
}

// GetDevice retrieves the device summary from the context.
func GetDevice(ctx context.Context) Device {
	if d, ok := ctx.Value(contextKeyDevice{}).(Device); ok {
		return d
	}
	return Device{}
}

// ParseDevice extracts a coarse browser/OS/platform summary from a User-Agent
// string. IP addresses are deliberately not captured.
func ParseDevice(uaString string) Device {
	if uaString == "" {
		return Device{}
	}

	ua := useragent.New(uaString)
	browser, _ := ua.Browser()

	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	return Device{
		Browser:  strings.ToLower(strings.TrimSpace(browser)),
		OS:       strings.ToLower(strings.TrimSpace(ua.OS())),
		Platform: platform,
	}
}
