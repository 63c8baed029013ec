package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevice(t *testing.T) {
	testCases := []struct {
		name     string
		ua       string
		browser  string
		platform string
	}{
		{
			name:     "desktop chrome on mac",
			ua:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			browser:  "chrome",
			platform: "desktop",
		},
		{
			name:     "mobile safari on iphone",
			ua:       "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			browser:  "safari",
			platform: "mobile",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := ParseDevice(tc.ua)
			assert.Equal(t, tc.browser, d.Browser)
			assert.Equal(t, tc.platform, d.Platform)
			assert.NotEmpty(t, d.OS)
		})
	}

	t.Run("empty user agent", func(t *testing.T) {
		assert.Equal(t, Device{}, ParseDevice(""))
	})
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "unknown", Device{}.String())
	assert.Equal(t, "chrome/linux/desktop",
		Device{Browser: "chrome", OS: "linux", Platform: "desktop"}.String())
}

func TestDeviceInfoMiddleware(t *testing.T) {
	var got Device
	handler := DeviceInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetDevice(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chrome", got.Browser)
	assert.Equal(t, "desktop", got.Platform)
}

func TestGetDeviceMissing(t *testing.T) {
	assert.Equal(t, Device{}, GetDevice(context.Background()))
}
