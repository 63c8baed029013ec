package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockSessionValidator is a testify mock for SessionValidator
type MockSessionValidator struct {
	mock.Mock
}

func (m *MockSessionValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// captureHandler records whether it was reached and with which context
type captureHandler struct {
	called  bool
	context context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type SessionMiddlewareTestSuite struct {
	suite.Suite
	validator   *MockSessionValidator
	nextHandler *captureHandler
	middleware  func(http.Handler) http.Handler
}

func (s *SessionMiddlewareTestSuite) SetupTest() {
	s.validator = new(MockSessionValidator)
	s.nextHandler = &captureHandler{}
	s.middleware = RequireSession(s.validator, slog.Default())
}

func (s *SessionMiddlewareTestSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
}

func (s *SessionMiddlewareTestSuite) makeRequest(authHeader string) *httptest.ResponseRecorder {
	handler := s.middleware(s.nextHandler)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func (s *SessionMiddlewareTestSuite) TestValidToken() {
	s.validator.On("ValidateToken", mock.Anything, "live-token").Return("admin-123", nil)

	w := s.makeRequest("Bearer live-token")

	require.True(s.T(), s.nextHandler.called, "next handler should be called")
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "admin-123", GetAdminID(s.nextHandler.context))
	assert.Equal(s.T(), "live-token", GetSessionToken(s.nextHandler.context))
}

func (s *SessionMiddlewareTestSuite) TestRejectedToken() {
	s.validator.On("ValidateToken", mock.Anything, "stale-token").
		Return("", errors.New("session expired"))

	w := s.makeRequest("Bearer stale-token")

	assert.False(s.T(), s.nextHandler.called, "next handler should not be called")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(s.T(), "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(s.T(),
		`{"error":"unauthorized","error_description":"invalid or expired session"}`,
		w.Body.String(),
	)
}

func (s *SessionMiddlewareTestSuite) TestMissingAuthorizationHeader() {
	w := s.makeRequest("")

	assert.False(s.T(), s.nextHandler.called, "next handler should not be called")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(s.T(),
		`{"error":"unauthorized","error_description":"missing bearer token"}`,
		w.Body.String(),
	)
}

func (s *SessionMiddlewareTestSuite) TestMalformedAuthorizationHeaders() {
	testCases := []struct {
		name       string
		authHeader string
	}{
		{"no bearer prefix", "raw-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"lowercase bearer", "bearer token"},
		{"bearer without space", "Bearertoken"},
		{"bearer with empty token", "Bearer "},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			next := &captureHandler{}
			handler := RequireSession(s.validator, slog.Default())(next)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tc.authHeader)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(s.T(), next.called, "next handler should not be called")
			assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
		})
	}
}

func TestSessionMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(SessionMiddlewareTestSuite))
}

func TestSessionContextGetters(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "valid admin id",
			ctx:      WithAdminID(context.Background(), "admin-123"),
			expected: "admin-123",
		},
		{
			name:     "missing admin id",
			ctx:      context.Background(),
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetAdminID(tc.ctx))
		})
	}

	t.Run("missing session token", func(t *testing.T) {
		assert.Equal(t, "", GetSessionToken(context.Background()))
	})
}
