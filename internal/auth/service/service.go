// Package service implements the admin session lifecycle: password and PIN
// login, first-login PIN setup, token persistence, and revalidation of the
// persisted token at process start. State is held by a single Manager
// instance injected where needed; nothing reads it as ambient globals.
package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"nyumba/internal/activity"
	"nyumba/internal/auth/directory"
	"nyumba/internal/auth/models"
	"nyumba/internal/auth/tokenstore"
	"nyumba/internal/platform/metrics"
	"nyumba/internal/platform/middleware"
	dErrors "nyumba/pkg/domain-errors"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ActivityRecorder appends audit entries for auth events.
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry) error
}

// Result is the success/failure envelope returned for expected outcomes.
// Invalid credentials are a Result, not an error; errors are reserved for
// transport and programming failures. Identity and Token are set only on
// success, so callers answer from the outcome of their own call rather than
// from shared manager state.
type Result struct {
	Success  bool
	Message  string
	Identity *models.AdminIdentity
	Token    string
}

// Manager is the session state machine. All operations are serialized with
// an internal mutex: the directory has no idempotency guarantee for
// concurrent conflicting session creation.
type Manager struct {
	mu        sync.Mutex
	directory directory.Directory
	tokens    tokenstore.Store

	state    models.State
	identity *models.AdminIdentity
	token    string

	logger   *slog.Logger
	recorder ActivityRecorder
	metrics  *metrics.Metrics
}

// Option configures the Manager.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithActivityRecorder(recorder ActivityRecorder) Option {
	return func(m *Manager) {
		m.recorder = recorder
	}
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mx
	}
}

// NewManager constructs a Manager in the Unauthenticated state.
func NewManager(dir directory.Directory, tokens tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		directory: dir,
		tokens:    tokens,
		state:     models.StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the current identity, or nil when unauthenticated.
func (m *Manager) Identity() *models.AdminIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	identity := *m.identity
	return &identity
}

// Token returns the held session token, or empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Login authenticates by email and password. On success the token is
// persisted and the state becomes Authenticated, or
// FirstLoginPendingPinSetup when the admin has never created a PIN.
func (m *Manager) Login(ctx context.Context, email, password string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Result{Message: "Email and password are required"}, nil
	}

	res, err := m.directory.LoginWithPassword(ctx, email, password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidCredentials) {
			m.authFailure(ctx, "invalid_credentials", "email", email)
			return Result{Message: "Invalid email or password"}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "password login failed")
	}

	m.establish(ctx, res, "password")
	return m.successLocked("Login successful"), nil
}

// LoginWithPIN authenticates by a 4-digit PIN. Malformed PINs fail fast
// without a directory call.
func (m *Manager) LoginWithPIN(ctx context.Context, pin string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !pinPattern.MatchString(pin) {
		m.authFailure(ctx, "malformed_pin")
		return Result{Message: "PIN must be exactly 4 digits"}, nil
	}

	res, err := m.directory.LoginWithPIN(ctx, pin)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidPIN) {
			m.authFailure(ctx, "invalid_pin")
			return Result{Message: "Invalid PIN"}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "pin login failed")
	}

	m.establish(ctx, res, "pin")
	return m.successLocked("Login successful"), nil
}

// CreatePIN registers a PIN for the current identity. It requires an
// established identity and does not log in by itself; the PIN becomes usable
// for subsequent LoginWithPIN calls.
func (m *Manager) CreatePIN(ctx context.Context, pin string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity == nil {
		return Result{}, dErrors.New(dErrors.CodeUnauthenticated, "no admin logged in")
	}
	if !pinPattern.MatchString(pin) {
		return Result{Message: "PIN must be exactly 4 digits"}, nil
	}

	if err := m.directory.CreatePIN(ctx, m.identity.ID, pin); err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return Result{Message: "PIN was rejected"}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "create pin failed")
	}

	// The pending-setup gate lifts once a PIN exists.
	m.identity.FirstLogin = false
	if m.state == models.StateFirstLoginPendingPinSetup {
		m.state = models.StateAuthenticated
	}

	if m.metrics != nil {
		m.metrics.IncrementPinsCreated()
	}
	m.recordActivity(ctx, activity.Entry{
		AdminID:     m.identity.ID,
		Type:        activity.TypePinCreated,
		Description: "Admin created a login PIN",
	})
	res := m.successLocked("PIN created successfully")
	res.Token = ""
	return res, nil
}

// Logout invalidates the session server-side on a best-effort basis, then
// unconditionally clears the persisted token and local identity.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" {
		if err := m.directory.InvalidateSession(ctx, m.token); err != nil {
			m.logger.WarnContext(ctx, "server-side session invalidation failed",
				"error", err,
			)
		}
	}
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to clear persisted token", "error", err)
	}

	m.token = ""
	m.identity = nil
	m.state = models.StateUnauthenticated
	if m.metrics != nil {
		m.metrics.IncrementSessionsRevoked()
	}
}

// Resume revalidates a previously persisted token at process start or on
// demand. An invalid or unverifiable token clears local state so a stale
// identity is never left visible.
func (m *Manager) Resume(ctx context.Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := m.token
	if token == "" {
		stored, err := m.tokens.Load(ctx)
		if err != nil {
			return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "load persisted token")
		}
		token = stored
	}
	if token == "" {
		m.state = models.StateUnauthenticated
		return Result{Message: "No stored session"}, nil
	}

	m.state = models.StateValidating
	identity, err := m.directory.ValidateSession(ctx, token)
	if err != nil {
		// Invalid and unverifiable both land in Unauthenticated; a token
		// that cannot be vouched for is not proof of identity.
		m.discardSession(ctx)
		if dErrors.HasCode(err, dErrors.CodeSessionExpired) {
			return Result{Message: "Session expired"}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "session validation failed")
	}

	m.token = token
	m.identity = identity
	m.state = models.StateAuthenticated
	if m.metrics != nil {
		m.metrics.IncrementSessionsResumed()
	}
	return m.successLocked("Session restored"), nil
}

// IdentityForToken resolves an arbitrary bearer token to the admin it
// belongs to. It does not mutate the manager's own state; each caller is
// answered for the token it presented, never for whoever else is logged in.
func (m *Manager) IdentityForToken(ctx context.Context, token string) (*models.AdminIdentity, error) {
	return m.directory.ValidateSession(ctx, token)
}

// ValidateToken checks an arbitrary bearer token against the directory.
// The HTTP middleware uses it to guard moderation routes.
func (m *Manager) ValidateToken(ctx context.Context, token string) (string, error) {
	identity, err := m.IdentityForToken(ctx, token)
	if err != nil {
		return "", err
	}
	return identity.ID.String(), nil
}

// successLocked snapshots the established session into a Result under the
// held lock.
func (m *Manager) successLocked(message string) Result {
	res := Result{Success: true, Message: message, Token: m.token}
	if m.identity != nil {
		identity := *m.identity
		res.Identity = &identity
	}
	return res
}

// establish commits a successful login under the held lock.
func (m *Manager) establish(ctx context.Context, res *models.LoginResult, method string) {
	identity := res.Identity
	m.identity = &identity
	m.token = res.SessionToken
	if identity.FirstLogin {
		m.state = models.StateFirstLoginPendingPinSetup
	} else {
		m.state = models.StateAuthenticated
	}

	if err := m.tokens.Save(ctx, res.SessionToken); err != nil {
		// The session is live server-side; losing persistence only costs a
		// re-login after restart.
		m.logger.ErrorContext(ctx, "failed to persist session token", "error", err)
	}

	if m.metrics != nil {
		m.metrics.IncrementLogins(method)
	}
	m.recordActivity(ctx, activity.Entry{
		AdminID:     identity.ID,
		Type:        activity.TypeAdminLogin,
		Description: "Admin logged in",
		Metadata: map[string]any{
			"method": method,
			"email":  identity.Email,
			"device": middleware.GetDevice(ctx).String(),
		},
	})
	m.logger.InfoContext(ctx, "admin authenticated",
		"admin_id", identity.ID.String(),
		"method", method,
		"state", string(m.state),
	)
}

// discardSession clears token and identity under the held lock.
func (m *Manager) discardSession(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to clear persisted token", "error", err)
	}
	m.token = ""
	m.identity = nil
	m.state = models.StateUnauthenticated
}

func (m *Manager) authFailure(ctx context.Context, reason string, attributes ...any) {
	args := append(attributes, "reason", reason)
	m.logger.WarnContext(ctx, "auth_failed", args...)
	if m.metrics != nil {
		m.metrics.IncrementAuthFailures()
	}
}

func (m *Manager) recordActivity(ctx context.Context, entry activity.Entry) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, entry); err != nil {
		m.logger.ErrorContext(ctx, "failed to record auth activity",
			"error", err,
			"activity_type", entry.Type,
		)
	}
}
