// Package directory defines the admin directory collaborator: the external
// authority for staff identities, credentials, and session tokens. All
// implementations speak the same stored-procedure contract.
package directory

import (
	"context"

	"github.com/google/uuid"

	"nyumba/internal/auth/models"
	dErrors "nyumba/pkg/domain-errors"
)

// Error Contract: implementations return domain errors with these codes for
// expected outcomes, and wrapped CodeInternal errors for transport failures.
var (
	// ErrInvalidCredentials is returned when the directory rejects an
	// email/password pair.
	ErrInvalidCredentials = dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	// ErrInvalidPIN is returned when the directory rejects a PIN.
	ErrInvalidPIN = dErrors.New(dErrors.CodeInvalidPIN, "invalid PIN")
	// ErrSessionInvalid is returned when a token is unknown or expired.
	ErrSessionInvalid = dErrors.New(dErrors.CodeSessionExpired, "session invalid or expired")
)

// Directory exposes the admin authentication operations. Tokens issued here
// are opaque bearer strings; callers never inspect them.
type Directory interface {
	// LoginWithPassword authenticates by email and password.
	LoginWithPassword(ctx context.Context, email, password string) (*models.LoginResult, error)
	// LoginWithPIN authenticates by a 4-digit numeric PIN.
	LoginWithPIN(ctx context.Context, pin string) (*models.LoginResult, error)
	// CreatePIN registers a PIN for an existing admin. It does not log in.
	CreatePIN(ctx context.Context, adminID uuid.UUID, pin string) error
	// ValidateSession resolves a token to its identity, or ErrSessionInvalid.
	ValidateSession(ctx context.Context, token string) (*models.AdminIdentity, error)
	// InvalidateSession revokes a token. Callers treat failures as
	// best-effort; the directory still expires the session on its own.
	InvalidateSession(ctx context.Context, token string) error
}
