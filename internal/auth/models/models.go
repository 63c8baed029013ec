package models

import "github.com/google/uuid"

// Role is the staff role carried by the directory. Only two roles exist;
// both may moderate images.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// AdminIdentity represents an authenticated staff member as returned by the
// admin directory. It is read-only to this service; the directory owns it.
type AdminIdentity struct {
	ID         uuid.UUID
	Email      string
	FullName   string
	Role       Role
	Active     bool
	FirstLogin bool // true until a PIN has been created
}

// LoginResult is returned by the directory on a successful login.
type LoginResult struct {
	Identity     AdminIdentity
	SessionToken string
}

// State is the session manager's position in the auth lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateValidating      State = "validating"
	StateAuthenticated   State = "authenticated"
	// StateFirstLoginPendingPinSetup is entered after a password login for an
	// admin that has never created a PIN. PIN creation moves to Authenticated.
	StateFirstLoginPendingPinSetup State = "first_login_pending_pin_setup"
)
