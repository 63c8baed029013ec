package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"nyumba/internal/auth/models"
	dErrors "nyumba/pkg/domain-errors"
)

// PostgresDirectory speaks to the stored procedures that own admin
// authentication. The procedures hash credentials, enforce the active flag
// and session expiry, and return zero rows for rejected attempts.
type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgres constructs a stored-procedure-backed directory.
func NewPostgres(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) LoginWithPassword(ctx context.Context, email, password string) (*models.LoginResult, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT admin_user_id, email, full_name, role, is_active, is_first_login, session_token
		   FROM admin_login($1, $2)`, email, password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "admin_login call failed")
	}
	defer rows.Close()

	res, err := scanLoginRow(rows)
	if err != nil {
		return nil, err
	}
	if res == nil {
		// Zero rows is the procedure's rejection signal, not a transport error.
		return nil, ErrInvalidCredentials
	}
	return res, nil
}

func (d *PostgresDirectory) LoginWithPIN(ctx context.Context, pin string) (*models.LoginResult, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT admin_user_id, email, full_name, role, is_active, is_first_login, session_token
		   FROM admin_login_with_pin($1)`, pin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "admin_login_with_pin call failed")
	}
	defer rows.Close()

	res, err := scanLoginRow(rows)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrInvalidPIN
	}
	// A PIN can only exist after first login completed.
	res.Identity.FirstLogin = false
	return res, nil
}

func (d *PostgresDirectory) CreatePIN(ctx context.Context, adminID uuid.UUID, pin string) error {
	if _, err := d.db.ExecContext(ctx, `SELECT create_admin_pin($1, $2)`, adminID, pin); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create_admin_pin call failed")
	}
	return nil
}

func (d *PostgresDirectory) ValidateSession(ctx context.Context, token string) (*models.AdminIdentity, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT admin_user_id, email, full_name, role, is_active
		   FROM validate_admin_session($1)`, token)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "validate_admin_session call failed")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "validate_admin_session scan failed")
		}
		return nil, ErrSessionInvalid
	}

	var identity models.AdminIdentity
	var role string
	if err := rows.Scan(&identity.ID, &identity.Email, &identity.FullName, &role, &identity.Active); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan validated session")
	}
	identity.Role = models.Role(role)
	// The validation procedure only answers for admins past first login.
	identity.FirstLogin = false
	return &identity, nil
}

func (d *PostgresDirectory) InvalidateSession(ctx context.Context, token string) error {
	if _, err := d.db.ExecContext(ctx, `SELECT invalidate_admin_session($1)`, token); err != nil {
		return fmt.Errorf("invalidate_admin_session: %w", err)
	}
	return nil
}

// scanLoginRow reads at most one login row. nil result with nil error means
// the procedure returned no rows (credentials rejected).
func scanLoginRow(rows *sql.Rows) (*models.LoginResult, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login result scan failed")
		}
		return nil, nil
	}

	var res models.LoginResult
	var role string
	if err := rows.Scan(
		&res.Identity.ID,
		&res.Identity.Email,
		&res.Identity.FullName,
		&role,
		&res.Identity.Active,
		&res.Identity.FirstLogin,
		&res.SessionToken,
	); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan login result")
	}
	res.Identity.Role = models.Role(role)
	return &res, nil
}
