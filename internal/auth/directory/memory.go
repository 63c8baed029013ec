package directory

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/auth/models"
	dErrors "nyumba/pkg/domain-errors"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// MemoryDirectory is an in-process directory for development and tests. It
// keeps the same observable contract as the stored procedures: credentials
// are hashed (bcrypt), inactive admins cannot log in, and session tokens are
// opaque to callers. Tokens happen to be signed JWTs internally so validation
// needs no session table.
type MemoryDirectory struct {
	mu         sync.RWMutex
	admins     map[uuid.UUID]*memoryAdmin
	revoked    map[string]struct{} // revoked token ids
	signingKey []byte
	sessionTTL time.Duration
	now        func() time.Time
}

type memoryAdmin struct {
	identity     models.AdminIdentity
	passwordHash []byte
	pinHash      []byte // nil until a PIN is created
}

// MemoryOption configures the MemoryDirectory.
type MemoryOption func(*MemoryDirectory)

// WithSessionTTL overrides the default 24h token lifetime.
func WithSessionTTL(ttl time.Duration) MemoryOption {
	return func(d *MemoryDirectory) {
		if ttl > 0 {
			d.sessionTTL = ttl
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(d *MemoryDirectory) {
		d.now = now
	}
}

// NewMemory constructs an empty in-memory directory.
func NewMemory(signingKey string, opts ...MemoryOption) *MemoryDirectory {
	d := &MemoryDirectory{
		admins:     make(map[uuid.UUID]*memoryAdmin),
		revoked:    make(map[string]struct{}),
		signingKey: []byte(signingKey),
		sessionTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed registers an admin with a bcrypt-hashed password. Used by dev wiring
// and tests.
func (d *MemoryDirectory) Seed(identity models.AdminIdentity, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.admins[identity.ID] = &memoryAdmin{identity: identity, passwordHash: hash}
	return nil
}

func (d *MemoryDirectory) LoginWithPassword(ctx context.Context, email, password string) (*models.LoginResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, admin := range d.admins {
		if admin.identity.Email != email || !admin.identity.Active {
			continue
		}
		if bcrypt.CompareHashAndPassword(admin.passwordHash, []byte(password)) != nil {
			break
		}
		token, err := d.issueToken(admin.identity.ID)
		if err != nil {
			return nil, err
		}
		return &models.LoginResult{Identity: admin.identity, SessionToken: token}, nil
	}
	return nil, ErrInvalidCredentials
}

func (d *MemoryDirectory) LoginWithPIN(ctx context.Context, pin string) (*models.LoginResult, error) {
	if !pinPattern.MatchString(pin) {
		return nil, ErrInvalidPIN
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, admin := range d.admins {
		if admin.pinHash == nil || !admin.identity.Active {
			continue
		}
		if bcrypt.CompareHashAndPassword(admin.pinHash, []byte(pin)) != nil {
			continue
		}
		token, err := d.issueToken(admin.identity.ID)
		if err != nil {
			return nil, err
		}
		identity := admin.identity
		identity.FirstLogin = false
		return &models.LoginResult{Identity: identity, SessionToken: token}, nil
	}
	return nil, ErrInvalidPIN
}

func (d *MemoryDirectory) CreatePIN(ctx context.Context, adminID uuid.UUID, pin string) error {
	if !pinPattern.MatchString(pin) {
		return dErrors.New(dErrors.CodeValidation, "PIN must be exactly 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "hash pin")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	admin, ok := d.admins[adminID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "admin not found")
	}
	admin.pinHash = hash
	admin.identity.FirstLogin = false
	return nil
}

func (d *MemoryDirectory) ValidateSession(ctx context.Context, token string) (*models.AdminIdentity, error) {
	claims, err := d.parseToken(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, gone := d.revoked[claims.ID]; gone {
		return nil, ErrSessionInvalid
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	admin, ok := d.admins[adminID]
	if !ok || !admin.identity.Active {
		return nil, ErrSessionInvalid
	}

	identity := admin.identity
	identity.FirstLogin = false
	return &identity, nil
}

func (d *MemoryDirectory) InvalidateSession(ctx context.Context, token string) error {
	claims, err := d.parseToken(token)
	if err != nil {
		// Unknown tokens are already as invalid as they can get.
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[claims.ID] = struct{}{}
	return nil
}

func (d *MemoryDirectory) issueToken(adminID uuid.UUID) (string, error) {
	now := d.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   adminID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d.sessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign session token")
	}
	return token, nil
}

func (d *MemoryDirectory) parseToken(token string) (*jwt.RegisteredClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.signingKey, nil
	}, jwt.WithTimeFunc(d.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
