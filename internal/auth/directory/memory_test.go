package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"nyumba/internal/auth/models"
)

type MemoryDirectorySuite struct {
	suite.Suite
	directory *MemoryDirectory
	admin     models.AdminIdentity
	now       time.Time
}

func (s *MemoryDirectorySuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.directory = NewMemory("test-signing-key",
		WithSessionTTL(time.Hour),
		WithClock(func() time.Time { return s.now }),
	)
	s.admin = models.AdminIdentity{
		ID:         uuid.New(),
		Email:      "admin@example.com",
		FullName:   "Sam Admin",
		Role:       models.RoleAdmin,
		Active:     true,
		FirstLogin: true,
	}
	s.Require().NoError(s.directory.Seed(s.admin, "s3cret"))
}

func (s *MemoryDirectorySuite) TestPasswordLogin() {
	res, err := s.directory.LoginWithPassword(context.Background(), "admin@example.com", "s3cret")
	s.Require().NoError(err)
	s.Equal(s.admin.ID, res.Identity.ID)
	s.True(res.Identity.FirstLogin)
	s.NotEmpty(res.SessionToken)
}

func (s *MemoryDirectorySuite) TestPasswordLoginWrongPassword() {
	_, err := s.directory.LoginWithPassword(context.Background(), "admin@example.com", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *MemoryDirectorySuite) TestPasswordLoginUnknownEmail() {
	_, err := s.directory.LoginWithPassword(context.Background(), "nobody@example.com", "s3cret")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *MemoryDirectorySuite) TestInactiveAdminCannotLogIn() {
	inactive := models.AdminIdentity{
		ID:     uuid.New(),
		Email:  "former@example.com",
		Role:   models.RoleAdmin,
		Active: false,
	}
	s.Require().NoError(s.directory.Seed(inactive, "s3cret"))

	_, err := s.directory.LoginWithPassword(context.Background(), "former@example.com", "s3cret")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *MemoryDirectorySuite) TestPinLoginAfterCreatePIN() {
	ctx := context.Background()
	_, err := s.directory.LoginWithPIN(ctx, "4821")
	s.ErrorIs(err, ErrInvalidPIN)

	s.Require().NoError(s.directory.CreatePIN(ctx, s.admin.ID, "4821"))

	res, err := s.directory.LoginWithPIN(ctx, "4821")
	s.Require().NoError(err)
	s.Equal(s.admin.ID, res.Identity.ID)
	s.False(res.Identity.FirstLogin)

	_, err = s.directory.LoginWithPIN(ctx, "9999")
	s.ErrorIs(err, ErrInvalidPIN)
}

func (s *MemoryDirectorySuite) TestCreatePINValidation() {
	ctx := context.Background()
	err := s.directory.CreatePIN(ctx, s.admin.ID, "12345")
	s.Require().Error(err)

	err = s.directory.CreatePIN(ctx, uuid.New(), "4821")
	s.Require().Error(err)
}

func (s *MemoryDirectorySuite) TestValidateSession() {
	ctx := context.Background()
	res, err := s.directory.LoginWithPassword(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)

	identity, err := s.directory.ValidateSession(ctx, res.SessionToken)
	s.Require().NoError(err)
	s.Equal(s.admin.ID, identity.ID)
}

func (s *MemoryDirectorySuite) TestValidateSessionGarbageToken() {
	_, err := s.directory.ValidateSession(context.Background(), "not-a-token")
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *MemoryDirectorySuite) TestValidateSessionExpires() {
	ctx := context.Background()
	res, err := s.directory.LoginWithPassword(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)

	s.now = s.now.Add(2 * time.Hour)
	_, err = s.directory.ValidateSession(ctx, res.SessionToken)
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *MemoryDirectorySuite) TestInvalidateSessionRevokesOneToken() {
	ctx := context.Background()
	first, err := s.directory.LoginWithPassword(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)
	second, err := s.directory.LoginWithPassword(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)

	s.Require().NoError(s.directory.InvalidateSession(ctx, first.SessionToken))

	_, err = s.directory.ValidateSession(ctx, first.SessionToken)
	s.ErrorIs(err, ErrSessionInvalid)

	_, err = s.directory.ValidateSession(ctx, second.SessionToken)
	s.NoError(err)
}

func (s *MemoryDirectorySuite) TestInvalidateSessionUnknownToken() {
	s.NoError(s.directory.InvalidateSession(context.Background(), "garbage"))
}

func TestMemoryDirectorySuite(t *testing.T) {
	suite.Run(t, new(MemoryDirectorySuite))
}
