package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"nyumba/internal/auth/directory"
	"nyumba/internal/auth/models"
	dErrors "nyumba/pkg/domain-errors"
)

func (s *ManagerSuite) login() *models.LoginResult {
	login := s.newLoginResult(false)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(login, nil)
	_, err := s.manager.Login(context.Background(), "admin@example.com", "s3cret")
	s.Require().NoError(err)
	return login
}

func (s *ManagerSuite) TestLogoutClearsEverything() {
	ctx := context.Background()
	login := s.login()
	s.mockDirectory.EXPECT().InvalidateSession(gomock.Any(), login.SessionToken).Return(nil)

	s.manager.Logout(ctx)

	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.Nil(s.manager.Identity())
	s.Empty(s.manager.Token())

	stored, err := s.tokens.Load(ctx)
	s.Require().NoError(err)
	s.Empty(stored)
}

func (s *ManagerSuite) TestLogoutClearsLocallyWhenDirectoryFails() {
	login := s.login()
	s.mockDirectory.EXPECT().
		InvalidateSession(gomock.Any(), login.SessionToken).
		Return(errors.New("connection refused"))

	s.manager.Logout(context.Background())

	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.Empty(s.manager.Token())
}

func (s *ManagerSuite) TestLogoutWithoutSession() {
	// No directory expectation: there is no token to invalidate.
	s.manager.Logout(context.Background())
	s.Equal(models.StateUnauthenticated, s.manager.State())
}

func (s *ManagerSuite) TestResumeRestoresPersistedSession() {
	ctx := context.Background()
	identity := s.newIdentity(false)
	s.Require().NoError(s.tokens.Save(ctx, "persisted-token"))
	s.mockDirectory.EXPECT().
		ValidateSession(gomock.Any(), "persisted-token").
		Return(&identity, nil)

	res, err := s.manager.Resume(ctx)
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(models.StateAuthenticated, s.manager.State())
	s.Require().NotNil(s.manager.Identity())
	s.Equal(identity.ID, s.manager.Identity().ID)
	s.Equal("persisted-token", s.manager.Token())
}

func (s *ManagerSuite) TestResumeWithoutStoredToken() {
	res, err := s.manager.Resume(context.Background())
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal("No stored session", res.Message)
	s.Equal(models.StateUnauthenticated, s.manager.State())
}

func (s *ManagerSuite) TestResumeExpiredSessionClearsToken() {
	ctx := context.Background()
	s.Require().NoError(s.tokens.Save(ctx, "expired-token"))
	s.mockDirectory.EXPECT().
		ValidateSession(gomock.Any(), "expired-token").
		Return(nil, directory.ErrSessionInvalid)

	res, err := s.manager.Resume(ctx)
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal("Session expired", res.Message)
	s.Equal(models.StateUnauthenticated, s.manager.State())

	stored, err := s.tokens.Load(ctx)
	s.Require().NoError(err)
	s.Empty(stored)
}

func (s *ManagerSuite) TestResumeUnverifiableSession() {
	ctx := context.Background()
	s.Require().NoError(s.tokens.Save(ctx, "some-token"))
	s.mockDirectory.EXPECT().
		ValidateSession(gomock.Any(), "some-token").
		Return(nil, errors.New("connection refused"))

	_, err := s.manager.Resume(ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.Empty(s.manager.Token())
}

func (s *ManagerSuite) TestValidateTokenLeavesStateAlone() {
	identity := s.newIdentity(false)
	s.mockDirectory.EXPECT().
		ValidateSession(gomock.Any(), "bearer-token").
		Return(&identity, nil)

	adminID, err := s.manager.ValidateToken(context.Background(), "bearer-token")
	s.Require().NoError(err)
	s.Equal(identity.ID.String(), adminID)
	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.Nil(s.manager.Identity())
}

// Introspection answers for the presented token only. A token belonging to a
// different session than the manager's current one resolves to that token's
// own identity, never to the manager's.
func (s *ManagerSuite) TestIdentityForTokenIgnoresManagerSession() {
	s.login()

	other := s.newIdentity(false)
	other.Email = "other@example.com"
	s.mockDirectory.EXPECT().
		ValidateSession(gomock.Any(), "other-token").
		Return(&other, nil)

	identity, err := s.manager.IdentityForToken(context.Background(), "other-token")
	s.Require().NoError(err)
	s.Equal(other.ID, identity.ID)
	s.Equal("other@example.com", identity.Email)
}

func (s *ManagerSuite) TestIdentityForTokenInvalid() {
	s.mockDirectory.EXPECT().
		ValidateSession(gomock.Any(), "stale-token").
		Return(nil, directory.ErrSessionInvalid)

	_, err := s.manager.IdentityForToken(context.Background(), "stale-token")
	s.ErrorIs(err, directory.ErrSessionInvalid)
}
