package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"nyumba/internal/activity"
	"nyumba/internal/auth/directory"
	"nyumba/internal/auth/models"
	"nyumba/internal/platform/middleware"
	dErrors "nyumba/pkg/domain-errors"
)

func (s *ManagerSuite) TestLoginSuccess() {
	ctx := context.Background()
	login := s.newLoginResult(false)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), "admin@example.com", "s3cret").
		Return(login, nil)

	res, err := s.manager.Login(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(login.SessionToken, res.Token)
	s.Require().NotNil(res.Identity)
	s.Equal(login.Identity.ID, res.Identity.ID)

	s.Equal(models.StateAuthenticated, s.manager.State())
	s.Require().NotNil(s.manager.Identity())
	s.Equal(login.Identity.ID, s.manager.Identity().ID)
	s.Equal(login.SessionToken, s.manager.Token())

	stored, err := s.tokens.Load(ctx)
	s.Require().NoError(err)
	s.Equal(login.SessionToken, stored)

	entries, err := s.activityStore.List(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(activity.TypeAdminLogin, entries[0].Type)
	s.Equal("password", entries[0].Metadata["method"])
	s.Equal(login.Identity.Email, entries[0].Metadata["email"])
	s.Equal("unknown", entries[0].Metadata["device"])
}

func (s *ManagerSuite) TestLoginRecordsDeviceSummary() {
	login := s.newLoginResult(false)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(login, nil)

	ctx := middleware.WithDevice(context.Background(), middleware.Device{
		Browser:  "Firefox",
		OS:       "Ubuntu",
		Platform: "desktop",
	})
	res, err := s.manager.Login(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)
	s.True(res.Success)

	entries, err := s.activityStore.List(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Firefox/Ubuntu/desktop", entries[0].Metadata["device"])
}

func (s *ManagerSuite) TestLoginFirstLoginEntersPinSetup() {
	login := s.newLoginResult(true)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(login, nil)

	res, err := s.manager.Login(context.Background(), "admin@example.com", "s3cret")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(models.StateFirstLoginPendingPinSetup, s.manager.State())
}

func (s *ManagerSuite) TestLoginTrimsEmail() {
	login := s.newLoginResult(false)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), "admin@example.com", "s3cret").
		Return(login, nil)

	res, err := s.manager.Login(context.Background(), "  admin@example.com  ", "s3cret")
	s.Require().NoError(err)
	s.True(res.Success)
}

func (s *ManagerSuite) TestLoginInvalidCredentials() {
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, directory.ErrInvalidCredentials)

	res, err := s.manager.Login(context.Background(), "admin@example.com", "wrong")
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal("Invalid email or password", res.Message)
	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.Nil(s.manager.Identity())
}

func (s *ManagerSuite) TestLoginBlankInputs() {
	res, err := s.manager.Login(context.Background(), "   ", "")
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal("Email and password are required", res.Message)
}

func (s *ManagerSuite) TestLoginDirectoryFailure() {
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := s.manager.Login(context.Background(), "admin@example.com", "s3cret")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(models.StateUnauthenticated, s.manager.State())
}
