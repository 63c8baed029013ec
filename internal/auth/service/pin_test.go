package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"nyumba/internal/activity"
	"nyumba/internal/auth/directory"
	"nyumba/internal/auth/models"
	dErrors "nyumba/pkg/domain-errors"
)

func (s *ManagerSuite) TestLoginWithPINSuccess() {
	login := s.newLoginResult(false)
	s.mockDirectory.EXPECT().
		LoginWithPIN(gomock.Any(), "4821").
		Return(login, nil)

	res, err := s.manager.LoginWithPIN(context.Background(), "4821")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(models.StateAuthenticated, s.manager.State())

	entries, err := s.activityStore.List(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("pin", entries[0].Metadata["method"])
}

func (s *ManagerSuite) TestLoginWithPINMalformed() {
	// No directory expectation: a malformed PIN never leaves the process.
	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		res, err := s.manager.LoginWithPIN(context.Background(), pin)
		s.Require().NoError(err)
		s.False(res.Success)
		s.Equal("PIN must be exactly 4 digits", res.Message)
	}
	s.Equal(models.StateUnauthenticated, s.manager.State())
}

func (s *ManagerSuite) TestLoginWithPINRejected() {
	s.mockDirectory.EXPECT().
		LoginWithPIN(gomock.Any(), "0000").
		Return(nil, directory.ErrInvalidPIN)

	res, err := s.manager.LoginWithPIN(context.Background(), "0000")
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal("Invalid PIN", res.Message)
	s.Equal(models.StateUnauthenticated, s.manager.State())
}

func (s *ManagerSuite) TestCreatePINRequiresIdentity() {
	_, err := s.manager.CreatePIN(context.Background(), "4821")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func (s *ManagerSuite) TestCreatePINLiftsFirstLoginGate() {
	ctx := context.Background()
	login := s.newLoginResult(true)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(login, nil)
	s.mockDirectory.EXPECT().
		CreatePIN(gomock.Any(), login.Identity.ID, "4821").
		Return(nil)

	_, err := s.manager.Login(ctx, "admin@example.com", "s3cret")
	s.Require().NoError(err)
	s.Equal(models.StateFirstLoginPendingPinSetup, s.manager.State())

	res, err := s.manager.CreatePIN(ctx, "4821")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(models.StateAuthenticated, s.manager.State())
	s.Require().NotNil(s.manager.Identity())
	s.False(s.manager.Identity().FirstLogin)

	entries, err := s.activityStore.List(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(activity.TypePinCreated, entries[0].Type)
}

func (s *ManagerSuite) TestCreatePINMalformed() {
	login := s.newLoginResult(false)
	s.mockDirectory.EXPECT().
		LoginWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(login, nil)

	_, err := s.manager.Login(context.Background(), "admin@example.com", "s3cret")
	s.Require().NoError(err)

	res, err := s.manager.CreatePIN(context.Background(), "48215")
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal("PIN must be exactly 4 digits", res.Message)
}
