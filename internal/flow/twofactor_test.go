package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faceauth/cli/internal/models"
	"github.com/faceauth/cli/internal/utils"
)

func pendingStatus(secret string) func() (*models.TwoFAStatus, error) {
	return func() (*models.TwoFAStatus, error) {
		return &models.TwoFAStatus{
			QRCode:      "data:image/png;base64," + secret,
			BackupCodes: []string{"11111111", "22222222"},
			OTPAuthURL:  "otpauth://totp/FaceAuth:ada?secret=" + secret,
		}, nil
	}
}

func TestTwoFactorEnableWithEmptyCode(t *testing.T) {
	svc := newFakeService()
	s := NewTwoFactorSettings(svc, nil)

	err := s.Enable(context.Background(), "   ")

	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Zero(t, svc.count("confirm"))

	st := s.Snapshot()
	require.Equal(t, MsgCodeRequired, st.Message)
	require.True(t, st.IsError)
}

func TestTwoFactorConfigureAndEnable(t *testing.T) {
	svc := newFakeService()
	svc.status = pendingStatus("AAAA")
	var gotCode *string
	var gotEnable bool
	svc.confirm = func(code *string, enable bool) error {
		gotCode, gotEnable = code, enable
		return nil
	}
	s := NewTwoFactorSettings(svc, nil)

	require.NoError(t, s.StartConfiguration(context.Background()))

	st := s.Snapshot()
	require.True(t, st.Configuring)
	require.False(t, st.Enabled)
	require.NotNil(t, st.Enrollment)
	require.Equal(t, []string{"11111111", "22222222"}, st.Enrollment.BackupCodes)
	require.Equal(t, 1, svc.count("status"))

	require.NoError(t, s.Enable(context.Background(), "123456"))
	require.NotNil(t, gotCode)
	require.Equal(t, "123456", *gotCode)
	require.True(t, gotEnable)

	st = s.Snapshot()
	require.True(t, st.Enabled)
	require.False(t, st.Configuring)
	require.Equal(t, MsgTwoFactorEnabled, st.Message)
	require.False(t, st.IsError)
	require.Equal(t, 1, svc.count("status"), "enabling does not re-fetch")
}

func TestTwoFactorEnableRejectedStaysConfiguring(t *testing.T) {
	svc := newFakeService()
	svc.status = pendingStatus("AAAA")
	svc.confirm = func(*string, bool) error {
		return &utils.APIError{StatusCode: 400, Message: "Invalid code"}
	}
	s := NewTwoFactorSettings(svc, nil)
	require.NoError(t, s.StartConfiguration(context.Background()))

	require.Error(t, s.Enable(context.Background(), "000000"))

	st := s.Snapshot()
	require.True(t, st.Configuring)
	require.False(t, st.Enabled)
	require.Equal(t, "Invalid code", st.Message)
	require.True(t, st.IsError)
	require.False(t, st.Busy)
}

func TestTwoFactorDisableFetchesFreshSecret(t *testing.T) {
	svc := newFakeService()
	svc.status = func() (*models.TwoFAStatus, error) {
		return &models.TwoFAStatus{IsEnabled: true}, nil
	}
	var gotCode *string
	gotEnable := true
	svc.confirm = func(code *string, enable bool) error {
		gotCode, gotEnable = code, enable
		return nil
	}
	s := NewTwoFactorSettings(svc, nil)

	require.NoError(t, s.StartConfiguration(context.Background()))
	st := s.Snapshot()
	require.True(t, st.Enabled)
	require.False(t, st.Configuring, "an enabled factor is not reconfigured")

	svc.status = pendingStatus("BBBB")
	require.NoError(t, s.Disable(context.Background()))

	require.Nil(t, gotCode, "disabling omits the code")
	require.False(t, gotEnable)
	require.Equal(t, 2, svc.count("status"))

	st = s.Snapshot()
	require.False(t, st.Enabled)
	require.NotNil(t, st.Enrollment)
	require.Contains(t, st.Enrollment.OTPAuthURL, "BBBB")
	require.Equal(t, MsgTwoFactorDisabled, st.Message)
}

func TestTwoFactorDisableFailureKeepsState(t *testing.T) {
	svc := newFakeService()
	svc.status = func() (*models.TwoFAStatus, error) {
		return &models.TwoFAStatus{IsEnabled: true}, nil
	}
	svc.confirm = func(*string, bool) error {
		return &utils.NetworkError{Op: "2fa/confirm", Err: errors.New("reset by peer")}
	}
	s := NewTwoFactorSettings(svc, nil)
	require.NoError(t, s.Refresh(context.Background()))

	require.Error(t, s.Disable(context.Background()))

	st := s.Snapshot()
	require.True(t, st.Enabled)
	require.Equal(t, MsgConnection, st.Message)
	require.Equal(t, 1, svc.count("status"))
}

func TestTwoFactorNotAuthenticated(t *testing.T) {
	svc := newFakeService()
	svc.status = func() (*models.TwoFAStatus, error) {
		return nil, utils.ErrNotAuthenticated
	}
	s := NewTwoFactorSettings(svc, nil)

	require.ErrorIs(t, s.Refresh(context.Background()), utils.ErrNotAuthenticated)
	st := s.Snapshot()
	require.False(t, st.Loaded)
	require.Equal(t, MsgNotAuthenticated, st.Message)
}

func TestTwoFactorReset(t *testing.T) {
	svc := newFakeService()
	svc.status = pendingStatus("AAAA")
	s := NewTwoFactorSettings(svc, nil)
	require.NoError(t, s.StartConfiguration(context.Background()))

	s.Reset()

	st := s.Snapshot()
	require.Nil(t, st.Enrollment)
	require.False(t, st.Configuring)
	require.False(t, st.Loaded)
	require.Empty(t, st.Message)
}

func TestTwoFactorRefreshInFlight(t *testing.T) {
	svc := newFakeService()
	entered := make(chan struct{})
	release := make(chan struct{})
	svc.status = func() (*models.TwoFAStatus, error) {
		close(entered)
		<-release
		return &models.TwoFAStatus{}, nil
	}
	s := NewTwoFactorSettings(svc, nil)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	<-entered

	require.ErrorIs(t, s.Enable(context.Background(), "123456"), ErrSubmitInFlight)
	require.Zero(t, svc.count("confirm"))

	s.Reset()
	require.True(t, s.Snapshot().Busy)
	require.ErrorIs(t, s.Refresh(context.Background()), ErrSubmitInFlight)
	require.ErrorIs(t, s.Disable(context.Background()), ErrSubmitInFlight)
	require.Equal(t, 1, svc.count("status"))
	require.Zero(t, svc.count("confirm"))

	close(release)
	require.ErrorIs(t, <-done, ErrSuperseded)
	require.False(t, s.Snapshot().Loaded)
	require.False(t, s.Snapshot().Busy)

	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, 2, svc.count("status"))
}
