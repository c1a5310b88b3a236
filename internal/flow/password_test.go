package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faceauth/cli/internal/utils"
)

func TestPasswordChangeLocalChecks(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		message string
		invalid []Field
	}{
		{
			name:    "current missing",
			next:    "x",
			confirm: "y",
			message: MsgCurrentRequired,
			invalid: []Field{FieldCurrentPassword},
		},
		{
			name:    "mismatch",
			current: "Oldpass1!",
			next:    "Newpass1!",
			confirm: "Newpass2!",
			message: MsgPasswordMismatch,
			invalid: []Field{FieldConfirmNewPassword, FieldNewPassword},
		},
		{
			name:    "weak",
			current: "Oldpass1!",
			next:    "Newpassword1",
			confirm: "Newpassword1",
			message: utils.ErrPasswordNoSymbol.Error(),
			invalid: []Field{FieldNewPassword},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			p := NewPasswordChange(svc, nil)
			p.SetCurrent(tt.current)
			p.SetNew(tt.next)
			p.SetConfirm(tt.confirm)

			var verr *utils.ValidationError
			require.ErrorAs(t, p.Submit(context.Background()), &verr)
			require.Zero(t, svc.count("change_password"))

			st := p.Snapshot()
			require.Equal(t, tt.message, st.Message)
			require.True(t, st.IsError)
			require.Equal(t, tt.invalid, st.Invalid.Sorted())
		})
	}
}

func TestPasswordChangeSuccess(t *testing.T) {
	svc := newFakeService()
	var got [3]string
	svc.changePassword = func(current, next, confirm string) (string, error) {
		got = [3]string{current, next, confirm}
		return "Password updated successfully.", nil
	}
	p := NewPasswordChange(svc, nil)
	p.SetCurrent("Oldpass1!")
	p.SetNew("Newpass1!")
	p.SetConfirm("Newpass1!")

	require.NoError(t, p.Submit(context.Background()))
	require.Equal(t, [3]string{"Oldpass1!", "Newpass1!", "Newpass1!"}, got)

	st := p.Snapshot()
	require.Empty(t, st.Current)
	require.Empty(t, st.New)
	require.Empty(t, st.Confirm)
	require.Equal(t, "Password updated successfully.", st.Message)
	require.False(t, st.IsError)
	require.Empty(t, st.Invalid)
}

func TestPasswordChangeDefaultMessage(t *testing.T) {
	p := NewPasswordChange(newFakeService(), nil)
	p.SetCurrent("Oldpass1!")
	p.SetNew("Newpass1!")
	p.SetConfirm("Newpass1!")

	require.NoError(t, p.Submit(context.Background()))
	require.Equal(t, MsgPasswordChanged, p.Snapshot().Message)
}

func TestPasswordChangeRejected(t *testing.T) {
	svc := newFakeService()
	svc.changePassword = func(string, string, string) (string, error) {
		return "", &utils.APIError{
			StatusCode: 400,
			Message:    "Current password is incorrect.",
			FieldErrors: map[string][]string{
				"current_password": {"Current password is incorrect."},
				"new_password2":    {"Too similar."},
			},
		}
	}
	p := NewPasswordChange(svc, nil)
	p.SetCurrent("Wrong1!aa")
	p.SetNew("Newpass1!")
	p.SetConfirm("Newpass1!")

	require.Error(t, p.Submit(context.Background()))

	st := p.Snapshot()
	require.Equal(t, "Current password is incorrect.", st.Message)
	require.True(t, st.IsError)
	require.Equal(t, []Field{FieldConfirmNewPassword, FieldCurrentPassword}, st.Invalid.Sorted())
	require.Equal(t, "Wrong1!aa", st.Current, "fields are kept for correction")
	require.False(t, st.Busy)
}

func TestPasswordChangeNetworkFailure(t *testing.T) {
	svc := newFakeService()
	svc.changePassword = func(string, string, string) (string, error) {
		return "", &utils.NetworkError{Op: "change_password", Err: errors.New("no route to host")}
	}
	p := NewPasswordChange(svc, nil)
	p.SetCurrent("Oldpass1!")
	p.SetNew("Newpass1!")
	p.SetConfirm("Newpass1!")

	require.Error(t, p.Submit(context.Background()))
	require.Equal(t, MsgConnection, p.Snapshot().Message)
}

func TestPasswordChangeInFlight(t *testing.T) {
	svc := newFakeService()
	entered := make(chan struct{})
	release := make(chan struct{})
	svc.changePassword = func(string, string, string) (string, error) {
		close(entered)
		<-release
		return "", nil
	}
	p := NewPasswordChange(svc, nil)
	p.SetCurrent("Oldpass1!")
	p.SetNew("Newpass1!")
	p.SetConfirm("Newpass1!")

	done := make(chan error, 1)
	go func() { done <- p.Submit(context.Background()) }()
	<-entered

	require.True(t, p.Snapshot().Busy)
	require.ErrorIs(t, p.Submit(context.Background()), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 1, svc.count("change_password"))
}

func TestPasswordChangeResetWhileInFlight(t *testing.T) {
	svc := newFakeService()
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	svc.changePassword = func(string, string, string) (string, error) {
		entered <- struct{}{}
		<-release
		return "", nil
	}
	p := NewPasswordChange(svc, nil)
	fill := func() {
		p.SetCurrent("Oldpass1!")
		p.SetNew("Newpass1!")
		p.SetConfirm("Newpass1!")
	}
	fill()

	done := make(chan error, 1)
	go func() { done <- p.Submit(context.Background()) }()
	<-entered

	p.Reset()
	fill()
	require.True(t, p.Snapshot().Busy)
	require.ErrorIs(t, p.Submit(context.Background()), ErrSubmitInFlight)
	require.Equal(t, 1, svc.count("change_password"))

	close(release)
	require.ErrorIs(t, <-done, ErrSuperseded)
	st := p.Snapshot()
	require.False(t, st.Busy)
	require.Empty(t, st.Message)
	require.Equal(t, "Oldpass1!", st.Current)

	require.NoError(t, p.Submit(context.Background()))
	require.Equal(t, 2, svc.count("change_password"))
}
