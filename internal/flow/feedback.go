package flow

import (
	"errors"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/utils"
)

// Mood is the expression of the avatar face
type Mood string

const (
	MoodIdle      Mood = "idle"
	MoodHappy     Mood = "happy"
	MoodPeek      Mood = "peek"
	MoodConcern   Mood = "concern"
	MoodConfident Mood = "confident"
	MoodFlip      Mood = "flip"
	MoodSuccess   Mood = "success"
	MoodSad       Mood = "sad"
	MoodDizzy     Mood = "dizzy"
)

// User-facing messages
const (
	MsgInvalidEmail      = "Invalid email address"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgCodeTooShort      = "Code is too short"
	MsgCodeRequired      = "Enter the code from your authenticator app"
	MsgConnection        = "Could not connect to the server"
	MsgNotAuthenticated  = "You are not logged in"
	MsgAccountCreated    = "Account created, you can log in now"
	MsgSessionNotSaved   = "Could not save the session"
	MsgTwoFactorRequired = "Enter the code from your authenticator app or a backup code"
	MsgTwoFactorEnabled  = "Two-factor authentication enabled"
	MsgTwoFactorDisabled = "Two-factor authentication disabled"
	MsgCurrentRequired   = "Enter your current password"
	MsgPasswordChanged   = "Password changed"
	MsgRequestRejected   = "The request was rejected"
)

// Feedback is what a form shows the user after an action
type Feedback struct {
	Message string
	IsError bool
	Invalid FieldSet
	Mood    Mood
}

func (f Feedback) clone() Feedback {
	f.Invalid = f.Invalid.clone()
	return f
}

// describeFailure turns a service error into a message and the fields to mark
func describeFailure(err error) (string, FieldSet) {
	switch api.Classify(err) {
	case api.OutcomeRejected:
		var apiErr *utils.APIError
		errors.As(err, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = MsgRequestRejected
		}
		return msg, fieldsFromError(err)
	case api.OutcomeNotAuthenticated:
		return MsgNotAuthenticated, NewFieldSet()
	default:
		return MsgConnection, NewFieldSet()
	}
}
