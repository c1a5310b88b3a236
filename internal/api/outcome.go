package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/faceauth/cli/internal/models"
	"github.com/faceauth/cli/internal/utils"
)

// Outcome tags the result of a service call
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRejected
	OutcomeNetworkFailure
	OutcomeNotAuthenticated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNetworkFailure:
		return "network_failure"
	case OutcomeNotAuthenticated:
		return "not_authenticated"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Classify maps an error returned by Client to its outcome.
// Errors of unknown type are treated as network failures.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, utils.ErrNotAuthenticated) {
		return OutcomeNotAuthenticated
	}
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		return OutcomeRejected
	}
	return OutcomeNetworkFailure
}

// fieldPriority orders field errors when picking the message to show
var fieldPriority = []string{
	"email",
	"password",
	"re_password",
	"code",
	"temp_token",
	"current_password",
	"new_password",
	"new_password2",
}

// newAPIError normalizes the error shapes the service uses: field-keyed
// message arrays, non_field_errors, detail, error and invalid.
func newAPIError(status int, fields map[string]json.RawMessage) *utils.APIError {
	apiErr := utils.NewAPIError(status, "")

	var body models.ErrorBody
	if fields != nil {
		// individual keys are decoded below; a shape mismatch on one key must not drop the rest
		decodeInto(fields, "error", &body.Error)
		decodeInto(fields, "detail", &body.Detail)
		decodeInto(fields, "non_field_errors", &body.NonFieldErrors)
		decodeInto(fields, "invalid", &body.Invalid)
	}

	apiErr.Detail = body.Detail
	apiErr.NonFieldErrors = body.NonFieldErrors
	apiErr.Invalid = body.Invalid

	_, hasDetail := fields["detail"]
	for key, raw := range fields {
		if !models.IsFieldKey(key) {
			continue
		}
		msgs, ok := fieldMessages(key, raw, hasDetail)
		if !ok || len(msgs) == 0 {
			continue
		}
		if apiErr.FieldErrors == nil {
			apiErr.FieldErrors = make(map[string][]string)
		}
		apiErr.FieldErrors[key] = msgs
	}

	apiErr.Message = rejectionMessage(apiErr, body.Error)
	return apiErr
}

// fieldMessages decodes the value of a field key. A bare string counts only
// for known form fields; next to "detail", a bare "code" is the machine code
// of that detail (token_not_valid and the like), not a form field.
func fieldMessages(key string, raw json.RawMessage, hasDetail bool) ([]string, bool) {
	if !knownField(key) || (key == "code" && hasDetail) {
		return models.FieldMessageList(raw)
	}
	return models.FieldMessages(raw)
}

func knownField(key string) bool {
	for _, k := range fieldPriority {
		if k == key {
			return true
		}
	}
	return false
}

func decodeInto(fields map[string]json.RawMessage, key string, dst interface{}) {
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

// rejectionMessage picks the most specific message:
// field error, then non-field error, then detail, then error, then a generic fallback.
func rejectionMessage(e *utils.APIError, legacyError string) string {
	if key := firstField(e.FieldErrors); key != "" {
		return e.FieldErrors[key][0]
	}
	if len(e.NonFieldErrors) > 0 && e.NonFieldErrors[0] != "" {
		return e.NonFieldErrors[0]
	}
	if e.Detail != "" {
		return e.Detail
	}
	if legacyError != "" {
		return legacyError
	}
	return fmt.Sprintf("request failed (HTTP %d)", e.StatusCode)
}

// firstField returns the highest priority key in fieldErrors
func firstField(fieldErrors map[string][]string) string {
	for _, key := range fieldPriority {
		if len(fieldErrors[key]) > 0 {
			return key
		}
	}

	rest := make([]string, 0, len(fieldErrors))
	for key, msgs := range fieldErrors {
		if len(msgs) > 0 {
			rest = append(rest, key)
		}
	}
	if len(rest) == 0 {
		return ""
	}
	sort.Strings(rest)
	return rest[0]
}

// FieldMessage returns the first message for a service field name
func FieldMessage(err error, field string) string {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) && len(apiErr.FieldErrors[field]) > 0 {
		return apiErr.FieldErrors[field][0]
	}
	return ""
}
