package models

import "encoding/json"

// StatusResponse is the body of calls that only acknowledge success
type StatusResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// ErrorBody holds the error shapes the service may answer with.
// Any other top-level key is treated as a field error.
type ErrorBody struct {
	OK             *bool    `json:"ok,omitempty"`
	Error          string   `json:"error,omitempty"`
	Detail         string   `json:"detail,omitempty"`
	NonFieldErrors []string `json:"non_field_errors,omitempty"`
	Invalid        []string `json:"invalid,omitempty"`
}

// reservedKeys are body keys that never name a form field
var reservedKeys = map[string]bool{
	"ok":               true,
	"error":            true,
	"detail":           true,
	"details":          true,
	"non_field_errors": true,
	"invalid":          true,
	"message":          true,
	"trace":            true,
	"token":            true,
	"refresh":          true,
	"2fa_required":     true,
	"messages":         true,
}

// IsFieldKey reports whether a top-level body key can carry field errors
func IsFieldKey(key string) bool {
	return !reservedKeys[key]
}

// FieldMessages decodes a field error value, which is either a list of strings or a single string
func FieldMessages(raw json.RawMessage) ([]string, bool) {
	if msgs, ok := FieldMessageList(raw); ok {
		return msgs, true
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}, true
	}
	return nil, false
}

// FieldMessageList decodes a field error value only when it is a list of strings
func FieldMessageList(raw json.RawMessage) ([]string, bool) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	msgs := list[:0]
	for _, msg := range list {
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs, len(msgs) > 0
}
