package flow

import (
	"errors"
	"sort"

	"github.com/faceauth/cli/internal/utils"
)

// Field names an input that can be marked invalid
type Field string

const (
	FieldEmail              Field = "email"
	FieldPassword           Field = "password"
	FieldConfirmPassword    Field = "confirmPassword"
	FieldCode               Field = "code"
	FieldCurrentPassword    Field = "currentPassword"
	FieldNewPassword        Field = "newPassword"
	FieldConfirmNewPassword Field = "confirmNewPassword"
)

// serviceFields maps the service's field keys to form fields
var serviceFields = map[string]Field{
	"email":              FieldEmail,
	"password":           FieldPassword,
	"re_password":        FieldConfirmPassword,
	"confirmPassword":    FieldConfirmPassword,
	"code":               FieldCode,
	"current_password":   FieldCurrentPassword,
	"currentPassword":    FieldCurrentPassword,
	"new_password":       FieldNewPassword,
	"newPassword":        FieldNewPassword,
	"new_password2":      FieldConfirmNewPassword,
	"confirmNewPassword": FieldConfirmNewPassword,
}

// FieldSet is a set of invalid fields
type FieldSet map[Field]struct{}

// NewFieldSet returns a set holding fields
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is in the set
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the fields in lexical order
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s FieldSet) clone() FieldSet {
	out := make(FieldSet, len(s))
	for f := range s {
		out[f] = struct{}{}
	}
	return out
}

// fieldsFromError collects the form fields a rejection implicates.
// Keys the forms do not know are ignored.
func fieldsFromError(err error) FieldSet {
	set := NewFieldSet()
	var apiErr *utils.APIError
	if !errors.As(err, &apiErr) {
		return set
	}
	for _, key := range apiErr.Fields() {
		if f, ok := serviceFields[key]; ok {
			set[f] = struct{}{}
		}
	}
	return set
}
