// Package web - Input validation for web handlers
//
// EDUCATIONAL NOTES:
// ------------------
// Records inserted over HTTP must also be expressible in the shell, where
// tokens are split on whitespace. Validating here gives clear 400 errors
// instead of rows that can never be typed back in.

package web

import (
	"errors"
	"regexp"
)

// fieldPattern matches a non-empty value without whitespace or control
// characters.
var fieldPattern = regexp.MustCompile(`^[^\s\x00-\x1f\x7f]+$`)

// IsValidField checks if a string can be stored as a username or email.
//
// Examples:
//
//	IsValidField("alice")             // true
//	IsValidField("alice@example.com") // true
//	IsValidField("has space")         // false
//	IsValidField("")                  // false
func IsValidField(s string) bool {
	return fieldPattern.MatchString(s)
}

// ValidateInsert checks an insert request. Over-long values are accepted
// and truncated by the codec.
func ValidateInsert(req InsertRequest) error {
	var errs []error
	if req.ID == nil {
		errs = append(errs, errors.New("id is required"))
	}
	if !IsValidField(req.Username) {
		errs = append(errs, errors.New("username must be non-empty and contain no whitespace"))
	}
	if !IsValidField(req.Email) {
		errs = append(errs, errors.New("email must be non-empty and contain no whitespace"))
	}
	return errors.Join(errs...)
}
