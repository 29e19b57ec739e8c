// Package authflow implements the login, signup, and email-verification
// flows, including the client-side validation that runs before any
// network call.
package authflow

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError is a client-side form error. It is handled at the form
// boundary and never reaches the gateway.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	icNoPattern  = regexp.MustCompile(`^[0-9][0-9-]*$`)
	codePattern  = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidateEmail checks the address shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return &ValidationError{Field: "email", Msg: "Please enter a valid email address."}
	}
	return nil
}

// ValidatePasswords checks the password pair entered on signup.
func ValidatePasswords(password, confirm string) error {
	if password == "" {
		return &ValidationError{Field: "password", Msg: "Password cannot be empty."}
	}
	if password != confirm {
		return &ValidationError{Field: "confirm_password", Msg: "Passwords do not match!"}
	}
	return nil
}

// ValidateICNo checks the identity / business registration number when
// one is provided.
func ValidateICNo(icNo string) error {
	if icNo == "" {
		return nil
	}
	if !icNoPattern.MatchString(icNo) {
		return &ValidationError{Field: "ic_no", Msg: fmt.Sprintf("Invalid IC / registration number %q.", icNo)}
	}
	return nil
}

// ValidateCode checks the 6-digit email verification code.
func ValidateCode(code string) error {
	if !codePattern.MatchString(strings.TrimSpace(code)) {
		return &ValidationError{Field: "code", Msg: "Enter the 6-digit code."}
	}
	return nil
}
