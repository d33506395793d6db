// Package errors provides structured error handling for the activities service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Activity errors
	CodeActivityNameEmpty     Code = "ACTIVITY_NAME_EMPTY"
	CodeActivityInvalidMax    Code = "ACTIVITY_INVALID_MAX_PARTICIPANTS"
	CodeActivityNotFound      Code = "ACTIVITY_NOT_FOUND"
	CodeActivityAlreadyExists Code = "ACTIVITY_ALREADY_EXISTS"
	CodeActivityFull          Code = "ACTIVITY_FULL"

	// Signup errors
	CodeSignupEmailEmpty    Code = "SIGNUP_EMAIL_EMPTY"
	CodeSignupEmailInvalid  Code = "SIGNUP_EMAIL_INVALID"
	CodeSignupDuplicate     Code = "SIGNUP_DUPLICATE"
	CodeSignupNotRegistered Code = "SIGNUP_NOT_REGISTERED"

	// Staff session errors
	CodeStaffSessionInvalid  Code = "STAFF_SESSION_INVALID"
	CodeStaffSessionExpired  Code = "STAFF_SESSION_EXPIRED"
	CodeStaffSessionRequired Code = "STAFF_SESSION_REQUIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps the code to an HTTP response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeActivityNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeActivityNameEmpty, CodeActivityInvalidMax, CodeActivityFull,
		CodeSignupEmailEmpty, CodeSignupEmailInvalid, CodeSignupDuplicate,
		CodeSignupNotRegistered:
		return http.StatusBadRequest
	case CodeActivityAlreadyExists:
		return http.StatusConflict
	case CodeStaffSessionInvalid, CodeStaffSessionExpired, CodeStaffSessionRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
