package service

import "errors"

// ErrInvalidCredentials is the single generic login failure. It never reveals
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrDuplicateAccount is the generic uniqueness failure for registration. It
// deliberately does not say which field collided.
var ErrDuplicateAccount = errors.New("username or email already exists")

// ErrStudentNotFound indicates the delete target did not exist (a clean no-op).
var ErrStudentNotFound = errors.New("student not found")

// ErrCourseNotFound indicates the add-student form referenced a missing course.
var ErrCourseNotFound = errors.New("course not found")

// ValidationError is a field-level input rejection rendered inline by the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidationError unwraps err into a ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
