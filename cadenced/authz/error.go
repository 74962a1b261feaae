package authz

import (
	"errors"
	"flag"
	"fmt"
)

const (
	// errUnauthorized is the error message returned to clients when an
	// action is forbidden. It is intentionally vague to prevent disclosing
	// information that a client should not have access to.
	errUnauthorized = "authz: forbidden"
)

// UnauthorizedError is the distinguishable "not authorized" signal for a
// normal deny. It is the engine functioning correctly, not a system fault;
// callers convert it into a user-facing forbidden response.
type UnauthorizedError struct {
	// internal is the detailed reason. It is never shown to the client.
	internal error

	subject Subject
	action  Action
	object  Object
}

// ForbiddenWithInternal creates a deny that returns a bare "forbidden" to
// the client while logging the detailed reason internally.
func ForbiddenWithInternal(internal error, subject Subject, action Action, object Object) *UnauthorizedError {
	return &UnauthorizedError{
		internal: internal,
		subject:  subject,
		action:   action,
		object:   object,
	}
}

func (e *UnauthorizedError) Unwrap() error {
	return e.internal
}

func (e *UnauthorizedError) longError() string {
	return fmt.Sprintf(
		"%s: (action: %v), (object: %v), (internal: %v)",
		errUnauthorized, e.action, e.object, e.internal,
	)
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	if flag.Lookup("test.v") != nil {
		return e.longError()
	}
	return errUnauthorized
}

// Internal allows the internal error message to be logged.
func (e *UnauthorizedError) Internal() error {
	return e.internal
}

// IsUnauthorizedError is a convenience function to check if err is an
// UnauthorizedError.
func IsUnauthorizedError(err error) bool {
	var uerr *UnauthorizedError
	return errors.As(err, &uerr)
}

// InvalidSubjectError signals malformed acting context: the application
// handed the engine something it never should (e.g. impersonation with no
// effective subject). Distinct from a deny so monitoring can separate
// "users being denied" from "the application is passing malformed context".
type InvalidSubjectError struct {
	Reason string
}

func (e *InvalidSubjectError) Error() string {
	return "authz: invalid subject context: " + e.Reason
}

// InvalidResourceError signals a malformed resource reference, e.g. an
// organization-scoped object with no reachable organization.
type InvalidResourceError struct {
	Type   ResourceType
	Reason string
}

func (e *InvalidResourceError) Error() string {
	return fmt.Sprintf("authz: invalid %s reference: %s", e.Type, e.Reason)
}
