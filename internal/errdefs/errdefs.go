// Package errdefs defines the error taxonomy shared by the
// authentication, session, and MFA services, and the collapsing rule that
// keeps login failures coarse-grained at the system boundary.
package errdefs

import "errors"

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	// ErrEmptyPassword is returned when a login carries an empty
	// password. Rejected before any store access.
	ErrEmptyPassword = errors.New("empty password")

	// ErrInvalidAuthentication covers wrong password, wrong TOTP code,
	// wrong or already-used recovery code, and MFA not being configured.
	// Callers must not be able to tell these apart.
	ErrInvalidAuthentication = errors.New("invalid authentication")

	// ErrNotFound is returned for a session or user lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrRestrictedSession is returned when a session that has not
	// completed every required factor is used anywhere except the
	// MFA-completion path.
	ErrRestrictedSession = errors.New("restricted session")

	// ErrSessionUserMismatch is returned when a supplied user id does
	// not own the presented session.
	ErrSessionUserMismatch = errors.New("session does not belong to user")

	// ErrInternalServer is the catch-all for unexpected backend faults.
	ErrInternalServer = errors.New("internal server error")
)

// CollapseLogin normalizes a login failure so the caller can observe only
// empty-password, invalid-authentication, or an internal fault, and never
// which stage failed.
//
// Credential failures raised at the service boundary are the bare
// ErrInvalidAuthentication sentinel and pass through. A wrapped
// invalid-authentication escaping from a collaborator did not come from
// the boundary checks; surfacing it would mislabel an internal fault, so
// it escalates to ErrInternalServer. Everything else collapses to
// ErrInvalidAuthentication.
func CollapseLogin(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrEmptyPassword):
		return ErrEmptyPassword
	case errors.Is(err, ErrInvalidAuthentication):
		if err == ErrInvalidAuthentication {
			return err
		}
		return ErrInternalServer
	case errors.Is(err, ErrInternalServer):
		return ErrInternalServer
	default:
		return ErrInvalidAuthentication
	}
}
