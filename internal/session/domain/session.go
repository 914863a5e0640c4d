package domain

import "time"

// Trust is the trust level carried by a session. The two-phase login
// protocol is a state machine over this value: password success mints a
// Restricted session when a second factor is pending, and only a
// verified second factor (or an MFA-free login) yields Full.
type Trust string

const (
	// TrustRestricted marks a session that may only be used to complete
	// the pending MFA challenge, never to act as the user.
	TrustRestricted Trust = "restricted"
	// TrustFull marks a session whose every required factor is satisfied.
	TrustFull Trust = "full"
)

// Session represents an authenticated session. The bearer token is
// stored hashed; the cleartext exists only in the response that minted
// or renewed it.
type Session struct {
	TokenHash string
	UserID    string
	Trust     Trust
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Restricted reports whether the session is still awaiting a second factor.
func (s *Session) Restricted() bool {
	return s.Trust == TrustRestricted
}

// Expired reports whether the session has outlived its lifetime at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
