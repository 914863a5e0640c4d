package domain

import "time"

// State is the position of a user's multi-factor configuration in its
// lifecycle: Disabled → PendingSetup → Enabled. PendingSetup covers the
// window inside setup between secret generation and commit; it is never
// persisted, so a stored configuration is always Enabled.
type State string

const (
	StateDisabled     State = "disabled"
	StatePendingSetup State = "pending_setup"
	StateEnabled      State = "enabled"
)

// Configuration holds a user's MFA settings, one-to-one with the user.
// Presence of the TOTP secret is the sole signal that a login must pass
// through the second factor.
type Configuration struct {
	UserID     string
	TotpSecret string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// State derives the lifecycle position. Safe on a nil receiver: a
// missing configuration means MFA is disabled.
func (c *Configuration) State() State {
	if c == nil || c.TotpSecret == "" {
		return StateDisabled
	}
	return StateEnabled
}
