package security

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords and recovery codes using bcrypt,
// and owns the fixed failure delay that masks failure-path timing.
// Callers must not log or persist plaintext passwords.
type Hasher struct {
	Cost int

	failureDelay time.Duration
	sleep        func(time.Duration)
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31) and fixed
// failure delay. Cost 12 is a reasonable default for interactive login.
func NewHasher(cost int, failureDelay time.Duration) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost, failureDelay: failureDelay, sleep: time.Sleep}
}

// Hash produces a bcrypt hash of password. Returns the hash as a string
// suitable for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against the stored hash using constant-time
// comparison. Returns nil if they match; returns an error (including
// bcrypt.ErrMismatchedHashAndPassword) if they do not or on invalid hash.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}

// CompareSleep verifies password against the stored hash. On mismatch,
// when sleepOnFailure is set, it blocks for the fixed failure delay
// before returning, so failure paths cannot be told apart by latency.
func (h *Hasher) CompareSleep(hash string, password []byte, sleepOnFailure bool) error {
	err := h.Compare(hash, password)
	if err != nil && sleepOnFailure {
		h.FailureSleep()
	}
	return err
}

// FailureSleep blocks for the fixed failure delay. Callers invoke it on
// failure paths that skipped hash verification, so a missing user or
// missing configuration takes as long as a wrong password.
func (h *Hasher) FailureSleep() {
	if h.failureDelay > 0 {
		h.sleep(h.failureDelay)
	}
}
