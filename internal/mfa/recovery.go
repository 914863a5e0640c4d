package mfa

import (
	"crypto/rand"
	"strings"
)

// DefaultRecoveryCodeCount is how many recovery codes a setup or reset
// produces when the configuration does not say otherwise.
const DefaultRecoveryCodeCount = 8

// recoveryCodeAlphabet leaves out characters that read ambiguously when
// written down (I, L, O, U, 0, 1).
const recoveryCodeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const recoveryCodeGroupLen = 4

// GenerateRecoveryCodes returns count fresh one-time recovery codes in
// cleartext, formatted as XXXX-XXXX. Callers hash them before persisting;
// the cleartext is shown to the user exactly once.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count <= 0 {
		count = DefaultRecoveryCodeCount
	}
	codes := make([]string, count)
	for i := range codes {
		code, err := generateRecoveryCode()
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

func generateRecoveryCode() (string, error) {
	raw := make([]byte, 2*recoveryCodeGroupLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	var b strings.Builder
	for i, c := range raw {
		if i == recoveryCodeGroupLen {
			b.WriteByte('-')
		}
		b.WriteByte(recoveryCodeAlphabet[int(c)%len(recoveryCodeAlphabet)])
	}
	return b.String(), nil
}

// IsRecoveryCode reports whether a submitted second factor has the shape
// of a recovery code rather than a TOTP code: anything that is not
// exactly six digits.
func IsRecoveryCode(code string) bool {
	if len(code) != 6 {
		return true
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}
