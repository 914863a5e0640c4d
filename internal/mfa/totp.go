// Package mfa provides the TOTP engine and recovery-code primitives used
// by the MFA service.
package mfa

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpPeriod is the TOTP time step in seconds. 30 is standard with
// authenticator apps such as Google Authenticator and Authy: long enough
// to type a code, short enough to keep brute force impractical.
const totpPeriod = 30

// TotpEngine generates TOTP secrets and validates submitted codes with a
// bounded clock-skew tolerance.
type TotpEngine struct {
	// Issuer is shown in authenticator apps.
	Issuer string
	// Skew is how many time steps either side of now still validate.
	Skew uint
}

// NewTotpEngine returns a TotpEngine tolerating one step of clock drift.
func NewTotpEngine(issuer string) *TotpEngine {
	return &TotpEngine{Issuer: issuer, Skew: 1}
}

// GenerateSecret returns a fresh TOTP secret and its provisioning URI for
// the given account name.
func (e *TotpEngine) GenerateSecret(accountName string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: accountName,
		Period:      totpPeriod,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Validate reports whether code matches secret at the current time,
// within the skew window. The underlying comparison is constant-time.
func (e *TotpEngine) Validate(code, secret string) (bool, error) {
	return e.ValidateAt(code, secret, time.Now().UTC())
}

// ValidateAt is Validate at an explicit point in time.
func (e *TotpEngine) ValidateAt(code, secret string, at time.Time) (bool, error) {
	return totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      e.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
