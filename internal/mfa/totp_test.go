package mfa

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("GenerateCodeCustom: %v", err)
	}
	return code
}

func TestGenerateSecret(t *testing.T) {
	e := NewTotpEngine("authplane")
	secret, uri, err := e.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if secret == "" {
		t.Fatal("empty secret")
	}
	if !strings.Contains(uri, "authplane") {
		t.Errorf("provisioning URI %q does not carry the issuer", uri)
	}
	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Errorf("provisioning URI %q is not an otpauth totp URI", uri)
	}
}

func TestValidateAt_CurrentStep(t *testing.T) {
	e := NewTotpEngine("authplane")
	secret, _, err := e.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 15, 0, time.UTC)
	ok, err := e.ValidateAt(codeAt(t, secret, now), secret, now)
	if err != nil {
		t.Fatalf("ValidateAt: %v", err)
	}
	if !ok {
		t.Error("code for the current step did not validate")
	}
}

func TestValidateAt_SkewWindow(t *testing.T) {
	e := NewTotpEngine("authplane")
	secret, _, err := e.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 15, 0, time.UTC)
	step := totpPeriod * time.Second

	for _, tc := range []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"one step behind", -step, true},
		{"one step ahead", step, true},
		{"two steps behind", -2 * step, false},
		{"two steps ahead", 2 * step, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := e.ValidateAt(codeAt(t, secret, now.Add(tc.offset)), secret, now)
			if err != nil {
				t.Fatalf("ValidateAt: %v", err)
			}
			if ok != tc.want {
				t.Errorf("code offset %v: ok = %v, want %v", tc.offset, ok, tc.want)
			}
		})
	}
}

func TestValidateAt_WrongCode(t *testing.T) {
	e := NewTotpEngine("authplane")
	secret, _, err := e.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	ok, err := e.ValidateAt("000000", secret, time.Date(2024, 5, 1, 12, 0, 15, 0, time.UTC))
	if err != nil {
		t.Fatalf("ValidateAt: %v", err)
	}
	if ok {
		t.Error("arbitrary code validated")
	}
}
