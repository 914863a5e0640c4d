package mfa

import (
	"regexp"
	"testing"
)

var recoveryCodeShape = regexp.MustCompile(`^[A-HJ-KM-NP-TV-Z2-9]{4}-[A-HJ-KM-NP-TV-Z2-9]{4}$`)

func TestGenerateRecoveryCodes(t *testing.T) {
	codes, err := GenerateRecoveryCodes(8)
	if err != nil {
		t.Fatalf("GenerateRecoveryCodes: %v", err)
	}
	if len(codes) != 8 {
		t.Fatalf("len(codes) = %d, want 8", len(codes))
	}
	seen := map[string]bool{}
	for _, code := range codes {
		if !recoveryCodeShape.MatchString(code) {
			t.Errorf("code %q does not match XXXX-XXXX over the code alphabet", code)
		}
		if seen[code] {
			t.Errorf("duplicate code %q in one batch", code)
		}
		seen[code] = true
	}
}

func TestGenerateRecoveryCodes_DefaultCount(t *testing.T) {
	codes, err := GenerateRecoveryCodes(0)
	if err != nil {
		t.Fatalf("GenerateRecoveryCodes: %v", err)
	}
	if len(codes) != DefaultRecoveryCodeCount {
		t.Fatalf("len(codes) = %d, want %d", len(codes), DefaultRecoveryCodeCount)
	}
}

func TestIsRecoveryCode(t *testing.T) {
	for _, tc := range []struct {
		code string
		want bool
	}{
		{"123456", false},
		{"000000", false},
		{"ABCD-EFGH", true},
		{"12345", true},
		{"1234567", true},
		{"12345a", true},
		{"", true},
	} {
		if got := IsRecoveryCode(tc.code); got != tc.want {
			t.Errorf("IsRecoveryCode(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
