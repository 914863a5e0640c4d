package security

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 0)

	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty string")
	}
	if err := h.Compare(hash, []byte("correct horse battery staple")); err != nil {
		t.Errorf("Compare with right password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Error("Compare with wrong password should fail")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	if h := NewHasher(0, 0); h.Cost != bcrypt.DefaultCost {
		t.Errorf("cost for 0 = %d, want default %d", h.Cost, bcrypt.DefaultCost)
	}
	if h := NewHasher(99, 0); h.Cost != bcrypt.MaxCost {
		t.Errorf("cost for 99 = %d, want max %d", h.Cost, bcrypt.MaxCost)
	}
}

func TestCompareSleep_SleepsOnMismatchOnly(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 100*time.Millisecond)
	var slept time.Duration
	h.sleep = func(d time.Duration) { slept += d }

	hash, err := h.Hash([]byte("pw"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if err := h.CompareSleep(hash, []byte("pw"), true); err != nil {
		t.Fatalf("CompareSleep with right password: %v", err)
	}
	if slept != 0 {
		t.Errorf("slept %v on success, want 0", slept)
	}

	if err := h.CompareSleep(hash, []byte("nope"), true); err == nil {
		t.Fatal("CompareSleep with wrong password should fail")
	}
	if slept != 100*time.Millisecond {
		t.Errorf("slept %v on failure, want 100ms", slept)
	}

	slept = 0
	if err := h.CompareSleep(hash, []byte("nope"), false); err == nil {
		t.Fatal("CompareSleep with wrong password should fail")
	}
	if slept != 0 {
		t.Errorf("slept %v with sleepOnFailure=false, want 0", slept)
	}
}

func TestFailureSleep_UsesFixedDelay(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 250*time.Millisecond)
	var slept time.Duration
	h.sleep = func(d time.Duration) { slept = d }

	h.FailureSleep()
	if slept != 250*time.Millisecond {
		t.Errorf("slept %v, want 250ms", slept)
	}
}
