package security

import "testing"

func TestMintSessionToken_UniqueAndOpaque(t *testing.T) {
	a, err := MintSessionToken()
	if err != nil {
		t.Fatalf("MintSessionToken: %v", err)
	}
	b, err := MintSessionToken()
	if err != nil {
		t.Fatalf("MintSessionToken: %v", err)
	}
	if a == b {
		t.Fatal("two minted tokens are identical")
	}
	if len(a) != sessionTokenBytes*2 {
		t.Errorf("token length = %d, want %d hex chars", len(a), sessionTokenBytes*2)
	}
}

func TestHashSessionToken_Deterministic(t *testing.T) {
	if HashSessionToken("abc") != HashSessionToken("abc") {
		t.Error("hash of the same token differs")
	}
	if HashSessionToken("abc") == HashSessionToken("abd") {
		t.Error("hash of different tokens collides")
	}
}

func TestSessionTokenHashEqual(t *testing.T) {
	token, err := MintSessionToken()
	if err != nil {
		t.Fatalf("MintSessionToken: %v", err)
	}
	stored := HashSessionToken(token)

	if !SessionTokenHashEqual(token, stored) {
		t.Error("matching token not recognized")
	}
	if SessionTokenHashEqual("other", stored) {
		t.Error("non-matching token recognized")
	}
}
