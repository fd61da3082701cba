package token

import "testing"

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Fatal("two tokens must differ")
	}
	// 32 bytes -> 43 chars base64url sin padding
	if len(a) != 43 {
		t.Fatalf("len = %d, want 43", len(a))
	}
}

func TestSHA256HexStable(t *testing.T) {
	h1 := SHA256Hex("sample-token")
	h2 := SHA256Hex("sample-token")
	if h1 != h2 {
		t.Fatal("hash must be deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("len = %d, want 64", len(h1))
	}
	if h1 == SHA256Hex("sample-token2") {
		t.Fatal("different inputs must hash differently")
	}
}
