package auth

import (
	"strings"
	"testing"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2a$12$") {
		t.Errorf("expected bcrypt hash with cost 12, got prefix %q", hash[:7])
	}

	if !svc.Verify(hash, "secret123") {
		t.Error("Verify() rejected the correct password")
	}
	if svc.Verify(hash, "secret124") {
		t.Error("Verify() accepted a wrong password")
	}
	if svc.Verify("", "secret123") {
		t.Error("Verify() accepted an empty stored hash")
	}
}

func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatalf("NewSessionToken() error = %v", err)
		}
		if len(token) != 64 {
			t.Fatalf("token length = %d, want 64 hex chars", len(token))
		}
		if seen[token] {
			t.Fatal("duplicate session token generated")
		}
		seen[token] = true
	}
}
