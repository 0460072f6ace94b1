package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	t.Parallel()

	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher error: %v", err)
	}

	first, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct salts to yield distinct hashes")
	}
	if strings.Contains(first, "secret1") {
		t.Fatalf("hash must not contain the plaintext")
	}
	if !h.Compare(first, "secret1") || !h.Compare(second, "secret1") {
		t.Fatalf("expected both hashes to verify")
	}
	if h.Compare(first, "secret2") {
		t.Fatalf("expected wrong password to fail")
	}
	if h.Compare("not-a-bcrypt-hash", "secret1") {
		t.Fatalf("expected malformed hash to fail")
	}

	cost, err := bcrypt.Cost([]byte(first))
	if err != nil || cost != bcrypt.MinCost {
		t.Fatalf("expected cost %d, got %d (%v)", bcrypt.MinCost, cost, err)
	}

	h.CompareDummy("anything")
}

func TestNewPasswordHasher_Cost(t *testing.T) {
	t.Parallel()

	if _, err := NewPasswordHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected out of range cost to fail")
	}
	if _, err := NewPasswordHasher(1); err == nil {
		t.Fatalf("expected cost below minimum to fail")
	}
}
