package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T, secret string) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(secret)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}
	return m
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "super-secret")
	tok, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userID, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID mismatch: got %d want 42", userID)
	}
}

func TestIssue_PayloadCarriesOnlyIdentity(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newTestManager(t, "super-secret")
	m.now = func() time.Time { return fixed }

	tok, err := m.Issue(7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	want := `{"user":{"id":"7"},"exp":1704070800,"iat":1704067200}`
	if string(payload) != want {
		t.Fatalf("payload = %s, want %s", payload, want)
	}
}

func TestVerify_Missing(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "secret")
	for _, raw := range []string{"", "   "} {
		if _, err := m.Verify(raw); !errors.Is(err, ErrMissingToken) {
			t.Fatalf("Verify(%q) = %v, want ErrMissingToken", raw, err)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "secret")
	m.now = func() time.Time { return time.Now().Add(-2 * TokenTTL) }
	tok, err := m.Issue(1)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now()
	m := newTestManager(t, "secret")
	m.now = func() time.Time { return issuedAt }
	tok, err := m.Issue(1)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(TokenTTL - time.Minute) }
	if _, err := m.Verify(tok); err != nil {
		t.Fatalf("expected token valid before TTL, got %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(TokenTTL + time.Minute) }
	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token invalid after TTL, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestManager(t, "right-secret").Issue(2)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := newTestManager(t, "wrong-secret").Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for invalid signature, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "secret")
	tok, err := m.Issue(3)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"user":{"id":"1"},"exp":9999999999}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	if _, err := m.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		User: UserClaim{ID: "5"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}

	m := newTestManager(t, "secret")
	for _, tok := range []string{unsigned, hs512} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
}

func TestVerify_MissingIdentityOrExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{User: UserClaim{ID: "5"}}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	m := newTestManager(t, "secret")
	for _, tok := range []string{noUser, noExpiry, "not.a.jwt"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenManager(" "); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
