package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = 3600 * time.Second

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("no token, authorization denied")
	// ErrInvalidToken covers bad signatures, expiry and malformed tokens.
	ErrInvalidToken = errors.New("token is not valid")
)

// Claims is the token payload: the user identity plus iat/exp.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// UserClaim carries the user identifier.
type UserClaim struct {
	ID string `json:"id"`
}

// TokenManager issues and verifies HS256 session tokens. It holds no
// mutable state after construction.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for userID.
func (m *TokenManager) Issue(userID int) (string, error) {
	if userID < 1 {
		return "", fmt.Errorf("invalid user id %d", userID)
	}
	now := m.now()
	claims := Claims{
		User: UserClaim{ID: strconv.Itoa(userID)},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature and expiry and returns the user id the token was issued for.
func (m *TokenManager) Verify(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingToken
	}

	claims := Claims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.User.ID))
	if err != nil || userID < 1 {
		return 0, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return userID, nil
}
