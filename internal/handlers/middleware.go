package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Harshith014/resumeUploader/internal/auth"
)

// TokenHeader carries the raw session token.
const TokenHeader = "x-auth-token"

// TokenVerifier resolves a raw token to a user id.
type TokenVerifier interface {
	Verify(raw string) (int, error)
}

// RequireAuth rejects requests without a valid session token and attaches
// the user id to the request context.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := tokens.Verify(strings.TrimSpace(r.Header.Get(TokenHeader)))
			if err != nil {
				if errors.Is(err, auth.ErrMissingToken) {
					writeMsg(w, http.StatusUnauthorized, "No token, authorization denied")
					return
				}
				writeMsg(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}
