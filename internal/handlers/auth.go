package handlers

import (
	"net/http"

	"github.com/Harshith014/resumeUploader/internal/services"
	"github.com/go-chi/chi/v5"
)

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// AuthHandler serves registration, login and the protected probe.
type AuthHandler struct {
	users  *services.UserService
	tokens TokenIssuer
}

func NewAuthHandler(users *services.UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, users *services.UserService, tokens TokenIssuer, requireAuth func(http.Handler) http.Handler) {
	handler := NewAuthHandler(users, tokens)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(requireAuth).Get("/protected", handler.Protected)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeToken(w, r, user.ID)
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeToken(w, r, user.ID)
}

// Protected confirms the caller holds a valid token.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	writeMsg(w, http.StatusOK, "This is a protected route")
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, r *http.Request, userID int) {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
