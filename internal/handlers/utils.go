package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Harshith014/resumeUploader/internal/services"
	"github.com/Harshith014/resumeUploader/internal/upload"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextUserIDKey contextKey = "user_id"

// UserIDFromContext returns the identity attached by RequireAuth.
func UserIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(contextUserIDKey).(int)
	return id, ok && id > 0
}

func withUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, contextUserIDKey, id)
}

// MessageResponse is the body of every non-validation error.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// ValidationResponse lists rejected fields.
type ValidationResponse struct {
	Errors []services.FieldError `json:"errors"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Msg: msg})
}

// maxJSONBytes caps JSON request bodies.
const maxJSONBytes = 1 << 20

// decodeJSON reads a JSON object into dst. An empty body leaves dst zeroed
// so field validation can report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeError maps service and upload errors onto the client contract. The
// cause of a 500 is logged and never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *services.ValidationError
		rejected *upload.RejectedError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: verr.Fields})
	case errors.As(err, &rejected):
		writeMsg(w, http.StatusBadRequest, rejected.Reason)
	case errors.Is(err, upload.ErrNoFile):
		writeMsg(w, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, upload.ErrFileTooLarge):
		writeMsg(w, http.StatusBadRequest, "File too large")
	case errors.Is(err, services.ErrDuplicateEmail):
		writeMsg(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMsg(w, http.StatusBadRequest, "Invalid Credentials")
	case errors.Is(err, services.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "User not found")
	default:
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		writeMsg(w, http.StatusInternalServerError, "Server error")
	}
}
