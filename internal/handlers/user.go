package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Harshith014/resumeUploader/internal/services"
	"github.com/Harshith014/resumeUploader/internal/upload"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	// multipartOverhead is the room left for form fields and part headers
	// on top of the file size limit.
	multipartOverhead = 1 << 20
	maxRequestBytes   = upload.MaxFileBytes + multipartOverhead
	maxFormMemory     = 1 << 20
)

// AssetStore persists an accepted upload and returns its reference.
type AssetStore interface {
	Store(ctx context.Context, field, filename string, r io.Reader, size int64, contentType string) (string, error)
	Discard(ctx context.Context, ref string) error
}

// UserHandler serves profile reads and updates for the authenticated user.
type UserHandler struct {
	users  *services.UserService
	assets AssetStore
}

func NewUserHandler(users *services.UserService, assets AssetStore) *UserHandler {
	return &UserHandler{users: users, assets: assets}
}

// UserRouter registers profile routes. Every route requires a session.
func UserRouter(r chi.Router, users *services.UserService, assets AssetStore, requireAuth func(http.Handler) http.Handler) {
	handler := NewUserHandler(users, assets)

	r.Use(requireAuth)
	r.Get("/", handler.Get)
	r.Put("/", handler.Update)
	r.Put("/resume", handler.UploadResume)
}

type ProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Get returns the caller's profile.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update changes the supplied profile fields. Multipart bodies may carry an
// "image" file.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	var (
		req       ProfileRequest
		multipart = isMultipart(r)
	)
	if multipart {
		if err := parseMultipart(w, r); err != nil {
			writeError(w, r, err)
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()
		req = ProfileRequest{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := services.ProfileInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := services.ValidateProfile(input); err != nil {
		writeError(w, r, err)
		return
	}

	if multipart && hasFile(r, upload.ImagePolicy.Field) {
		if _, err := h.users.GetProfile(r.Context(), userID); err != nil {
			writeError(w, r, err)
			return
		}
		ref, err := h.storeUpload(r, upload.ImagePolicy)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.Image = ref
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		h.discard(r, input.Image)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadResume stores a PDF from the "resume" field and records it.
func (h *UserHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	if !isMultipart(r) {
		writeError(w, r, upload.ErrNoFile)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	if _, err := h.users.GetProfile(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	ref, err := h.storeUpload(r, upload.ResumePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.UpdateResume(r.Context(), userID, ref)
	if err != nil {
		h.discard(r, ref)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// storeUpload checks the named part against policy and hands it to the
// asset store.
func (h *UserHandler) storeUpload(r *http.Request, policy upload.Policy) (string, error) {
	file, header, err := r.FormFile(policy.Field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", upload.ErrNoFile
		}
		return "", fmt.Errorf("open %s part: %w", policy.Field, err)
	}
	defer file.Close()

	head := make([]byte, upload.SniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read %s part: %w", policy.Field, err)
	}

	decision := policy.Check(header.Header.Get("Content-Type"), header.Filename, header.Size, head[:n])
	if !decision.Allowed {
		return "", decision.Err()
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s part: %w", policy.Field, err)
	}
	return h.assets.Store(r.Context(), policy.Field, header.Filename, file, header.Size, decision.ContentType)
}

// discard removes an asset whose user record was never updated.
func (h *UserHandler) discard(r *http.Request, ref string) {
	if ref == "" {
		return
	}
	if err := h.assets.Discard(context.WithoutCancel(r.Context()), ref); err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("failed to discard orphaned upload")
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// parseMultipart bounds the body and parses it. Bodies past the bound are
// reported as an oversized file.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	oversized := r.ContentLength > maxRequestBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if oversized || errors.As(err, &tooLarge) {
			return upload.ErrFileTooLarge
		}
		return &upload.RejectedError{Reason: "Invalid request body", Err: err}
	}
	return nil
}

func hasFile(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}
