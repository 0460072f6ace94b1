// Package upload decides whether an uploaded file may be stored.
//
// A file passes only when its extension, its declared content type and the
// type sniffed from its first bytes all agree with the policy, and its size
// is within the limit.
package upload

import (
	"errors"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileBytes is the size limit shared by every upload field.
const MaxFileBytes int64 = 10_000_000

// SniffLen is how many leading bytes callers should pass to Check.
const SniffLen = 3072

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrNoFile              = errors.New("no file uploaded")
)

// RejectedError describes a refused upload. Reason is safe to show to clients.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Policy is the allow-list for one form field.
type Policy struct {
	Field        string
	Extensions   []string
	Declared     *regexp.Regexp
	Detected     []string
	MaxBytes     int64
	RejectReason string
}

var ImagePolicy = Policy{
	Field:        "image",
	Extensions:   []string{".jpeg", ".jpg", ".png", ".gif"},
	Declared:     regexp.MustCompile(`jpeg|jpg|png|gif`),
	Detected:     []string{"image/jpeg", "image/png", "image/gif"},
	MaxBytes:     MaxFileBytes,
	RejectReason: "Error: Images Only!",
}

var ResumePolicy = Policy{
	Field:        "resume",
	Extensions:   []string{".pdf"},
	Declared:     regexp.MustCompile(`pdf`),
	Detected:     []string{"application/pdf"},
	MaxBytes:     MaxFileBytes,
	RejectReason: "Error: PDF Only!",
}

// Decision is the outcome of Check.
type Decision struct {
	Allowed bool
	Reason  string

	// ContentType is the sniffed type, set when the content was inspected.
	ContentType string
	err         error
}

// Err returns a *RejectedError for a denied decision and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &RejectedError{Reason: d.Reason, Err: d.err}
}

func deny(reason string, err error) Decision {
	return Decision{Reason: reason, err: err}
}

// Check applies p to an upload's declared content type, file name, size and
// leading bytes.
func (p Policy) Check(declaredType, filename string, size int64, head []byte) Decision {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(p.Extensions, ext) {
		return deny(p.RejectReason, ErrUnsupportedFileType)
	}
	if !p.Declared.MatchString(strings.ToLower(declaredType)) {
		return deny(p.RejectReason, ErrUnsupportedFileType)
	}
	if size > p.MaxBytes {
		return deny("File too large", ErrFileTooLarge)
	}

	detected := mimetype.Detect(head)
	if !slices.ContainsFunc(p.Detected, detected.Is) {
		return deny(p.RejectReason, ErrUnsupportedFileType)
	}

	return Decision{Allowed: true, ContentType: detected.String()}
}
