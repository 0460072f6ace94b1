package upload

import (
	"bytes"
	"errors"
	"testing"
)

var (
	pdfHead  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngHead  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	gifHead  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
	jpegHead = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	textHead = []byte("just some plain text pretending to be a document\n")
)

func TestResumePolicy(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		size     int64
		head     []byte
		allowed  bool
		wantErr  error
		reason   string
	}{
		{name: "pdf", declared: "application/pdf", filename: "cv.pdf", size: 200_000, head: pdfHead, allowed: true},
		{name: "upper-case extension", declared: "application/pdf", filename: "CV.PDF", size: 1024, head: pdfHead, allowed: true},
		{name: "text renamed to pdf", declared: "text/plain", filename: "cv.pdf", size: 1024, head: textHead, wantErr: ErrUnsupportedFileType, reason: "Error: PDF Only!"},
		{name: "text with forged type", declared: "application/pdf", filename: "cv.pdf", size: 1024, head: textHead, wantErr: ErrUnsupportedFileType, reason: "Error: PDF Only!"},
		{name: "pdf with wrong extension", declared: "application/pdf", filename: "cv.txt", size: 1024, head: pdfHead, wantErr: ErrUnsupportedFileType, reason: "Error: PDF Only!"},
		{name: "image as resume", declared: "image/png", filename: "cv.png", size: 1024, head: pngHead, wantErr: ErrUnsupportedFileType, reason: "Error: PDF Only!"},
		{name: "at limit", declared: "application/pdf", filename: "cv.pdf", size: MaxFileBytes, head: pdfHead, allowed: true},
		{name: "over limit", declared: "application/pdf", filename: "cv.pdf", size: 11 << 20, head: pdfHead, wantErr: ErrFileTooLarge, reason: "File too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ResumePolicy.Check(tt.declared, tt.filename, tt.size, tt.head)
			if d.Allowed != tt.allowed {
				t.Fatalf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
			if tt.allowed {
				if d.Err() != nil {
					t.Fatalf("expected nil error for allowed upload, got %v", d.Err())
				}
				if d.ContentType != "application/pdf" {
					t.Fatalf("unexpected content type %q", d.ContentType)
				}
				return
			}

			err := d.Err()
			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("expected *RejectedError, got %T", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if rejected.Reason != tt.reason || err.Error() != tt.reason {
				t.Fatalf("reason = %q, want %q", rejected.Reason, tt.reason)
			}
		})
	}
}

func TestImagePolicy(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		head     []byte
		want     string
	}{
		{name: "png", declared: "image/png", filename: "me.png", head: pngHead, want: "image/png"},
		{name: "gif", declared: "image/gif", filename: "me.gif", head: gifHead, want: "image/gif"},
		{name: "jpeg as jpg", declared: "image/jpeg", filename: "me.jpg", head: jpegHead, want: "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ImagePolicy.Check(tt.declared, tt.filename, int64(len(tt.head)), tt.head)
			if !d.Allowed {
				t.Fatalf("expected allowed, got %q", d.Reason)
			}
			if d.ContentType != tt.want {
				t.Fatalf("content type = %q, want %q", d.ContentType, tt.want)
			}
		})
	}

	rejected := []struct {
		name     string
		declared string
		filename string
		head     []byte
	}{
		{name: "pdf as image", declared: "application/pdf", filename: "me.pdf", head: pdfHead},
		{name: "png extension with pdf body", declared: "image/png", filename: "me.png", head: pdfHead},
		{name: "svg", declared: "image/svg+xml", filename: "me.svg", head: []byte("<svg></svg>")},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			d := ImagePolicy.Check(tt.declared, tt.filename, 10, tt.head)
			if d.Allowed {
				t.Fatalf("expected rejection")
			}
			if d.Reason != "Error: Images Only!" {
				t.Fatalf("unexpected reason %q", d.Reason)
			}
		})
	}
}

func TestCheckIsPure(t *testing.T) {
	head := bytes.Clone(pdfHead)
	first := ResumePolicy.Check("application/pdf", "a.pdf", 10, head)
	second := ResumePolicy.Check("application/pdf", "a.pdf", 10, head)
	if first != second {
		t.Fatalf("expected identical decisions, got %+v and %+v", first, second)
	}
	if !bytes.Equal(head, pdfHead) {
		t.Fatalf("Check must not modify its input")
	}
}
