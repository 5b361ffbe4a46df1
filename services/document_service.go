package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tanishgpt/backendclient"
)

// UnsupportedTypeError is returned for files outside the allowed
// extension list. The browser UI enforced this at the file picker; a
// CLI has no picker, so the check lives here.
type UnsupportedTypeError struct {
	Filename string
	Allowed  []string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type %q (allowed: %s)", e.Filename, strings.Join(e.Allowed, ", "))
}

type DocumentService struct {
	client  *backendclient.Client
	allowed []string
}

func NewDocumentService(client *backendclient.Client, allowedExtensions []string) *DocumentService {
	return &DocumentService{client: client, allowed: allowedExtensions}
}

// Allowed reports whether the filename has an accepted extension.
func (s *DocumentService) Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, a := range s.allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// Upload validates the extension and posts the content as a multipart
// upload, returning the backend's acknowledgment.
func (s *DocumentService) Upload(ctx context.Context, filename string, content io.Reader) (backendclient.UploadAck, error) {
	if !s.Allowed(filename) {
		return backendclient.UploadAck{}, &UnsupportedTypeError{Filename: filename, Allowed: s.allowed}
	}
	return s.client.UploadDocument(ctx, filepath.Base(filename), content)
}

// UploadFile opens a local file and uploads it.
func (s *DocumentService) UploadFile(ctx context.Context, path string) (backendclient.UploadAck, error) {
	if !s.Allowed(path) {
		return backendclient.UploadAck{}, &UnsupportedTypeError{Filename: path, Allowed: s.allowed}
	}

	f, err := os.Open(path)
	if err != nil {
		return backendclient.UploadAck{}, err
	}
	defer f.Close()

	return s.client.UploadDocument(ctx, filepath.Base(path), f)
}
