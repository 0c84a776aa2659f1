// Package storage handles media file persistence for uploads.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"skillshare/internal/middleware"
	"skillshare/internal/models"

	"github.com/google/uuid"
)

// MediaStore saves uploaded media files under a configured directory with
// generated unique filenames. Original filenames are discarded.
type MediaStore struct {
	dir     string
	maxSize int64
	baseURL string
	urlPath string
}

// NewMediaStore creates a MediaStore rooted at dir. maxSizeMB caps individual
// file size. baseURL prefixes returned URLs (may be empty for relative URLs).
func NewMediaStore(dir string, maxSizeMB int, baseURL string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &MediaStore{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		urlPath: "/media",
	}, nil
}

// Dir returns the root directory files are stored under.
func (s *MediaStore) Dir() string { return s.dir }

// URLPath returns the public path prefix files are served from.
func (s *MediaStore) URLPath() string { return s.urlPath }

// Validate checks one uploaded file's size and content type.
func (s *MediaStore) Validate(fh *multipart.FileHeader) error {
	if fh.Size > s.maxSize {
		return models.NewBadRequestError(fmt.Sprintf("File %s exceeds the maximum size of %dMB", fh.Filename, s.maxSize/(1024*1024)))
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return models.NewBadRequestError("Only image and video files are allowed")
	}
	return nil
}

// Save writes the uploaded file to disk under a generated unique name,
// preserving the original extension, and returns its public URL.
func (s *MediaStore) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.Validate(fh); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext

	src, err := fh.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", models.NewInternalError(err)
	}

	return s.baseURL + s.urlPath + "/" + name, nil
}

// Remove deletes the file a media URL points at. Failures are logged, not
// returned; callers treat removal as best-effort.
func (s *MediaStore) Remove(mediaURL string) {
	name := filepath.Base(mediaURL)
	if name == "" || name == "." || name == "/" {
		return
	}
	path := filepath.Join(s.dir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		middleware.Logger.Warn("failed to remove media file",
			"path", path,
			"error", err.Error(),
		)
	}
}
