package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize caps item images at 5 MB.
const MaxUploadSize = 5 << 20

// Store saves uploaded item images on local disk and hands back public URLs.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to create upload directory", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save streams the upload to disk under a generated name and returns its
// public URL. Content type and size are checked here, never trusted from the
// client alone: the reader is cut off at the cap.
func (s *Store) Save(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("filename", filename),
	)

	if !strings.HasPrefix(contentType, "image/") {
		return "", apperr.New(apperr.Validation, "only image uploads are allowed")
	}
	if size > MaxUploadSize {
		return "", apperr.New(apperr.Validation, "image must be 5MB or smaller")
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		log.Error("failed to create upload file", zap.Error(err))
		return "", apperr.Wrap(apperr.Upstream, "failed to store image", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		os.Remove(path)
		log.Error("failed to write upload", zap.Error(err))
		return "", apperr.Wrap(apperr.Upstream, "failed to store image", err)
	}
	if written > MaxUploadSize {
		os.Remove(path)
		return "", apperr.New(apperr.Validation, "image must be 5MB or smaller")
	}

	url := fmt.Sprintf("%s/uploads/%s", s.baseURL, name)
	log.Info("image stored", zap.String("url", url), zap.Int64("bytes", written))
	return url, nil
}

// Remove deletes a previously stored image by its public URL. Unknown files
// are not an error; the caller is cleaning up.
func (s *Store) Remove(ctx context.Context, publicURL string) error {
	name := filepath.Base(publicURL)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return apperr.New(apperr.Validation, "invalid image URL")
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.Upstream, "failed to remove image", err)
	}
	return nil
}
