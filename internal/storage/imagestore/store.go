// Package imagestore writes admin-uploaded product photos to the local
// filesystem and returns stable URLs for them.
//
// Uploads arrive as base64 data URLs: the client compresses and resizes the
// image before encoding, so the server only validates, decodes, and stores.
package imagestore

import (
	"encoding/base64"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrInvalidDataURL is returned when the payload is not a base64-encoded
// image data URL.
var ErrInvalidDataURL = errors.New("invalid image data URL")

var dataURLRe = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,(.+)$`)

// Store saves decoded images under dir and addresses them under urlPrefix.
type Store struct {
	dir       string
	urlPrefix string
}

// New ensures the upload directory exists. Served URLs are urlPrefix plus the
// generated file name.
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Store{dir: dir, urlPrefix: urlPrefix}, nil
}

// SaveDataURL validates and decodes a base64 image data URL, writes the bytes
// under a fresh name, and returns the URL the image is retrievable at.
// PNG uploads keep a .png extension; every other image type is stored as .jpg.
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return "", ErrInvalidDataURL
	}
	m := dataURLRe.FindStringSubmatch(dataURL)
	if m == nil {
		return "", ErrInvalidDataURL
	}
	mime, b64 := m[1], m[2]

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", errors.Wrap(ErrInvalidDataURL, "decode base64")
	}

	ext := "jpg"
	if strings.Contains(mime, "png") {
		ext = "png"
	}
	name := uuid.New().String() + "." + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", errors.Wrap(err, "write image")
	}
	return path.Join(s.urlPrefix, name), nil
}
