// Package avatar stores user profile images in a public bucket.
package avatar

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

const (
	DefaultMaxBytes = 2 << 20
	publicPrefix    = "public"
)

type Bucket struct {
	fs       afero.Fs
	baseURL  string
	maxBytes int64
	now      func() time.Time
}

// NewBucket serves objects from fs. URLs are built as baseURL + "/avatars/" + key.
func NewBucket(fs afero.Fs, baseURL string) *Bucket {
	return &Bucket{
		fs:       fs,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: DefaultMaxBytes,
		now:      time.Now,
	}
}

// Upload stores an image under public/<unix-nano>_<name> and returns its public URL.
func (b *Bucket) Upload(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, b.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("avatar: read upload: %w", err)
	}
	if len(data) == 0 {
		return "", internal.NewValidationError("avatar file is empty", "file")
	}
	if int64(len(data)) > b.maxBytes {
		return "", internal.NewValidationError(fmt.Sprintf("avatar exceeds %d bytes", b.maxBytes), "file")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", internal.NewValidationError("avatar must be an image, got "+mt.String(), "file")
	}

	key := path.Join(publicPrefix, fmt.Sprintf("%d_%s", b.now().UnixNano(), sanitize(filename, mt.Extension())))
	if err := b.fs.MkdirAll(publicPrefix, 0o755); err != nil {
		return "", fmt.Errorf("avatar: prepare bucket: %w", err)
	}
	if err := afero.WriteFile(b.fs, key, data, 0o644); err != nil {
		return "", fmt.Errorf("avatar: write %s: %w", key, err)
	}
	return b.baseURL + "/avatars/" + key, nil
}

// Open returns the object stored under key with its detected content type.
func (b *Bucket) Open(key string) (io.ReadSeeker, string, error) {
	key = path.Clean("/" + key)[1:]
	if !strings.HasPrefix(key, publicPrefix+"/") {
		return nil, "", &internal.NotFoundError{Resource: "avatar", ID: key}
	}
	data, err := afero.ReadFile(b.fs, key)
	if err != nil {
		return nil, "", &internal.NotFoundError{Resource: "avatar", ID: key}
	}
	return bytes.NewReader(data), mimetype.Detect(data).String(), nil
}

// Remove deletes the object behind a URL returned by Upload.
func (b *Bucket) Remove(url string) error {
	key := path.Clean("/" + strings.TrimPrefix(url, b.baseURL+"/avatars/"))[1:]
	if !strings.HasPrefix(key, publicPrefix+"/") {
		return &internal.NotFoundError{Resource: "avatar", ID: url}
	}
	if err := b.fs.Remove(key); err != nil {
		return fmt.Errorf("avatar: remove %s: %w", key, err)
	}
	return nil
}

func sanitize(name, ext string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	clean := strings.Trim(sb.String(), "._")
	if clean == "" {
		clean = "avatar" + ext
	}
	return clean
}
