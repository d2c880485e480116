package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PutInput describes an uploaded file.
type PutInput struct {
	Filename    string
	ContentType string
}

// PutResult locates a stored file.
type PutResult struct {
	Key string
	URL string
}

// Storage keeps uploaded product images.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a URL returned by Put back to its key.
	KeyFromURL(url string) (string, bool)
}

// Local stores files in a directory served under URLPrefix.
type Local struct {
	BaseDir   string
	URLPrefix string
}

// NewLocal creates a new Local storage.
func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

// Put writes r to a new uuid-named file.
func (l *Local) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}
	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return PutResult{}, fmt.Errorf("failed to create upload dir: %w", err)
	}

	key := uuid.NewString() + safeExt(in.Filename)
	f, err := os.OpenFile(filepath.Join(l.BaseDir, key), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return PutResult{}, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return PutResult{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return PutResult{Key: key, URL: strings.TrimRight(l.URLPrefix, "/") + "/" + key}, nil
}

// Delete removes a stored file. Keys are reduced to their base name.
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(filepath.Join(l.BaseDir, filepath.Base(key)))
}

// KeyFromURL returns the storage key of url if it was issued by l.
func (l *Local) KeyFromURL(url string) (string, bool) {
	prefix := strings.TrimRight(l.URLPrefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	default:
		return ""
	}
}
