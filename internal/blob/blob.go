// Package blob stores uploaded media under a per-project namespace and returns
// a locator clients can fetch directly.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrInvalidScope = errors.New("blob scope is required")
)

// File is a readable upload with the metadata declared by the client.
type File interface {
	Name() string
	Size() int64
	ContentType() string
	Open() (io.ReadCloser, error)
}

// Store writes a file under scopeID and returns its locator.
type Store interface {
	Put(ctx context.Context, scopeID string, f File) (string, error)
}

// objectKey builds "YYYY/MM/DD/<uuid>_<name><ext>".
func objectKey(now time.Time, name, contentType string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = mimeToExt(contentType)
	}
	return fmt.Sprintf("%d/%02d/%02d/%s_%s%s",
		now.Year(), now.Month(), now.Day(), uuid.NewString(), sanitizeName(name), ext)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "." || strings.Trim(name, "_") == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch strings.Split(mime, ";")[0] {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}

func checkPut(scopeID string, f File) error {
	if strings.TrimSpace(scopeID) == "" {
		return ErrInvalidScope
	}
	if f.Size() == 0 {
		return ErrEmptyFile
	}
	return nil
}
