package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	DefaultUploadsDir    = "./uploads"
	DefaultStaticURLBase = "/static/uploads"
)

// Local writes blobs under baseDir/<scope>/YYYY/MM/DD and serves them from
// staticBase, which the router mounts as a static directory.
type Local struct {
	baseDir    string
	staticBase string
	now        func() time.Time
}

func NewLocal(baseDir, staticBase string) *Local {
	if baseDir == "" {
		baseDir = DefaultUploadsDir
	}
	if staticBase == "" {
		staticBase = DefaultStaticURLBase
	}
	return &Local{baseDir: baseDir, staticBase: staticBase, now: time.Now}
}

func (l *Local) BaseDir() string { return l.baseDir }

func (l *Local) StaticBase() string { return l.staticBase }

func (l *Local) Put(ctx context.Context, scopeID string, f File) (string, error) {
	if err := checkPut(scopeID, f); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	scope := sanitizeName(scopeID)
	key := objectKey(l.now().UTC(), f.Name(), f.ContentType())
	absPath := filepath.Join(l.baseDir, scope, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(l.staticBase, scope, key), nil
}
