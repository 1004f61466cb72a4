package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
)

// SpooledFile is a request upload copied to a temporary file so it outlives
// the request that carried it. The queue removes it once the item settles.
type SpooledFile struct {
	name        string
	contentType string
	size        int64
	path        string
}

// Spool copies fh into dir. The declared content type is kept; when the client
// sent none it is sniffed from the first 512 bytes.
func Spool(dir string, fh *multipart.FileHeader) (*SpooledFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	f := &SpooledFile{
		name:        fh.Filename,
		contentType: strings.TrimSpace(fh.Header.Get("Content-Type")),
		size:        n,
		path:        dst.Name(),
	}
	if f.contentType == "" || f.contentType == "application/octet-stream" {
		f.contentType = sniff(f.path)
	}
	return f, nil
}

func sniff(path string) string {
	fd, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer fd.Close()
	buf := make([]byte, 512)
	n, _ := fd.Read(buf)
	return strings.Split(http.DetectContentType(buf[:n]), ";")[0]
}

func (f *SpooledFile) Name() string        { return f.name }
func (f *SpooledFile) Size() int64         { return f.size }
func (f *SpooledFile) ContentType() string { return f.contentType }

func (f *SpooledFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func (f *SpooledFile) Remove() error {
	return os.Remove(f.path)
}
