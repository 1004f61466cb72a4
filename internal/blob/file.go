package blob

import (
	"bytes"
	"io"
)

// BytesFile is an in-memory File.
type BytesFile struct {
	name        string
	contentType string
	data        []byte
}

func NewBytesFile(name, contentType string, data []byte) *BytesFile {
	return &BytesFile{name: name, contentType: contentType, data: data}
}

func (f *BytesFile) Name() string        { return f.name }
func (f *BytesFile) Size() int64         { return int64(len(f.data)) }
func (f *BytesFile) ContentType() string { return f.contentType }

func (f *BytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
