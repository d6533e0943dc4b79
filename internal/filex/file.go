// Package filex holds the small file-system helpers the client needs:
// preparing the directory of the local database and loading package photos.
package filex

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyFile = errors.New("file is empty")

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Photo is an image loaded from disk, ready for a multipart upload.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadPhoto loads the file at path. The content type is sniffed from the
// data; when sniffing does not yield an image type, it falls back to
// "image/<extension>", or plain "image" without an extension.
func ReadPhoto(path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("read photo %s: %w", path, ErrEmptyFile)
	}

	name := filepath.Base(path)
	return &Photo{Name: name, ContentType: photoContentType(name, data), Data: data}, nil
}

func photoContentType(name string, data []byte) string {
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "image"
	}
	return "image/" + ext
}
