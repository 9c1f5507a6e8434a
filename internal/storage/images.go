// Package storage keeps uploaded profile and product images.
package storage

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StaticFolder is the folder all profile and product images are kept in
const StaticFolder = "static"

// ErrNotAnImage is returned when the uploaded content is not a supported image
var ErrNotAnImage = errors.New("invalid image file")

// ImageWriter stores and removes images keyed by folder and file name
type ImageWriter interface {
	UploadImage(ctx context.Context, folder, originalName string, r io.Reader) (string, error)
	DeleteImage(ctx context.Context, folder, name string) error
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniff peeks at the head of r and returns the detected content type, a reader that
// still yields the full content, and the file extension to store it under
func sniff(r io.Reader, originalName string) (string, io.Reader, string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", nil, "", err
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageTypes[contentType]
	if !ok {
		return "", nil, "", ErrNotAnImage
	}
	if orig := strings.ToLower(filepath.Ext(originalName)); orig == ".jpeg" || orig == ".jpg" {
		ext = orig
	}
	return contentType, br, ext, nil
}

func newName(ext string) string {
	return uuid.NewString() + ext
}
