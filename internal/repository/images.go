package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pollopollo/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNoImageStore is returned when an image update is attempted without a backend
var ErrNoImageStore = errors.New("no image store configured")

// imagePath turns a stored file name into the path clients fetch it from
func imagePath(base, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + name
}

// replaceImage uploads the new image, points the thumbnail column of model at it and
// removes the previous file. A failed cleanup of the old file is only logged.
func replaceImage(ctx context.Context, db *gorm.DB, images storage.ImageWriter, model any, old, originalName string, r io.Reader) (string, error) {
	if images == nil {
		return "", ErrNoImageStore
	}
	name, err := images.UploadImage(ctx, storage.StaticFolder, originalName, r)
	if err != nil {
		return "", err
	}
	if err := db.WithContext(ctx).Model(model).Update("thumbnail", name).Error; err != nil {
		_ = images.DeleteImage(ctx, storage.StaticFolder, name)
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	if old != "" {
		if err := images.DeleteImage(ctx, storage.StaticFolder, old); err != nil {
			logrus.WithFields(logrus.Fields{"image": old, "error": err.Error()}).Warn("Could not remove old image")
		}
	}
	return name, nil
}
