package service

import (
	"context"
	"errors"
	"log/slog"

	"portfolio-api/internal/storage"
	"portfolio-api/pkg/apierror"
)

// putImage normalises an upload and stores it under folder.
func putImage(ctx context.Context, images storage.ImageStore, folder string, data []byte, maxDim int) (storage.Object, error) {
	img, err := storage.NormalizeImage(data, maxDim)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return storage.Object{}, apierror.BadRequest("Only image files are allowed", err.Error())
	}
	if err != nil {
		return storage.Object{}, err
	}

	return images.Put(ctx, folder, img)
}

// discardImage deletes an object that is no longer referenced. Failures
// leave an orphan behind and are only logged.
func discardImage(ctx context.Context, images storage.ImageStore, key string) {
	if key == "" {
		return
	}
	if err := images.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("delete stored image", "key", key, "error", err)
	}
}
