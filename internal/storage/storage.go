// Package storage keeps uploaded images (avatars, project shots, logos and
// blog covers) either on local disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"

	"portfolio-api/internal/model"
)

// Object identifies a stored image. Key is what gets persisted so the
// object can be deleted later; URL is what clients see.
type Object struct {
	Key string
	URL string
}

type ImageStore interface {
	Put(ctx context.Context, folder string, img Image) (Object, error)
	Delete(ctx context.Context, key string) error
}

var ErrInvalidKey = errors.New("invalid object key")

// Config selects and configures a backend.
type Config struct {
	Driver    string
	UploadDir string
	PublicURL string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

func New(ctx context.Context, cfg Config) (ImageStore, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.PublicURL)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Disabled is used when no backend is configured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, Image) (Object, error) {
	return Object{}, model.ErrStorageDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return model.ErrStorageDisabled
}
