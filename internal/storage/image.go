package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	maxSourcePixels = 40_000_000
	jpegQuality     = 85
)

var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// Image is an upload after normalisation, ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// NormalizeImage decodes an upload (jpeg, png, gif, bmp, tiff or webp),
// applies EXIF orientation, shrinks it to fit maxDim x maxDim and re-encodes
// it. Sources with transparency stay PNG, everything else becomes JPEG.
// Re-encoding drops metadata and anything smuggled after the image data.
func NormalizeImage(data []byte, maxDim int) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return Image{}, fmt.Errorf("%w: %dx%d is out of range", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if maxDim > 0 {
		b := img.Bounds()
		if b.Dx() > maxDim || b.Dy() > maxDim {
			img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png", "gif", "webp":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return Image{}, fmt.Errorf("encode png: %w", err)
		}
		return Image{Data: buf.Bytes(), ContentType: "image/png", Ext: ".png"}, nil
	default:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return Image{}, fmt.Errorf("encode jpeg: %w", err)
		}
		return Image{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: ".jpg"}, nil
	}
}
