package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", DetectMIME(png))
	assert.Equal(t, "text/plain; charset=utf-8", DetectMIME([]byte("hello")))
	assert.True(t, IsUploadableImage(DetectMIME(png)))
}

func TestImageHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImageMIME(" Image/PNG "))
	assert.False(t, IsImageMIME("application/pdf"))
	assert.False(t, IsUploadableImage("image/svg+xml"))
	assert.True(t, IsImageExtension(".JPG"))
	assert.False(t, IsImageExtension(".svg"))
}
