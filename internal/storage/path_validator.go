package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Stored images are always named <folder>/<uuid><ext> with a single
// lower-case folder chosen by the service and an extension NormalizeImage
// produces. Anything else is refused before it reaches a disk or a bucket.
var (
	folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

	imageExts = map[string]bool{".jpg": true, ".png": true}
)

// objectKey builds a fresh key for folder. Folder names come from code, never
// from clients, but are still reduced to their last clean segment.
func objectKey(folder string, ext string) string {
	folder = strings.ToLower(path.Base(path.Clean("/" + folder)))
	name := uuid.NewString() + ext
	if folder == "/" || folder == "." {
		return name
	}
	return folder + "/" + name
}

// parseKey splits a key into folder and file name, or fails with
// ErrInvalidKey.
func parseKey(key string) (folder string, name string, err error) {
	invalid := fmt.Errorf("%w: %q", ErrInvalidKey, key)

	folder, name = path.Split(key)
	folder = strings.TrimSuffix(folder, "/")
	if folder != "" && !folderPattern.MatchString(folder) {
		return "", "", invalid
	}

	ext := path.Ext(name)
	if !imageExts[ext] {
		return "", "", invalid
	}
	id, parseErr := uuid.Parse(strings.TrimSuffix(name, ext))
	if parseErr != nil || id.String()+ext != name {
		return "", "", invalid
	}
	return folder, name, nil
}

func validKey(key string) bool {
	_, _, err := parseKey(key)
	return err == nil
}

// diskRoot maps object keys to files under an absolute upload directory.
type diskRoot struct {
	abs string
}

func newDiskRoot(root string) (diskRoot, error) {
	if strings.TrimSpace(root) == "" {
		return diskRoot{}, fmt.Errorf("upload directory cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return diskRoot{}, fmt.Errorf("resolve upload directory: %w", err)
	}
	return diskRoot{abs: abs}, nil
}

func (r diskRoot) resolve(key string) (string, error) {
	folder, name, err := parseKey(key)
	if err != nil {
		return "", err
	}

	resolved := filepath.Join(r.abs, folder, name)
	if !strings.HasPrefix(resolved, r.abs+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the upload directory", ErrInvalidKey, key)
	}
	return resolved, nil
}
