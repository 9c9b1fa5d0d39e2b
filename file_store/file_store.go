package file_store

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/Luismorlan/blogmux/utils"
)

// ImageStore keeps user uploaded profile images. Names are final file names,
// callers pick and sanitize them.
type ImageStore interface {
	Save(ctx context.Context, name string, content io.Reader) error
	Exists(ctx context.Context, name string) (bool, error)
	// Delete removes the image, deleting a missing image is not an error.
	Delete(ctx context.Context, name string) error
	UrlFor(name string) string
}

// AllowedImage returns true iff fileName has an extension in allowed,
// compared case insensitively and without the dot.
func AllowedImage(fileName string, allowed []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		return false
	}
	return utils.ContainsString(allowed, ext)
}
