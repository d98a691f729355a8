package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bmerrors "github.com/mantonx/boomerang/internal/errors"
)

// SupportedExtensions is the container allow-list for input videos.
var SupportedExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".m4v"}

// ValidateInputFile confirms the path resolves to an existing regular file.
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bmerrors.New(bmerrors.KindFileNotFound,
				fmt.Sprintf("file %q does not exist", path))
		}
		return bmerrors.Wrap(bmerrors.KindInvalidInput,
			fmt.Sprintf("cannot access file %q", path), err)
	}
	if !info.Mode().IsRegular() {
		return bmerrors.New(bmerrors.KindInvalidInput,
			fmt.Sprintf("path %q is not a file", path))
	}
	return nil
}

// ValidateFormat checks the extension against the supported container list.
func ValidateFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedExtension(ext) {
		return bmerrors.New(bmerrors.KindUnsupportedFormat,
			fmt.Sprintf("unsupported file format %q, supported formats: %s",
				ext, strings.Join(SupportedExtensions, ", ")))
	}
	return nil
}

// IsSupportedExtension reports whether ext (with leading dot, any case) is
// in the allow-list.
func IsSupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
