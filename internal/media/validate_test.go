package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bmerrors "github.com/mantonx/boomerang/internal/errors"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		err := ValidateInputFile(filepath.Join(dir, "missing.mp4"))
		require.Error(t, err)
		assert.Equal(t, bmerrors.KindFileNotFound, bmerrors.KindOf(err))
	})

	t.Run("directory is not a file", func(t *testing.T) {
		err := ValidateInputFile(dir)
		require.Error(t, err)
		assert.Equal(t, bmerrors.KindInvalidInput, bmerrors.KindOf(err))
	})

	t.Run("regular file passes", func(t *testing.T) {
		path := filepath.Join(dir, "clip.mp4")
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
		assert.NoError(t, ValidateInputFile(path))
	})
}

func TestValidateFormat(t *testing.T) {
	for _, ext := range SupportedExtensions {
		t.Run("accepts "+ext, func(t *testing.T) {
			assert.NoError(t, ValidateFormat("video"+ext))
		})
	}

	t.Run("accepts uppercase extension", func(t *testing.T) {
		assert.NoError(t, ValidateFormat("VIDEO.MP4"))
	})

	for _, name := range []string{"clip.wmv", "clip.flv", "clip.txt", "clip", "clip.mp3"} {
		t.Run("rejects "+name, func(t *testing.T) {
			err := ValidateFormat(name)
			require.Error(t, err)
			assert.Equal(t, bmerrors.KindUnsupportedFormat, bmerrors.KindOf(err))
		})
	}
}

func TestIsSupportedExtension(t *testing.T) {
	assert.True(t, IsSupportedExtension(".MOV"))
	assert.True(t, IsSupportedExtension(".webm"))
	assert.False(t, IsSupportedExtension(".gif"))
	assert.False(t, IsSupportedExtension(""))
}
