package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mantonx/boomerang/internal/media"
)

func TestBuildForwardArgs(t *testing.T) {
	meta := &media.VideoMetadata{Duration: 10}

	t.Run("quality and audio drop", func(t *testing.T) {
		opts := ProcessingOptions{Input: "in.mp4", Quality: QualityHigh}
		args := strings.Join(buildForwardArgs(opts, meta, "fwd.mp4"), " ")
		assert.Contains(t, args, "-i in.mp4")
		assert.Contains(t, args, "-b:v 8000k")
		assert.Contains(t, args, "-preset medium")
		assert.Contains(t, args, "-an")
		assert.True(t, strings.HasSuffix(args, "fwd.mp4"))
	})

	t.Run("trim only when source exceeds max", func(t *testing.T) {
		opts := ProcessingOptions{Input: "in.mp4", Quality: QualityMedium, MaxDuration: 5}
		args := strings.Join(buildForwardArgs(opts, meta, "fwd.mp4"), " ")
		assert.Contains(t, args, "-ss 0 -t 5")

		opts.MaxDuration = 15
		args = strings.Join(buildForwardArgs(opts, meta, "fwd.mp4"), " ")
		assert.NotContains(t, args, "-t 15")
	})

	t.Run("fps and audio preserved", func(t *testing.T) {
		opts := ProcessingOptions{Input: "in.mp4", Quality: QualityLow, FPS: 24, PreserveAudio: true}
		args := strings.Join(buildForwardArgs(opts, meta, "fwd.mp4"), " ")
		assert.Contains(t, args, "-r 24")
		assert.NotContains(t, args, "-an")
	})
}

func TestBuildReverseArgs(t *testing.T) {
	t.Run("drops audio by default", func(t *testing.T) {
		args := strings.Join(buildReverseArgs(ProcessingOptions{}, "fwd.mp4", "rev.mp4"), " ")
		assert.Contains(t, args, "-i fwd.mp4")
		assert.Contains(t, args, "-vf reverse")
		assert.Contains(t, args, "-an")
		assert.NotContains(t, args, "areverse")
	})

	t.Run("reverses audio when preserved", func(t *testing.T) {
		args := strings.Join(buildReverseArgs(ProcessingOptions{PreserveAudio: true}, "fwd.mp4", "rev.mp4"), " ")
		assert.Contains(t, args, "-af areverse")
		assert.NotContains(t, args, "-an")
	})
}

func TestBuildConcatArgs(t *testing.T) {
	args := strings.Join(buildConcatArgs("list.txt", "out.mp4"), " ")
	assert.Equal(t, "-f concat -safe 0 -i list.txt -c copy out.mp4", args)
}

func TestConcatListContent(t *testing.T) {
	content := concatListContent("/tmp/job/forward.mp4", "/tmp/job/reverse.mp4")
	assert.Equal(t, "file '/tmp/job/forward.mp4'\nfile '/tmp/job/reverse.mp4'\n", content)
}
