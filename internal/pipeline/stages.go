package pipeline

import (
	"fmt"
	"strconv"

	"github.com/mantonx/boomerang/internal/media"
)

// Stage names carried in engine errors.
const (
	stageForward = "forward"
	stageReverse = "reverse"
	stageConcat  = "concatenate"
)

// buildForwardArgs renders the (possibly trimmed) forward clip with the
// quality tier's encoder settings applied.
func buildForwardArgs(opts ProcessingOptions, meta *media.VideoMetadata, outputPath string) []string {
	args := []string{"-i", opts.Input}

	if opts.MaxDuration > 0 && meta.Duration > opts.MaxDuration {
		args = append(args, "-ss", "0", "-t", formatSeconds(opts.MaxDuration))
	}

	settings := opts.Quality.Settings()
	args = append(args, "-b:v", settings.VideoBitrate, "-preset", settings.Preset)

	if opts.FPS > 0 {
		args = append(args, "-r", formatSeconds(opts.FPS))
	}

	if !opts.PreserveAudio {
		args = append(args, "-an")
	}

	return append(args, outputPath)
}

// buildReverseArgs re-renders the forward clip with a temporal-reversal
// filter; audio is either reversed to match or dropped.
func buildReverseArgs(opts ProcessingOptions, forwardPath, outputPath string) []string {
	args := []string{"-i", forwardPath, "-vf", "reverse"}

	if opts.PreserveAudio {
		args = append(args, "-af", "areverse")
	} else {
		args = append(args, "-an")
	}

	return append(args, outputPath)
}

// buildConcatArgs splices the two clips via the concat demuxer in
// stream-copy mode. The reverse pass already applied the target encoding,
// so no re-encode is needed and frame fidelity is preserved.
func buildConcatArgs(listPath, outputPath string) []string {
	return []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
}

// concatListContent builds the ordered two-entry playlist for the concat
// demuxer: forward clip, then reverse clip.
func concatListContent(forwardPath, reversePath string) string {
	return fmt.Sprintf("file '%s'\nfile '%s'\n", forwardPath, reversePath)
}

// formatSeconds renders a float argument without trailing zeros.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
