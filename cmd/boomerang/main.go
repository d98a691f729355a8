// Command boomerang converts a video into a boomerang clip: the input
// played forward, then immediately reversed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	bmerrors "github.com/mantonx/boomerang/internal/errors"
	"github.com/mantonx/boomerang/internal/logger"
	"github.com/mantonx/boomerang/internal/media"
	"github.com/mantonx/boomerang/internal/pipeline"
	"github.com/mantonx/boomerang/internal/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		output        = flag.String("output", "", "output file path (default: <input>_boomerang.<ext>)")
		quality       = flag.String("quality", "medium", "quality tier: high, medium or low")
		fps           = flag.Float64("fps", 0, "target frame rate for the output")
		maxDuration   = flag.Float64("max-duration", 0, "trim the input to this many seconds before reversal")
		preserveAudio = flag.Bool("preserve-audio", false, "keep (and reverse) the audio track")
		tempDir       = flag.String("temp-dir", "", "root directory for temporary files")
		verbose       = flag.Bool("verbose", false, "enable verbose logging")
		noProgress    = flag.Bool("no-progress", false, "disable the progress bar")
		ffmpegPath    = flag.String("ffmpeg", "", "path to the ffmpeg binary (default: ffmpeg on PATH)")
		ffprobePath   = flag.String("ffprobe", "", "path to the ffprobe binary (default: ffprobe on PATH)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input>\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 1
	}

	q, err := pipeline.ParseQuality(*quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	log := logger.New("boomerang", hclog.Warn, *verbose)

	opts := pipeline.ProcessingOptions{
		Input:         flag.Arg(0),
		Output:        *output,
		Quality:       q,
		FPS:           *fps,
		MaxDuration:   *maxDuration,
		PreserveAudio: *preserveAudio,
		TempDir:       *tempDir,
		Verbose:       *verbose,
	}

	inspector := media.NewInspector(*ffprobePath, *ffmpegPath, log)
	executor := pipeline.NewFFmpegExecutor(*ffmpegPath, log)
	proc := pipeline.NewProcessor(opts, inspector, executor, log)

	if !*noProgress {
		proc.SetObserver(renderProgress)
	}

	result := proc.Process(context.Background())
	if !*noProgress {
		fmt.Println()
	}

	if !result.Success {
		printError(result.Err)
		return 1
	}

	fmt.Printf("Boomerang created in %s\n", utils.FormatDuration(float64(result.ProcessingTime)/1000))
	fmt.Printf("Output: %s\n", result.OutputPath)
	if info, err := os.Stat(result.OutputPath); err == nil {
		fmt.Printf("Size: %s\n", utils.FormatFileSize(info.Size()))
	}
	if result.Metadata != nil {
		fmt.Printf("Source: %dx%d @ %.1ffps, %s\n",
			result.Metadata.Width, result.Metadata.Height,
			result.Metadata.FPS, utils.FormatDuration(result.Metadata.Duration))
	}
	return 0
}

// renderProgress draws a single-line console bar from progress events.
func renderProgress(p pipeline.ProcessingProgress) {
	const width = 30
	filled := int(p.Progress / 100 * width)
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
	fmt.Printf("\r[%s] %3.0f%% %-40s", bar, p.Progress, p.CurrentStep)
}

// printError writes a kind-specific message to stderr.
func printError(err *bmerrors.Error) {
	fmt.Fprintln(os.Stderr, "Error:", err.Error())

	switch err.Kind {
	case bmerrors.KindFfmpeg:
		fmt.Fprintln(os.Stderr, "Make sure FFmpeg is installed and available on your PATH.")
		fmt.Fprintln(os.Stderr, "See https://ffmpeg.org/download.html for installation instructions.")
	case bmerrors.KindUnsupportedFormat:
		fmt.Fprintln(os.Stderr, "Supported formats:", strings.Join(media.SupportedExtensions, ", "))
	}
}
