package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Executor runs one external engine invocation, reporting the invocation's
// own completion as a 0-1 fraction. expectedDuration is the duration of the
// media the invocation writes, used to turn engine time ticks into fractions.
type Executor interface {
	Run(ctx context.Context, args []string, expectedDuration float64, onProgress func(fraction float64)) error
}

// FFmpegExecutor invokes the ffmpeg binary with machine-readable progress
// reporting on stdout.
type FFmpegExecutor struct {
	ffmpegPath string
	logger     hclog.Logger
}

// NewFFmpegExecutor creates an executor for the given binary path, falling
// back to "ffmpeg" on PATH when empty.
func NewFFmpegExecutor(ffmpegPath string, logger hclog.Logger) *FFmpegExecutor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegExecutor{
		ffmpegPath: ffmpegPath,
		logger:     logger.Named("ffmpeg"),
	}
}

// Run spawns ffmpeg and blocks until it exits, streaming progress fractions
// to onProgress. Failure includes the tail of stderr in the returned error.
func (e *FFmpegExecutor) Run(ctx context.Context, args []string, expectedDuration float64, onProgress func(float64)) error {
	full := append([]string{"-y", "-nostats", "-progress", "pipe:1"}, args...)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, full...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Debug("starting ffmpeg", "args", strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	monitorProgress(stdout, expectedDuration, onProgress)

	if err := cmd.Wait(); err != nil {
		tail := stderrTail(stderr.String(), 5)
		if tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}

	return nil
}

// monitorProgress parses ffmpeg's key=value progress stream, converting
// out_time_us ticks against the expected output duration into fractions.
// The terminal "progress=end" record maps to 1.0.
func monitorProgress(r io.Reader, expectedDuration float64, onProgress func(float64)) {
	if onProgress == nil {
		onProgress = func(float64) {}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case "out_time_us":
			if expectedDuration <= 0 {
				continue
			}
			if timeUs, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
				fraction := float64(timeUs) / 1e6 / expectedDuration
				if fraction > 1 {
					fraction = 1
				}
				if fraction >= 0 {
					onProgress(fraction)
				}
			}
		case "progress":
			if strings.TrimSpace(value) == "end" {
				onProgress(1.0)
			}
		}
	}
}

// stderrTail returns the last n non-empty lines of ffmpeg's stderr, which
// carry the actual failure reason.
func stderrTail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "; ")
}
