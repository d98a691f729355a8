// Package media provides input validation and ffprobe-based metadata
// extraction for source videos.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	bmerrors "github.com/mantonx/boomerang/internal/errors"
)

// MinDuration is the shortest source that still yields a perceptible
// boomerang; forward+reverse of anything shorter is imperceptible.
const MinDuration = 0.5

// VideoMetadata holds derived, read-only facts about a source video.
type VideoMetadata struct {
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	HasAudio bool    `json:"hasAudio"`
	Format   string  `json:"format"`
	Bitrate  int64   `json:"bitrate,omitempty"`
}

// ProbeOutput represents the JSON output from ffprobe
type ProbeOutput struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type ProbeFormat struct {
	Filename   string `json:"filename"`
	NbStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ProbeStream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
	BitRate      string `json:"bit_rate"`
}

// Inspector extracts video metadata via the external ffprobe binary.
type Inspector struct {
	ffprobePath string
	ffmpegPath  string
	logger      hclog.Logger
}

// NewInspector creates an inspector using the given binary paths. Empty
// paths fall back to "ffprobe"/"ffmpeg" on PATH.
func NewInspector(ffprobePath, ffmpegPath string, logger hclog.Logger) *Inspector {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Inspector{
		ffprobePath: ffprobePath,
		ffmpegPath:  ffmpegPath,
		logger:      logger.Named("inspector"),
	}
}

// CheckFFmpeg verifies both engine binaries are runnable.
func (i *Inspector) CheckFFmpeg(ctx context.Context) error {
	for _, bin := range []string{i.ffmpegPath, i.ffprobePath} {
		if err := exec.CommandContext(ctx, bin, "-version").Run(); err != nil {
			return bmerrors.Wrap(bmerrors.KindFfmpeg,
				"FFmpeg is not installed or not accessible, please install FFmpeg and ensure it's in your PATH", err)
		}
	}
	return nil
}

// Probe runs ffprobe on the file and derives VideoMetadata. The first video
// stream supplies geometry and frame rate; the first audio stream, if any,
// sets HasAudio.
func (i *Inspector) Probe(ctx context.Context, path string) (*VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, i.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)

	i.logger.Debug("running ffprobe", "file", path)

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitError.Stderr))
			return nil, bmerrors.Wrap(bmerrors.KindFfmpeg,
				fmt.Sprintf("failed to read video metadata: %s", stderr), err)
		}
		return nil, bmerrors.Wrap(bmerrors.KindFfmpeg, "failed to read video metadata", err)
	}

	var probe ProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, bmerrors.Wrap(bmerrors.KindProcessing, "failed to parse ffprobe output", err)
	}

	meta, err := MetadataFromProbe(&probe)
	if err != nil {
		return nil, err
	}

	if meta.Duration < MinDuration {
		return nil, bmerrors.New(bmerrors.KindInvalidInput,
			"video is too short for boomerang effect (minimum 0.5 seconds)")
	}

	i.logger.Debug("probe complete",
		"duration", meta.Duration,
		"fps", meta.FPS,
		"resolution", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"has_audio", meta.HasAudio)

	return meta, nil
}

// MetadataFromProbe derives VideoMetadata from parsed ffprobe output.
func MetadataFromProbe(probe *ProbeOutput) (*VideoMetadata, error) {
	var videoStream, audioStream *ProbeStream
	for idx := range probe.Streams {
		s := &probe.Streams[idx]
		switch s.CodecType {
		case "video":
			if videoStream == nil {
				videoStream = s
			}
		case "audio":
			if audioStream == nil {
				audioStream = s
			}
		}
	}

	if videoStream == nil {
		return nil, bmerrors.New(bmerrors.KindInvalidInput, "no video stream found in file")
	}

	duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	bitrate, _ := strconv.ParseInt(probe.Format.BitRate, 10, 64)

	format := probe.Format.FormatName
	if format == "" {
		format = "unknown"
	}

	return &VideoMetadata{
		Duration: duration,
		FPS:      parseFrameRate(videoStream.RFrameRate),
		Width:    videoStream.Width,
		Height:   videoStream.Height,
		HasAudio: audioStream != nil,
		Format:   format,
		Bitrate:  bitrate,
	}, nil
}

// parseFrameRate converts an ffprobe rational like "30000/1001" into a
// float, defaulting to 30 when absent or malformed.
func parseFrameRate(rate string) float64 {
	if rate == "" {
		return 30
	}
	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || num <= 0 {
		return 30
	}
	den := 1.0
	if len(parts) == 2 {
		den, err = strconv.ParseFloat(parts[1], 64)
		if err != nil || den <= 0 {
			den = 1
		}
	}
	return num / den
}
