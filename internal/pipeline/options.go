package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Quality selects the encoder bitrate/speed trade-off.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// QualitySettings is the bitrate/preset pair a quality tier maps to.
type QualitySettings struct {
	VideoBitrate string
	Preset       string
}

var qualityTable = map[Quality]QualitySettings{
	QualityHigh:   {VideoBitrate: "8000k", Preset: "medium"},
	QualityMedium: {VideoBitrate: "4000k", Preset: "fast"},
	QualityLow:    {VideoBitrate: "2000k", Preset: "faster"},
}

// Settings returns the encoder settings for the tier, falling back to
// medium for unknown values.
func (q Quality) Settings() QualitySettings {
	if s, ok := qualityTable[q]; ok {
		return s
	}
	return qualityTable[QualityMedium]
}

// ParseQuality normalizes a user-supplied quality string.
func ParseQuality(s string) (Quality, error) {
	switch Quality(strings.ToLower(s)) {
	case QualityHigh:
		return QualityHigh, nil
	case QualityMedium, "":
		return QualityMedium, nil
	case QualityLow:
		return QualityLow, nil
	default:
		return "", fmt.Errorf("invalid quality %q (expected high, medium or low)", s)
	}
}

// ProcessingOptions is the immutable configuration for one job.
type ProcessingOptions struct {
	// Input video file path
	Input string
	// Output video file path; derived from Input when empty
	Output string
	// Quality tier
	Quality Quality
	// Target frame rate for the output; 0 keeps the source rate
	FPS float64
	// Maximum duration in seconds; longer sources are trimmed before reversal
	MaxDuration float64
	// Whether to keep (and reverse) the audio track
	PreserveAudio bool
	// Root for the job's temporary working directory; os.TempDir when empty
	TempDir string
	// Enable verbose logging
	Verbose bool
}

// withDefaults fills unset fields with the standard defaults.
func (o ProcessingOptions) withDefaults() ProcessingOptions {
	if o.Quality == "" {
		o.Quality = QualityMedium
	}
	return o
}

// GenerateOutputPath derives the output location when none was requested:
// the input's directory with a "_boomerang" suffix before the extension.
func GenerateOutputPath(inputPath, outputPath string) string {
	if outputPath != "" {
		return outputPath
	}
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return filepath.Join(filepath.Dir(inputPath), base+"_boomerang"+ext)
}
