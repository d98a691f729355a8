// Package pipeline orchestrates the boomerang conversion: input validation,
// metadata extraction, three dependent engine invocations (forward clip,
// reversed clip, lossless concatenation) and temp-resource cleanup, with
// unified progress reporting to a single optional observer.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	bmerrors "github.com/mantonx/boomerang/internal/errors"
	"github.com/mantonx/boomerang/internal/media"
)

// MetadataProber extracts source facts and checks engine availability.
// *media.Inspector is the production implementation.
type MetadataProber interface {
	CheckFFmpeg(ctx context.Context) error
	Probe(ctx context.Context, path string) (*media.VideoMetadata, error)
}

// Result is the terminal outcome of one conversion. Exactly one of
// OutputPath and Err is populated.
type Result struct {
	Success        bool                 `json:"success"`
	OutputPath     string               `json:"outputPath,omitempty"`
	Metadata       *media.VideoMetadata `json:"metadata,omitempty"`
	ProcessingTime int64                `json:"processingTime"`
	Err            *bmerrors.Error      `json:"-"`
}

// Processor drives one conversion from validation to cleanup. Instances are
// single-use: one call to Process per Processor.
type Processor struct {
	opts     ProcessingOptions
	prober   MetadataProber
	executor Executor
	logger   hclog.Logger

	observer     func(ProcessingProgress)
	tempDir      string
	lastProgress float64
}

// NewProcessor creates a processor for one job.
func NewProcessor(opts ProcessingOptions, prober MetadataProber, executor Executor, logger hclog.Logger) *Processor {
	return &Processor{
		opts:     opts.withDefaults(),
		prober:   prober,
		executor: executor,
		logger:   logger.Named("pipeline"),
	}
}

// SetObserver registers the single progress observer. A new registration
// replaces the previous one; without one, events are dropped.
func (p *Processor) SetObserver(fn func(ProcessingProgress)) {
	p.observer = fn
}

// Process runs the full conversion and never propagates a raw failure: every
// error is classified and returned inside the Result after best-effort
// cleanup of the temp directory.
func (p *Processor) Process(ctx context.Context) *Result {
	start := time.Now()

	outputPath, meta, err := p.run(ctx)
	p.cleanupTemp()

	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		classified := bmerrors.Classify(err)
		if p.opts.Verbose {
			p.logger.Error("processing failed",
				"kind", classified.Kind,
				"stage", classified.Stage,
				"error", classified.Error())
		}
		return &Result{Success: false, Err: classified, ProcessingTime: elapsed}
	}

	if p.opts.Verbose {
		p.logger.Info("boomerang created",
			"output", outputPath,
			"elapsed_ms", elapsed)
	}

	return &Result{
		Success:        true,
		OutputPath:     outputPath,
		Metadata:       meta,
		ProcessingTime: elapsed,
	}
}

func (p *Processor) run(ctx context.Context) (string, *media.VideoMetadata, error) {
	meta, err := p.analyze(ctx)
	if err != nil {
		return "", nil, err
	}

	if err := p.setupTempDir(); err != nil {
		return "", nil, err
	}

	outputPath := GenerateOutputPath(p.opts.Input, p.opts.Output)
	forwardPath := filepath.Join(p.tempDir, "forward.mp4")
	reversePath := filepath.Join(p.tempDir, "reverse.mp4")

	clipDuration := meta.Duration
	if p.opts.MaxDuration > 0 && clipDuration > p.opts.MaxDuration {
		clipDuration = p.opts.MaxDuration
	}

	if err := p.createForward(ctx, meta, clipDuration, forwardPath); err != nil {
		return "", nil, err
	}
	if err := p.createReverse(ctx, clipDuration, forwardPath, reversePath); err != nil {
		return "", nil, err
	}
	if err := p.concatenate(ctx, clipDuration, forwardPath, reversePath, outputPath); err != nil {
		return "", nil, err
	}

	p.report(StageFinalizing, 100, "Boomerang complete!")
	return outputPath, meta, nil
}

// analyze validates the environment and input, then probes the source.
func (p *Processor) analyze(ctx context.Context) (*media.VideoMetadata, error) {
	p.report(StageAnalyzing, analyzeBand.scale(0), "Validating environment...")

	if err := p.prober.CheckFFmpeg(ctx); err != nil {
		return nil, err
	}
	if err := media.ValidateInputFile(p.opts.Input); err != nil {
		return nil, err
	}
	if err := media.ValidateFormat(p.opts.Input); err != nil {
		return nil, err
	}

	p.report(StageAnalyzing, analyzeBand.scale(0.25), "Environment validated")
	p.report(StageAnalyzing, analyzeBand.scale(0.5), "Analyzing video metadata...")

	meta, err := p.prober.Probe(ctx, p.opts.Input)
	if err != nil {
		return nil, err
	}

	if p.opts.MaxDuration > 0 && meta.Duration > p.opts.MaxDuration && p.opts.Verbose {
		p.logger.Info("video will be trimmed", "max_duration", p.opts.MaxDuration)
	}

	if p.opts.Verbose {
		p.logger.Info("video analyzed",
			"resolution", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
			"fps", meta.FPS,
			"duration", meta.Duration,
			"has_audio", meta.HasAudio)
	}

	p.report(StageAnalyzing, analyzeBand.scale(1), "Video analysis complete")
	return meta, nil
}

func (p *Processor) setupTempDir() error {
	base := p.opts.TempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, fmt.Sprintf("boomerang_%d_%s",
		time.Now().UnixNano(), uuid.NewString()[:8]))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return bmerrors.Wrap(bmerrors.KindProcessing, "failed to create temp directory", err)
	}
	p.tempDir = dir

	if p.opts.Verbose {
		p.logger.Debug("temp directory created", "dir", dir)
	}
	return nil
}

func (p *Processor) createForward(ctx context.Context, meta *media.VideoMetadata, clipDuration float64, forwardPath string) error {
	p.report(StageProcessing, forwardBand.lo, "Creating forward video...")

	args := buildForwardArgs(p.opts, meta, forwardPath)
	err := p.executor.Run(ctx, args, clipDuration, func(fraction float64) {
		p.report(StageProcessing, forwardBand.scale(fraction),
			fmt.Sprintf("Processing forward video... %d%%", int(fraction*100)))
	})
	if err != nil {
		return bmerrors.FFmpeg(stageForward, "failed to create forward video", err)
	}

	p.report(StageProcessing, forwardBand.hi, "Forward video created")
	return nil
}

func (p *Processor) createReverse(ctx context.Context, clipDuration float64, forwardPath, reversePath string) error {
	p.report(StageProcessing, reverseBand.lo, "Creating reverse video...")

	args := buildReverseArgs(p.opts, forwardPath, reversePath)
	err := p.executor.Run(ctx, args, clipDuration, func(fraction float64) {
		p.report(StageProcessing, reverseBand.scale(fraction),
			fmt.Sprintf("Creating reverse video... %d%%", int(fraction*100)))
	})
	if err != nil {
		return bmerrors.FFmpeg(stageReverse, "failed to create reverse video", err)
	}

	p.report(StageProcessing, reverseBand.hi, "Reverse video created")
	return nil
}

func (p *Processor) concatenate(ctx context.Context, clipDuration float64, forwardPath, reversePath, outputPath string) error {
	p.report(StageConcatenating, concatBand.lo, "Concatenating videos...")

	listPath := filepath.Join(p.tempDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(concatListContent(forwardPath, reversePath)), 0o644); err != nil {
		return bmerrors.Wrap(bmerrors.KindOutput, "failed to write concat list", err)
	}

	args := buildConcatArgs(listPath, outputPath)
	err := p.executor.Run(ctx, args, clipDuration*2, func(fraction float64) {
		p.report(StageConcatenating, concatBand.scale(fraction),
			fmt.Sprintf("Concatenating... %d%%", int(fraction*100)))
	})
	if err != nil {
		return bmerrors.FFmpeg(stageConcat, "failed to concatenate videos", err)
	}

	return nil
}

// report pushes one progress event to the observer, clamping to keep the
// sequence non-decreasing.
func (p *Processor) report(stage Stage, progress float64, step string) {
	if progress < p.lastProgress {
		progress = p.lastProgress
	}
	p.lastProgress = progress

	if p.observer != nil {
		p.observer(ProcessingProgress{
			Stage:       stage,
			Progress:    progress,
			CurrentStep: step,
		})
	}
}

// cleanupTemp removes the job's working directory. Failures are logged as
// warnings so they never mask the primary error.
func (p *Processor) cleanupTemp() {
	if p.tempDir == "" {
		return
	}
	if err := os.RemoveAll(p.tempDir); err != nil {
		p.logger.Warn("failed to clean up temp directory", "dir", p.tempDir, "error", err)
		return
	}
	if p.opts.Verbose {
		p.logger.Debug("temp directory removed", "dir", p.tempDir)
	}
}
