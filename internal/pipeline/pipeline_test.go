package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bmerrors "github.com/mantonx/boomerang/internal/errors"
	"github.com/mantonx/boomerang/internal/media"
)

type fakeProber struct {
	meta      *media.VideoMetadata
	probeErr  error
	checkErr  error
	probeCall int
}

func (f *fakeProber) CheckFFmpeg(ctx context.Context) error { return f.checkErr }

func (f *fakeProber) Probe(ctx context.Context, path string) (*media.VideoMetadata, error) {
	f.probeCall++
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return f.meta, nil
}

// fakeExecutor records every invocation and replays scripted progress ticks.
type fakeExecutor struct {
	invocations [][]string
	durations   []float64
	ticks       []float64
	failAt      int // 1-based invocation index to fail on; 0 never fails
	failErr     error
	onRun       func(args []string)
}

func (f *fakeExecutor) Run(ctx context.Context, args []string, expectedDuration float64, onProgress func(float64)) error {
	f.invocations = append(f.invocations, args)
	f.durations = append(f.durations, expectedDuration)
	if f.onRun != nil {
		f.onRun(args)
	}
	if f.failAt > 0 && len(f.invocations) == f.failAt {
		if f.failErr != nil {
			return f.failErr
		}
		return errors.New("exit status 1")
	}
	for _, tick := range f.ticks {
		onProgress(tick)
	}
	onProgress(1.0)
	return nil
}

func testMeta() *media.VideoMetadata {
	return &media.VideoMetadata{
		Duration: 10,
		FPS:      30,
		Width:    1920,
		Height:   1080,
		HasAudio: false,
		Format:   "mov,mp4,m4a,3gp,3g2,mj2",
	}
}

func newTestProcessor(t *testing.T, opts ProcessingOptions, prober MetadataProber, exec Executor) *Processor {
	t.Helper()
	return NewProcessor(opts, prober, exec, hclog.NewNullLogger())
}

func inputFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0o644))
	return path
}

func TestProcessSuccess(t *testing.T) {
	input := inputFile(t)
	tempRoot := t.TempDir()
	exec := &fakeExecutor{ticks: []float64{0.25, 0.5, 0.75}}
	prober := &fakeProber{meta: testMeta()}

	var events []ProcessingProgress
	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: tempRoot}, prober, exec)
	p.SetObserver(func(e ProcessingProgress) { events = append(events, e) })

	result := p.Process(context.Background())

	require.True(t, result.Success)
	require.Nil(t, result.Err)
	assert.Equal(t, GenerateOutputPath(input, ""), result.OutputPath)
	assert.Equal(t, testMeta(), result.Metadata)
	assert.GreaterOrEqual(t, result.ProcessingTime, int64(0))

	// three engine invocations in strict order
	require.Len(t, exec.invocations, 3)
	assert.Contains(t, exec.invocations[0], input)
	assert.Contains(t, exec.invocations[1], "reverse")
	assert.Contains(t, exec.invocations[2], "concat")
	assert.Contains(t, exec.invocations[2], "copy")

	// concat expects twice the clip duration
	assert.Equal(t, []float64{10, 10, 20}, exec.durations)

	// progress: non-decreasing, starts at 0, ends at exactly 100 / finalizing
	require.NotEmpty(t, events)
	assert.Equal(t, 0.0, events[0].Progress)
	last := events[len(events)-1]
	assert.Equal(t, 100.0, last.Progress)
	assert.Equal(t, StageFinalizing, last.Stage)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Progress, events[i-1].Progress,
			"event %d regressed: %+v -> %+v", i, events[i-1], events[i])
	}
}

func TestProcessRemovesTempDir(t *testing.T) {
	input := inputFile(t)
	tempRoot := t.TempDir()

	var jobTempDir string
	exec := &fakeExecutor{onRun: func(args []string) {
		if jobTempDir == "" {
			// forward output is the last argument, inside the job temp dir
			jobTempDir = filepath.Dir(args[len(args)-1])
		}
	}}
	prober := &fakeProber{meta: testMeta()}

	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: tempRoot}, prober, exec)
	result := p.Process(context.Background())

	require.True(t, result.Success)
	require.NotEmpty(t, jobTempDir)
	_, err := os.Stat(jobTempDir)
	assert.True(t, os.IsNotExist(err), "temp dir should be removed after success")
}

func TestProcessRemovesTempDirOnFailure(t *testing.T) {
	input := inputFile(t)
	tempRoot := t.TempDir()

	var jobTempDir string
	exec := &fakeExecutor{failAt: 2, onRun: func(args []string) {
		if jobTempDir == "" {
			jobTempDir = filepath.Dir(args[len(args)-1])
		}
	}}
	prober := &fakeProber{meta: testMeta()}

	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: tempRoot}, prober, exec)
	result := p.Process(context.Background())

	require.False(t, result.Success)
	require.NotEmpty(t, jobTempDir)
	_, err := os.Stat(jobTempDir)
	assert.True(t, os.IsNotExist(err), "temp dir should be removed after failure")
}

func TestProcessStageFailureAbortsPipeline(t *testing.T) {
	input := inputFile(t)
	exec := &fakeExecutor{ticks: []float64{0.5}, failAt: 2}
	prober := &fakeProber{meta: testMeta()}

	var events []ProcessingProgress
	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: t.TempDir()}, prober, exec)
	p.SetObserver(func(e ProcessingProgress) { events = append(events, e) })

	result := p.Process(context.Background())

	require.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Equal(t, bmerrors.KindFfmpeg, result.Err.Kind)
	assert.Equal(t, "reverse", result.Err.Stage)
	assert.Empty(t, result.OutputPath)

	// concat never ran
	assert.Len(t, exec.invocations, 2)

	// failure terminates the sequence early: no synthetic 100
	last := events[len(events)-1]
	assert.Less(t, last.Progress, 100.0)
}

func TestProcessTooShortFailsBeforeAnySubprocess(t *testing.T) {
	input := inputFile(t)
	exec := &fakeExecutor{}
	prober := &fakeProber{probeErr: bmerrors.New(bmerrors.KindInvalidInput,
		"video is too short for boomerang effect (minimum 0.5 seconds)")}

	p := newTestProcessor(t, ProcessingOptions{Input: input}, prober, exec)
	result := p.Process(context.Background())

	require.False(t, result.Success)
	assert.Equal(t, bmerrors.KindInvalidInput, result.Err.Kind)
	assert.Empty(t, exec.invocations, "no engine process may be spawned for a too-short source")
}

func TestProcessFFmpegUnavailable(t *testing.T) {
	input := inputFile(t)
	exec := &fakeExecutor{}
	prober := &fakeProber{checkErr: bmerrors.New(bmerrors.KindFfmpeg, "FFmpeg is not installed")}

	p := newTestProcessor(t, ProcessingOptions{Input: input}, prober, exec)
	result := p.Process(context.Background())

	require.False(t, result.Success)
	assert.Equal(t, bmerrors.KindFfmpeg, result.Err.Kind)
	assert.Equal(t, 0, prober.probeCall)
	assert.Empty(t, exec.invocations)
}

func TestProcessMissingInput(t *testing.T) {
	exec := &fakeExecutor{}
	prober := &fakeProber{meta: testMeta()}

	p := newTestProcessor(t, ProcessingOptions{Input: "/nonexistent/clip.mp4"}, prober, exec)
	result := p.Process(context.Background())

	require.False(t, result.Success)
	assert.Equal(t, bmerrors.KindFileNotFound, result.Err.Kind)
	assert.Empty(t, exec.invocations)
}

func TestProcessUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.wmv")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	p := newTestProcessor(t, ProcessingOptions{Input: input}, &fakeProber{meta: testMeta()}, &fakeExecutor{})
	result := p.Process(context.Background())

	require.False(t, result.Success)
	assert.Equal(t, bmerrors.KindUnsupportedFormat, result.Err.Kind)
}

func TestProcessMaxDurationTrims(t *testing.T) {
	input := inputFile(t)
	exec := &fakeExecutor{}
	prober := &fakeProber{meta: testMeta()} // 10s source

	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: t.TempDir(), MaxDuration: 5}, prober, exec)
	result := p.Process(context.Background())

	require.True(t, result.Success)
	forward := strings.Join(exec.invocations[0], " ")
	assert.Contains(t, forward, "-ss 0 -t 5")

	// forward and reverse clips run at 5s, concat at 10s
	assert.Equal(t, []float64{5, 5, 10}, exec.durations)
}

func TestProcessMaxDurationLongerThanSourceDoesNotTrim(t *testing.T) {
	input := inputFile(t)
	exec := &fakeExecutor{}
	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: t.TempDir(), MaxDuration: 30},
		&fakeProber{meta: testMeta()}, exec)

	result := p.Process(context.Background())
	require.True(t, result.Success)
	assert.NotContains(t, strings.Join(exec.invocations[0], " "), "-t 30")
	assert.Equal(t, []float64{10, 10, 20}, exec.durations)
}

func TestProcessConcatListOrder(t *testing.T) {
	input := inputFile(t)

	var listContent string
	exec := &fakeExecutor{}
	exec.onRun = func(args []string) {
		if len(exec.invocations) == 3 {
			// read the playlist while it still exists
			for i, a := range args {
				if a == "-i" && i+1 < len(args) {
					data, err := os.ReadFile(args[i+1])
					if err == nil {
						listContent = string(data)
					}
				}
			}
		}
	}

	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: t.TempDir()},
		&fakeProber{meta: testMeta()}, exec)
	result := p.Process(context.Background())

	require.True(t, result.Success)
	require.NotEmpty(t, listContent)
	fwdIdx := strings.Index(listContent, "forward.mp4")
	revIdx := strings.Index(listContent, "reverse.mp4")
	require.NotEqual(t, -1, fwdIdx)
	require.NotEqual(t, -1, revIdx)
	assert.Less(t, fwdIdx, revIdx, "forward clip must precede reverse clip")
}

func TestSetObserverReplaces(t *testing.T) {
	input := inputFile(t)
	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: t.TempDir()},
		&fakeProber{meta: testMeta()}, &fakeExecutor{})

	var first, second int
	p.SetObserver(func(ProcessingProgress) { first++ })
	p.SetObserver(func(ProcessingProgress) { second++ })

	result := p.Process(context.Background())
	require.True(t, result.Success)
	assert.Zero(t, first, "replaced observer must not receive events")
	assert.Positive(t, second)
}

func TestProcessWithoutObserver(t *testing.T) {
	input := inputFile(t)
	p := newTestProcessor(t, ProcessingOptions{Input: input, TempDir: t.TempDir()},
		&fakeProber{meta: testMeta()}, &fakeExecutor{})

	// events are dropped, not an error
	result := p.Process(context.Background())
	assert.True(t, result.Success)
}
