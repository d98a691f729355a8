package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/mantonx/boomerang/internal/jobs"
	"github.com/mantonx/boomerang/internal/media"
	"github.com/mantonx/boomerang/internal/pipeline"
)

// handleHealth is the liveness probe, reporting basic system stats alongside
// the timestamp.
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":     "ok",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"activeJobs": s.registry.Count(),
	}
	if v, err := mem.VirtualMemory(); err == nil {
		resp["memoryUsedPercent"] = v.UsedPercent
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		resp["cpuPercent"] = pcts[0]
	}
	c.JSON(http.StatusOK, resp)
}

// handleUpload accepts a multipart video, binds it to the first open
// observer connection and starts the pipeline in the background.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes())

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}

	ext := filepath.Ext(file.Filename)
	if !media.IsSupportedExtension(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(
			"Unsupported file format %q. Supported formats: %s",
			ext, strings.Join(media.SupportedExtensions, ", "))})
		return
	}

	quality, err := pipeline.ParseQuality(c.PostForm("quality"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	observer := s.hub.FirstOpen()
	if observer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active WebSocket connection"})
		return
	}

	inputPath := filepath.Join(s.cfg.UploadDir,
		fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		s.logger.Error("failed to store upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	opts := pipeline.ProcessingOptions{
		Input:         inputPath,
		Quality:       quality,
		PreserveAudio: c.PostForm("preserveAudio") == "true",
		Verbose:       true,
	}
	if v := c.PostForm("fps"); v != "" {
		if fps, err := strconv.ParseFloat(v, 64); err == nil && fps > 0 {
			opts.FPS = fps
		}
	}
	if v := c.PostForm("maxDuration"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d > 0 {
			opts.MaxDuration = d
		}
	}

	job := s.registry.Add(file.Filename, nil, observer)
	opts.Output = filepath.Join(s.cfg.OutputDir, job.ID+"_boomerang.mp4")

	proc := pipeline.NewProcessor(opts, s.prober, s.executor, s.logger)
	job.Processor = proc

	proc.SetObserver(func(p pipeline.ProcessingProgress) {
		// send failures mean the observer went away; processing continues
		_ = job.Conn.WriteJSON(progressMessage{
			Type:  "progress",
			JobID: job.ID,
			Progress: progressPayload{
				ProcessingProgress: p,
				FileName:           job.FileName,
			},
		})
	})

	s.logger.Info("job accepted",
		"job_id", job.ID,
		"file", job.FileName,
		"quality", string(quality))

	go s.runJob(job, inputPath)

	c.JSON(http.StatusOK, gin.H{"jobId": job.ID, "status": "processing"})
}

// runJob drives one pipeline to its terminal state, relays the terminal
// message, then deregisters the job and deletes the uploaded source.
func (s *Server) runJob(job *jobs.Job, inputPath string) {
	result := job.Processor.Process(context.Background())

	if result.Success {
		_ = job.Conn.WriteJSON(completeMessage{
			Type:  "complete",
			JobID: job.ID,
			Result: completeResult{
				Result:      result,
				DownloadURL: "/output/" + filepath.Base(result.OutputPath),
				FileName:    job.FileName,
			},
		})
		s.logger.Info("job complete", "job_id", job.ID, "elapsed_ms", result.ProcessingTime)
	} else {
		_ = job.Conn.WriteJSON(errorMessage{
			Type:     "error",
			JobID:    job.ID,
			Error:    result.Err.Error(),
			FileName: job.FileName,
		})
		s.logger.Error("job failed", "job_id", job.ID, "error", result.Err.Error())
	}

	if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove uploaded file", "path", inputPath, "error", err)
	}
	s.registry.Remove(job.ID)
}

// handleJobStatus reports whether a job is still tracked.
func (s *Server) handleJobStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	if _, ok := s.registry.Get(jobID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobId": jobID, "status": "processing"})
}
