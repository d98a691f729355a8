// Package server exposes the boomerang pipeline as an HTTP/WebSocket
// service: multipart uploads start jobs, progress streams to the browser
// over a persistent connection, produced files are served for download.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/boomerang/internal/config"
	"github.com/mantonx/boomerang/internal/jobs"
	"github.com/mantonx/boomerang/internal/media"
	"github.com/mantonx/boomerang/internal/pipeline"
)

// Server owns the HTTP surface, the job registry and the observer hub.
type Server struct {
	cfg      *config.Config
	registry *jobs.Registry
	hub      *Hub
	prober   pipeline.MetadataProber
	executor pipeline.Executor
	logger   hclog.Logger
}

// New creates a server wired to the real ffmpeg/ffprobe binaries.
func New(cfg *config.Config, logger hclog.Logger) *Server {
	inspector := media.NewInspector(cfg.FFprobePath, cfg.FFmpegPath, logger)
	executor := pipeline.NewFFmpegExecutor(cfg.FFmpegPath, logger)
	return NewWithEngine(cfg, inspector, executor, logger)
}

// NewWithEngine creates a server with an injected engine, used by tests.
func NewWithEngine(cfg *config.Config, prober pipeline.MetadataProber, executor pipeline.Executor, logger hclog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		registry: jobs.NewRegistry(),
		hub:      NewHub(logger),
		prober:   prober,
		executor: executor,
		logger:   logger.Named("server"),
	}

	// a dropped observer deregisters its jobs; their pipelines keep running
	s.hub.SetDisconnectHandler(func(conn jobs.Conn) {
		for _, id := range s.registry.RemoveByConn(conn) {
			s.logger.Info("job observer disconnected", "job_id", id)
		}
	})

	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/upload", s.handleUpload)
		api.GET("/job/:jobId", s.handleJobStatus)
	}

	r.GET("/ws", s.hub.HandleWebSocket)

	r.Static("/output", s.cfg.OutputDir)
	r.Static("/uploads", s.cfg.UploadDir)
	r.StaticFile("/", filepath.Join(s.cfg.StaticDir, "index.html"))
	r.StaticFile("/style.css", filepath.Join(s.cfg.StaticDir, "style.css"))
	r.StaticFile("/script.js", filepath.Join(s.cfg.StaticDir, "script.js"))

	return r
}

// Run ensures the working directories exist, starts the stale-file sweeper
// and serves until the listener fails.
func (s *Server) Run() error {
	for _, dir := range []string{s.cfg.UploadDir, s.cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	sweeper := NewSweeper([]string{s.cfg.UploadDir, s.cfg.OutputDir},
		s.cfg.SweepMaxAge, s.cfg.SweepInterval, s.logger)
	go sweeper.Run()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.logger.Info("boomerang web server running",
		"addr", addr,
		"uploads", s.cfg.UploadDir,
		"output", s.cfg.OutputDir)

	return s.Router().Run(addr)
}
