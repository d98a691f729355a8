// Command boomerang-web serves the browser-driven boomerang converter:
// uploads come in over HTTP, progress streams back over a WebSocket.
package main

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/boomerang/internal/config"
	"github.com/mantonx/boomerang/internal/logger"
	"github.com/mantonx/boomerang/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New("boomerang-web", hclog.Info, cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
