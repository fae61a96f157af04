/*
meshview renders a rotating model loaded from a Wavefront OBJ file, or a
coloured cube when no model is given.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/meshview/engine"
	"github.com/spaghettifunk/meshview/engine/config"
	"github.com/spaghettifunk/meshview/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML viewer configuration")
	model := flag.String("model", "", "OBJ model to show instead of the configured one")
	inspect := flag.Bool("inspect", false, "load the model, log its statistics and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("failed to load config: %s", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *inspect {
		cfg.Watch = false
	}

	e, err := engine.New(cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	if *inspect {
		if err := e.Inspect(); err != nil {
			core.LogFatal(err.Error())
		}
		_ = e.Shutdown()
		return
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = e.Shutdown()
	}()

	// run engine
	if err := e.Run(); err != nil {
		core.LogFatal(err.Error())
	}
}
