/*
screenfx renders a few frames of a synthetic scene headless through the
blur and depth passes and writes the game camera to an image file
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/screenfx/engine"
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/testbed"
)

func main() {
	settingsPath := flag.String("settings", "", "TOML settings file")
	frames := flag.Int("frames", 0, "frames to render, 0 uses the settings")
	watch := flag.Bool("watch", false, "reload the settings file when it changes")
	flag.Parse()

	tb, err := testbed.NewTestGame(*settingsPath, nil, *watch)
	if err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		os.Exit(1)
	}

	if err := e.Initialize(); err != nil {
		os.Exit(1)
	}

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	n := *frames
	if n == 0 {
		n = e.Settings().Testbed.Frames
	}

	// run engine
	runErr := e.Run(ctx, n)
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
