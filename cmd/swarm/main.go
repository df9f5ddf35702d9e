package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/swarm2d/swarm"
	"github.com/swarm2d/swarm/app"
	"github.com/swarm2d/swarm/brain"
	"github.com/swarm2d/swarm/config"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "swarm.toml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	watch := flag.String("watch", "", "layout JSON file to watch and apply on change")
	flag.Parse()

	log := swarm.NewDefaultLogger("swarm", *debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	if *watch != "" {
		cfg.WatchPath = *watch
	}

	// One-shot mode: translate the prompt before the window opens so a
	// missing API key fails fast.
	var initialJSON string
	if prompt := strings.Join(flag.Args(), " "); prompt != "" {
		b, err := brain.New("", cfg.Brain.Model, log)
		if err != nil {
			log.Errorf("%v", err)
			fmt.Fprintln(os.Stderr, "get a key at https://makersuite.google.com/app/apikey and export "+brain.APIKeyEnv)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		initialJSON, err = b.Translate(ctx, prompt)
		cancel()
		if err != nil {
			log.Errorf("generation failed: %v", err)
			os.Exit(1)
		}
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application, err := app.New(window, cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	if initialJSON != "" {
		application.ApplyJSON(initialJSON)
	} else {
		application.StartPromptLoop()
	}
	if cfg.WatchPath != "" {
		if err := application.StartWatcher(cfg.WatchPath); err != nil {
			log.Warnf("%v", err)
		}
	}

	if err := application.Run(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
