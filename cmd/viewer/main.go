// Command viewer renders the hexagon scene with HDR bloom post-processing.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"hexview/core"
	"hexview/internal/config"
	"hexview/internal/logging"
	"hexview/internal/opengl"
)

func main() {
	configPath := flag.String("config", "viewer.yaml", "YAML configuration file")
	statePath := flag.String("state", "", "program-state file, overrides state_path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Viewer failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg config.Config, log *zap.Logger) error {
	win, err := core.NewWindow(core.WindowConfig{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	version, err := opengl.Init()
	if err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized", zap.String("version", version),
		zap.Int("width", win.Width), zap.Int("height", win.Height))

	a, err := newApp(cfg, log, win)
	if err != nil {
		return err
	}
	defer a.close()

	a.run()
	return nil
}
