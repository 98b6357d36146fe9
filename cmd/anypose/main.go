// Package main is the entry point for the AnyPose viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/config"
	"github.com/Faultbox/anypose/internal/engine/camera"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/internal/viewer"
)

func run(ctx context.Context, cmd *cli.Command) error {
	o := config.Overrides{
		ConfigPath:  cmd.String("config"),
		Debug:       cmd.Bool("debug"),
		Windowed:    cmd.Bool("windowed"),
		Fullscreen:  cmd.Bool("fullscreen"),
		BoneFile:    cmd.String("bones"),
		Constraints: cmd.String("constraints"),
		Watch:       cmd.Bool("watch"),
		Preset:      cmd.String("preset"),
	}
	if size := cmd.String("size"); size != "" {
		w, h, err := config.ParseSize(size)
		if err != nil {
			return err
		}
		o.Width, o.Height = w, h
	}

	// Load configuration
	cfg, err := config.Load(o)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer logger.Sync()

	logger.Info("=== AnyPose ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	app, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return err
	}

	logger.Info("viewer closed normally")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "anypose",
		Usage:  "Pose a humanoid rig with joint picking, a rotation gizmo and an orbit camera",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: ./config.yaml or the user config dir)",
				Sources: cli.EnvVars("ANYPOSE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "size",
				Usage: "Window size as WIDTHxHEIGHT",
			},
			&cli.BoolFlag{
				Name:  "fullscreen",
				Usage: "Run in fullscreen mode",
			},
			&cli.BoolFlag{
				Name:  "windowed",
				Usage: "Run in windowed mode",
			},
			&cli.StringFlag{
				Name:    "bones",
				Usage:   "Bone file of an imported rig to pose instead of the humanoid",
				Sources: cli.EnvVars("ANYPOSE_BONES"),
			},
			&cli.StringFlag{
				Name:    "constraints",
				Usage:   "YAML joint constraint table",
				Sources: cli.EnvVars("ANYPOSE_CONSTRAINTS"),
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload the constraint table when it changes on disk",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Initial camera preset: " + strings.Join(camera.PresetNames(), ", "),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "anypose: %v\n", err)
		os.Exit(1)
	}
}
