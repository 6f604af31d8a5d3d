package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gltfkit/internal/loader"
	"github.com/samcharles93/gltfkit/internal/logger"
)

var (
	configFile   string
	workers      int
	decodeImages bool
	logLevel     string
	logFormat    string
	debug        bool

	appConfig Config
)

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "concurrent accessor decodes and buffer reads (0 = GOMAXPROCS)",
			Destination: &workers,
		},
		&cli.BoolFlag{
			Name:        "decode-images",
			Usage:       "decode PNG, JPEG and WebP images during import",
			Destination: &decodeImages,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setup loads the config file, applies it under the command line flags and
// installs the logger in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := configFile
	if path == "" {
		path = configPath()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}
	appConfig = cfg
	applyGlobalConfig(cmd, cfg)

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Setup(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}
	return logger.WithContext(ctx, log), nil
}

func newLoader() loader.Loader {
	return loader.Loader{Workers: workers, DecodeImages: decodeImages}
}
