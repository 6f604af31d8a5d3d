package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the gltfkit configuration file (~/.config/gltfkit/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	Workers      *int  `yaml:"workers"`
	DecodeImages *bool `yaml:"decode_images"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress    string   `yaml:"server_address"`
	MaxUploadBytes   *int64   `yaml:"max_upload_bytes"`
	UploadsPerSecond *float64 `yaml:"uploads_per_second"`
	UploadBurst      *int     `yaml:"upload_burst"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gltfkit", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyGlobalConfig applies config defaults to the root flags that were
// not set on the command line.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.DecodeImages != nil && !c.IsSet("decode-images") {
		decodeImages = *cfg.DecodeImages
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64, rps *float64, burst *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUploadBytes != nil && !c.IsSet("max-upload") {
		*maxUpload = *cfg.MaxUploadBytes
	}
	if cfg.UploadsPerSecond != nil && !c.IsSet("uploads-per-second") {
		*rps = *cfg.UploadsPerSecond
	}
	if cfg.UploadBurst != nil && !c.IsSet("upload-burst") {
		*burst = *cfg.UploadBurst
	}
}
