package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gltfkit/internal/logger"
	"github.com/samcharles93/gltfkit/internal/report"
	"github.com/samcharles93/gltfkit/pkg/gltf"
)

func packCmd() *cli.Command {
	var (
		out    string
		repack bool
		force  bool
	)

	return &cli.Command{
		Name:      "pack",
		Usage:     "Write an asset as a self-contained GLB",
		ArgsUsage: "<file.gltf|file.glb>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output GLB path",
				Required:    true,
				Destination: &out,
			},
			&cli.BoolFlag{
				Name:        "repack",
				Usage:       "rebuild buffer views from decoded accessors, dropping unused bytes",
				Destination: &repack,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite the output file",
				Destination: &force,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := inputPath(cmd)
			if err != nil {
				return err
			}
			return runPack(ctx, path, out, repack, force)
		},
	}
}

func runPack(ctx context.Context, in, out string, repack, force bool) error {
	log := logger.FromContext(ctx)

	if !force {
		if _, err := os.Stat(out); err == nil {
			return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", out), 1)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	doc, err := newLoader().Load(ctx, in)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = doc.Close() }()

	var data []byte
	if repack {
		root, blobs, err := doc.Repack()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		data, err = gltf.ExportBinary(root, blobs)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	} else {
		data, err = doc.ExportBinary()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("wrote glb",
		"path", out,
		"size", report.FormatBytes(uint64(len(data))),
		"repack", repack,
		"blake3", report.Digest(data),
	)
	return nil
}
