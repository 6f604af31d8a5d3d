package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gltfkit/internal/report"
)

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize the buffers, views, accessors and images of an asset",
		ArgsUsage: "<file.gltf|file.glb>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the report as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := inputPath(cmd)
			if err != nil {
				return err
			}
			return runInspect(ctx, os.Stdout, path, asJSON)
		},
	}
}

func runInspect(ctx context.Context, w io.Writer, path string, asJSON bool) error {
	doc, err := newLoader().Load(ctx, path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = doc.Close() }()

	r := report.Build(doc)
	if !asJSON {
		return r.WriteText(w)
	}
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

func inputPath(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", cli.Exit(fmt.Sprintf("usage: gltfkit %s %s", cmd.Name, cmd.ArgsUsage), 1)
	}
	return cmd.Args().First(), nil
}
