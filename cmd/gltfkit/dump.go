package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func dumpCmd() *cli.Command {
	var (
		index  int
		limit  int
		asJSON bool
	)

	return &cli.Command{
		Name:      "dump",
		Usage:     "Print the decoded elements of one accessor",
		ArgsUsage: "<file.gltf|file.glb>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "accessor",
				Aliases:     []string{"a"},
				Usage:       "accessor index",
				Destination: &index,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum elements to print (0 = all)",
				Value:       32,
				Destination: &limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print elements as a JSON array",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := inputPath(cmd)
			if err != nil {
				return err
			}
			return runDump(ctx, os.Stdout, path, index, limit, asJSON)
		},
	}
}

func runDump(ctx context.Context, w io.Writer, path string, index, limit int, asJSON bool) error {
	doc, err := newLoader().Load(ctx, path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = doc.Close() }()

	acc, err := doc.Accessor(index)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	rows := acc.Rows(limit)

	if asJSON {
		out, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("encode rows: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	}

	if _, err := fmt.Fprintf(w, "accessor %d: %s %s x %d", index, acc.Type, acc.ComponentType, acc.Count); err != nil {
		return err
	}
	if acc.Normalized {
		_, _ = io.WriteString(w, " (normalized)")
	}
	if acc.Sparse {
		_, _ = io.WriteString(w, " (sparse)")
	}
	_, _ = io.WriteString(w, "\n")

	var sb strings.Builder
	for i, row := range rows {
		sb.Reset()
		fmt.Fprintf(&sb, "%6d:", i)
		for _, v := range row {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(v, 'g', 7, 64))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	if len(rows) < acc.Count {
		_, err = fmt.Fprintf(w, "... %d more\n", acc.Count-len(rows))
	}
	return err
}
