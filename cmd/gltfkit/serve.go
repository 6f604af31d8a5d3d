package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gltfkit/internal/api"
	"github.com/samcharles93/gltfkit/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxUpload   int64
		rps         float64
		burst       int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the document REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload",
				Usage:       "maximum upload size in bytes (0 = 256 MiB)",
				Destination: &maxUpload,
			},
			&cli.FloatFlag{
				Name:        "uploads-per-second",
				Usage:       "document creation rate limit (0 = unlimited)",
				Destination: &rps,
			},
			&cli.IntFlag{
				Name:        "upload-burst",
				Usage:       "document creation burst size",
				Value:       4,
				Destination: &burst,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, appConfig, &addr, &maxUpload, &rps, &burst)

			store := api.NewDocumentStore()
			defer store.Close()
			server := api.NewServer(store, api.Config{
				Loader:           newLoader(),
				MaxUploadBytes:   maxUpload,
				UploadsPerSecond: rps,
				UploadBurst:      burst,
				Logger:           log,
			})

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "workers", workers, "decode_images", decodeImages)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
