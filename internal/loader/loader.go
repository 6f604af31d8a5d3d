// Package loader imports glTF assets for the CLI and the API, logging what
// was read and how long it took.
package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samcharles93/gltfkit/internal/logger"
	"github.com/samcharles93/gltfkit/pkg/gltf"
)

type Loader struct {
	Workers      int
	DecodeImages bool
}

func (l Loader) options() gltf.ImportOptions {
	return gltf.ImportOptions{Workers: l.Workers, DecodeImages: l.DecodeImages}
}

// Load imports the asset at path. The document must be closed by the caller.
func (l Loader) Load(ctx context.Context, path string) (*gltf.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("asset path is required")
	}
	log := logger.FromContext(ctx).With("path", path)
	log.Debug("importing asset", "workers", l.Workers, "decode_images", l.DecodeImages)

	start := time.Now()
	doc, err := gltf.ImportFromPath(ctx, path, l.options())
	if err != nil {
		log.Warn("import failed", "kind", gltf.KindOf(err).String(), "error", err)
		return nil, err
	}
	logImported(log, doc, time.Since(start))
	return doc, nil
}

// LoadBytes imports an in-memory asset. Only embedded and data URI
// buffers can be resolved.
func (l Loader) LoadBytes(ctx context.Context, data []byte) (*gltf.Document, error) {
	log := logger.FromContext(ctx).With("bytes", len(data))
	start := time.Now()
	doc, err := gltf.ImportFromBytes(ctx, data, l.options())
	if err != nil {
		log.Warn("import failed", "kind", gltf.KindOf(err).String(), "error", err)
		return nil, err
	}
	logImported(log, doc, time.Since(start))
	return doc, nil
}

func logImported(log logger.Logger, doc *gltf.Document, elapsed time.Duration) {
	log.Info("imported asset",
		"binary", doc.Binary,
		"buffers", len(doc.Buffers),
		"accessors", len(doc.Accessors),
		"images", len(doc.Images),
		"elapsed", elapsed,
	)
}
