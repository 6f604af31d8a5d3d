package loader

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/gltfkit/internal/logger"
	"github.com/samcharles93/gltfkit/pkg/gltf"
)

const minimalJSON = `{
	"asset": {"version": "2.0"},
	"buffers": [{"byteLength": 4, "uri": "data:;base64,AAAgQQ=="}],
	"bufferViews": [{"buffer": 0, "byteLength": 4}],
	"accessors": [{"bufferView": 0, "componentType": 5126, "count": 1, "type": "SCALAR"}]
}`

func TestLoadLogsSummary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asset.gltf")
	if err := os.WriteFile(path, []byte(minimalJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.JSON(&buf, slog.LevelDebug))
	doc, err := Loader{Workers: 2}.Load(ctx, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer func() { _ = doc.Close() }()

	out := buf.String()
	for _, want := range []string{`"msg":"importing asset"`, `"msg":"imported asset"`, `"accessors":1`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s: %s", want, out)
		}
	}
}

func TestLoadBytesLogsFailureKind(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.JSON(&buf, slog.LevelInfo))
	_, err := Loader{}.LoadBytes(ctx, []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4}]}`))
	if gltf.KindOf(err) != gltf.KindMissingPayload {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(buf.String(), `"kind":"missing_payload"`) {
		t.Fatalf("log output missing kind: %s", buf.String())
	}
}

func TestLoadRequiresPath(t *testing.T) {
	t.Parallel()

	ctx := logger.WithContext(context.Background(), logger.Discard())
	if _, err := (Loader{}).Load(ctx, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
