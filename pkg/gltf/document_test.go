package gltf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/samcharles93/gltfkit/pkg/glb"
)

const triangleJSON = `{
	"asset": {"version": "2.0", "generator": "test"},
	"scene": 0,
	"scenes": [{"nodes": [0]}],
	"nodes": [{"mesh": 0}],
	"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
	"buffers": [{"byteLength": 42}],
	"bufferViews": [
		{"buffer": 0, "byteOffset": 0, "byteLength": 36, "target": 34962},
		{"buffer": 0, "byteOffset": 36, "byteLength": 6, "target": 34963}
	],
	"accessors": [
		{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0,0,0], "max": [1,1,0]},
		{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
	]
}`

func triangleBIN() []byte {
	bin := f32le(0, 0, 0, 1, 0, 0, 0, 1, 0)
	return append(bin, u16le(0, 1, 2)...)
}

func TestImportFromBytesBinary(t *testing.T) {
	t.Parallel()

	data := mustGLB(t, triangleJSON, triangleBIN())
	doc, err := ImportFromBytes(context.Background(), data, ImportOptions{Workers: 2})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !doc.Binary || doc.Header.Version != glb.Version {
		t.Fatalf("expected binary document, header %+v", doc.Header)
	}
	if doc.Base != "" {
		t.Fatalf("byte import should have no base, got %q", doc.Base)
	}
	if len(doc.Accessors) != 2 {
		t.Fatalf("accessors = %d", len(doc.Accessors))
	}

	pos, err := ElementsOf[float32](doc.Accessors[0])
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if !slices.Equal(pos.At(1), []float32{1, 0, 0}) {
		t.Fatalf("position 1 = %v", pos.At(1))
	}
	idx := doc.Accessors[1].Values().([]uint16)
	if !slices.Equal(idx, []uint16{0, 1, 2}) {
		t.Fatalf("indices = %v", idx)
	}

	usage := doc.AccessorUsage()
	if !slices.Equal(usage[0], []string{"mesh 0 primitive 0 POSITION"}) || !slices.Equal(usage[1], []string{"mesh 0 primitive 0 indices"}) {
		t.Fatalf("usage = %v", usage)
	}

	// The caller's bytes are not retained.
	for i := range data {
		data[i] = 0
	}
	if !slices.Equal(doc.Accessors[1].Values().([]uint16), []uint16{0, 1, 2}) {
		t.Fatalf("accessor aliases caller memory")
	}
}

func TestImportFromBytesRejectsExternalReference(t *testing.T) {
	t.Parallel()

	js := `{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"mesh.bin"}]}`
	_, err := ImportFromBytes(context.Background(), []byte(js), ImportOptions{})
	wantKind(t, err, KindExternalReferenceWithoutBase)
}

func TestImportJSONWithDataURI(t *testing.T) {
	t.Parallel()

	js := `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": 3, "uri": "data:application/octet-stream;base64,AAEC"}],
		"bufferViews": [{"buffer": 0, "byteLength": 3}],
		"accessors": [{"bufferView": 0, "componentType": 5121, "count": 3, "type": "SCALAR"}]
	}`
	doc, err := ImportFromBytes(context.Background(), []byte(js), ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if doc.Binary {
		t.Fatalf("plain JSON reported as binary")
	}
	if !bytes.Equal(doc.Buffers[0], []byte{0, 1, 2, 0}) {
		t.Fatalf("blob = %v", doc.Buffers[0])
	}
	if !bytes.Equal(doc.Accessors[0].Values().([]uint8), []byte{0, 1, 2}) {
		t.Fatalf("values = %v", doc.Accessors[0].Values())
	}
}

func TestImportJSONMissingPayload(t *testing.T) {
	t.Parallel()

	js := `{"asset":{"version":"2.0"},"buffers":[{"byteLength":4}]}`
	_, err := ImportFromBytes(context.Background(), []byte(js), ImportOptions{})
	wantKind(t, err, KindMissingPayload)
}

func TestImportFromPathExternalBuffer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	js := `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": 12, "uri": "tri%20angle.bin"}],
		"bufferViews": [{"buffer": 0, "byteLength": 12}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 1, "type": "VEC3"}]
	}`
	if err := os.WriteFile(filepath.Join(dir, "tri angle.bin"), f32le(1, 2, 3), 0o644); err != nil {
		t.Fatalf("write bin: %v", err)
	}
	path := filepath.Join(dir, "scene.gltf")
	if err := os.WriteFile(path, []byte(js), 0o644); err != nil {
		t.Fatalf("write gltf: %v", err)
	}

	doc, err := ImportFromPath(context.Background(), path, ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer func() { _ = doc.Close() }()

	if doc.Base != dir {
		t.Fatalf("base = %q, want %q", doc.Base, dir)
	}
	if got := doc.Accessors[0].Values().([]float32); !slices.Equal(got, []float32{1, 2, 3}) {
		t.Fatalf("values = %v", got)
	}
}

func TestImportFromPathBinaryKeepsAccessorsAfterClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "triangle.glb")
	if err := os.WriteFile(path, mustGLB(t, triangleJSON, triangleBIN()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ImportFromPath(context.Background(), path, ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := doc.Accessors[1].Values().([]uint16); !slices.Equal(got, []uint16{0, 1, 2}) {
		t.Fatalf("indices after close = %v", got)
	}
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	valid := mustGLB(t, triangleJSON, triangleBIN())
	corrupt := append([]byte(nil), valid...)
	corrupt[12] = 3 // JSON chunk length no longer aligned

	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"malformed json", []byte(`{"asset": `), KindMalformedJSON},
		{"not an object", []byte(`[1, 2]`), KindMalformedJSON},
		{"corrupt container", corrupt, KindMalformedContainer},
		{"short bin", mustGLB(t, triangleJSON, triangleBIN()[:20]), KindBufferLengthMismatch},
		{"dangling view", []byte(`{"asset":{"version":"2.0"},"accessors":[{"bufferView":2,"componentType":5126,"count":1,"type":"SCALAR"}]}`), KindInvalidReference},
		{"dangling attribute", []byte(`{"asset":{"version":"2.0"},"meshes":[{"primitives":[{"attributes":{"POSITION":4}}]}]}`), KindInvalidReference},
		{"view past buffer", []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"data:;base64,AAAAAA=="}],"bufferViews":[{"buffer":0,"byteLength":8}]}`), KindOutOfBounds},
		{"negative buffer length", []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":-1,"uri":"data:application/octet-stream;base64,AAEC"}]}`), KindOutOfBounds},
		{"bad encoding", []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"data:;base64,AAAAAA=="}],"bufferViews":[{"buffer":0,"byteLength":4}],"accessors":[{"bufferView":0,"componentType":5121,"count":1,"type":"MAT2"}]}`), KindUnsupportedAccessorEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ImportFromBytes(context.Background(), tt.data, ImportOptions{})
			wantKind(t, err, tt.want)
		})
	}

	_, err := ImportFromBytes(context.Background(), corrupt, ImportOptions{})
	if !errors.Is(err, glb.ErrCorruptFile) {
		t.Fatalf("container error should wrap glb.ErrCorruptFile: %v", err)
	}
}

func TestImportAccessorsKeepDocumentOrder(t *testing.T) {
	t.Parallel()

	const n = 64
	var bin []byte
	views := ""
	accessors := ""
	for i := range n {
		bin = append(bin, f32le(float32(i))...)
		if i > 0 {
			views += ","
			accessors += ","
		}
		views += fmt.Sprintf(`{"buffer":0,"byteOffset":%d,"byteLength":4}`, i*4)
		accessors += fmt.Sprintf(`{"bufferView":%d,"componentType":5126,"count":1,"type":"SCALAR"}`, i)
	}
	js := fmt.Sprintf(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":%d}],"bufferViews":[%s],"accessors":[%s]}`,
		len(bin), views, accessors)

	doc, err := ImportFromBytes(context.Background(), mustGLB(t, js, bin), ImportOptions{Workers: 8})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i, a := range doc.Accessors {
		if got := a.Values().([]float32)[0]; got != float32(i) {
			t.Fatalf("accessor %d = %v", i, got)
		}
	}
}

func TestExportBinaryMergesBuffers(t *testing.T) {
	t.Parallel()

	js := `{
		"asset": {"version": "2.0"},
		"extensionsUsed": ["KHR_materials_unlit"],
		"buffers": [
			{"byteLength": 3, "uri": "data:;base64,AQID"},
			{"byteLength": 4, "uri": "data:;base64,AAAgQQ=="}
		],
		"bufferViews": [
			{"buffer": 0, "byteLength": 3},
			{"buffer": 1, "byteLength": 4}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5121, "count": 3, "type": "SCALAR"},
			{"bufferView": 1, "componentType": 5126, "count": 1, "type": "SCALAR"}
		]
	}`
	doc, err := ImportFromBytes(context.Background(), []byte(js), ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	data, err := doc.ExportBinary()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := glb.Parse(data)
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if !bytes.Contains(f.JSON, []byte("KHR_materials_unlit")) {
		t.Fatalf("unknown properties were dropped: %s", f.JSON)
	}

	again, err := ImportFromBytes(context.Background(), data, ImportOptions{})
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if len(again.Root.Buffers) != 1 || again.Root.Buffers[0].URI != "" {
		t.Fatalf("buffers = %+v", again.Root.Buffers)
	}
	if again.Root.BufferViews[1].ByteOffset != 4 {
		t.Fatalf("view 1 offset = %d, want 4", again.Root.BufferViews[1].ByteOffset)
	}
	if !bytes.Equal(again.Accessors[0].Bytes(), []byte{1, 2, 3}) {
		t.Fatalf("accessor 0 = %v", again.Accessors[0].Bytes())
	}
	if got := again.Accessors[1].Values().([]float32)[0]; got != 10 {
		t.Fatalf("accessor 1 = %v", got)
	}

	var buf bytes.Buffer
	n, err := doc.WriteBinary(&buf)
	if err != nil {
		t.Fatalf("write binary: %v", err)
	}
	if n != int64(len(data)) || !bytes.Equal(buf.Bytes(), data) {
		t.Fatalf("streamed export differs from ExportBinary")
	}
}

func TestRepackDeinterleaves(t *testing.T) {
	t.Parallel()

	// Two VEC2 u16 attributes interleaved with a stride of 8.
	bin := u16le(1, 2, 10, 20, 3, 4, 30, 40)
	js := `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": 16}],
		"bufferViews": [{"buffer": 0, "byteLength": 16, "byteStride": 8, "target": 34962}],
		"accessors": [
			{"bufferView": 0, "componentType": 5123, "count": 2, "type": "VEC2"},
			{"bufferView": 0, "byteOffset": 4, "componentType": 5123, "count": 2, "type": "VEC2", "normalized": true}
		]
	}`
	doc, err := ImportFromBytes(context.Background(), mustGLB(t, js, bin), ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	root, blobs, err := doc.Repack()
	if err != nil {
		t.Fatalf("repack: %v", err)
	}
	if len(root.BufferViews) != 2 {
		t.Fatalf("views = %d, want 2", len(root.BufferViews))
	}
	for i, v := range root.BufferViews {
		if v.ByteStride != 0 || v.Target != 34962 {
			t.Fatalf("view %d = %+v", i, v)
		}
	}
	if !root.Accessors[1].Normalized {
		t.Fatalf("normalized flag lost")
	}

	out, err := ExportBinary(root, blobs)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	again, err := ImportFromBytes(context.Background(), out, ImportOptions{})
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	for i := range doc.Accessors {
		if !bytes.Equal(again.Accessors[i].Bytes(), doc.Accessors[i].Bytes()) {
			t.Fatalf("accessor %d = %v, want %v", i, again.Accessors[i].Bytes(), doc.Accessors[i].Bytes())
		}
	}
	if got := again.Accessors[1].Values().([]uint16); !slices.Equal(got, []uint16{10, 20, 30, 40}) {
		t.Fatalf("second attribute = %v", got)
	}
}

func TestImportDecodesImages(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 128})
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	bin := pngBuf.Bytes()
	js := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": %d}],
		"images": [{"bufferView": 0, "mimeType": "image/png"}]
	}`, len(bin), len(bin))

	doc, err := ImportFromBytes(context.Background(), mustGLB(t, js, bin), ImportOptions{DecodeImages: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(doc.Images) != 1 {
		t.Fatalf("images = %d", len(doc.Images))
	}
	got := doc.Images[0]
	if got.Width != 2 || got.Height != 1 || got.Format != FormatR8G8B8A8 {
		t.Fatalf("image = %dx%d %s", got.Width, got.Height, got.Format)
	}
	if want := []byte{255, 0, 0, 255, 0, 0, 255, 128}; !bytes.Equal(got.Pixels, want) {
		t.Fatalf("pixels = %v, want %v", got.Pixels, want)
	}

	skipped, err := ImportFromBytes(context.Background(), mustGLB(t, js, bin), ImportOptions{})
	if err != nil {
		t.Fatalf("import without images: %v", err)
	}
	if skipped.Images != nil {
		t.Fatalf("images decoded without being requested")
	}
}

func TestImportImageDecodeFailure(t *testing.T) {
	t.Parallel()

	js := `{
		"asset": {"version": "2.0"},
		"images": [{"uri": "data:image/png;base64,AAEC"}]
	}`
	_, err := ImportFromBytes(context.Background(), []byte(js), ImportOptions{DecodeImages: true})
	wantKind(t, err, KindImageDecode)
}
