package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodePadsChunks(t *testing.T) {
	t.Parallel()

	json := []byte(`{"a":1}`)
	bin := []byte{1, 2, 3, 4, 5}
	data, err := Encode(json, bin)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 44 {
		t.Fatalf("len = %d, want 44", len(data))
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 44 {
		t.Fatalf("declared length = %d, want 44", got)
	}

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(f.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(f.Chunks))
	}
	if want := []byte(`{"a":1} `); !bytes.Equal(f.JSON, want) {
		t.Fatalf("json = %q, want %q", f.JSON, want)
	}
	if want := []byte{1, 2, 3, 4, 5, 0, 0, 0}; !bytes.Equal(f.BIN, want) {
		t.Fatalf("bin = %v, want %v", f.BIN, want)
	}
	if f.Chunks[0].Length != 8 || f.Chunks[1].Length != 8 {
		t.Fatalf("chunk lengths = %d/%d, want 8/8", f.Chunks[0].Length, f.Chunks[1].Length)
	}
}

func TestEncodeWithoutBIN(t *testing.T) {
	t.Parallel()

	data, err := Encode([]byte(`{}`), nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.BIN != nil {
		t.Fatalf("expected no BIN chunk, got %d bytes", len(f.BIN))
	}
	if len(data) != HeaderSize+ChunkHeaderSize+4 {
		t.Fatalf("len = %d", len(data))
	}
}

func TestParseIgnoresUnknownTrailingChunk(t *testing.T) {
	t.Parallel()

	data, err := Encode([]byte(`{}`), []byte{9, 9, 9, 9})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	extra := make([]byte, ChunkHeaderSize+4)
	binary.LittleEndian.PutUint32(extra[0:4], 4)
	binary.LittleEndian.PutUint32(extra[4:8], 0x54584554) // "TEXT"
	data = append(data, extra...)
	binary.LittleEndian.PutUint32(data[8:12], uint32(len(data)))

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(f.Chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(f.Chunks))
	}
	if !bytes.Equal(f.BIN, []byte{9, 9, 9, 9}) {
		t.Fatalf("bin = %v", f.BIN)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	valid, err := Encode([]byte(`{"a":1}`), []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return fn(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", valid[:8], ErrCorruptFile},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'x'; return b }), ErrInvalidMagic},
		{"version", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[4:8], 1)
			return b
		}), ErrUnsupportedVersion},
		{"truncated", valid[:len(valid)-4], ErrCorruptFile},
		{"chunk overrun", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[12:16], 64)
			return b
		}), ErrCorruptFile},
		{"unaligned chunk", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[12:16], 7)
			return b
		}), ErrCorruptFile},
		{"first not json", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[16:20], uint32(ChunkBIN))
			return b
		}), ErrCorruptFile},
		{"second not bin", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[32:36], uint32(ChunkJSON))
			return b
		}), ErrCorruptFile},
		{"no chunks", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:12], HeaderSize)
			return b
		}), ErrCorruptFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(tt.data); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMapThenParse(t *testing.T) {
	t.Parallel()

	data, err := Encode([]byte(`{"asset":{"version":"2.0"}}`), []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.glb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := Map(path)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	f, err := Parse(r.Data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(f.BIN, []byte{1, 2, 3, 4, 5, 6, 0, 0}) {
		t.Fatalf("bin = %v", f.BIN)
	}
	if len(f.Chunks) != 2 || f.Chunks[1].Offset != HeaderSize+ChunkHeaderSize+len(f.JSON) {
		t.Fatalf("chunk table = %+v", f.Chunks)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if r.Data != nil || r.Mapped() {
		t.Fatalf("close should drop the mapping")
	}
}

func TestMapMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Map(filepath.Join(t.TempDir(), "missing.glb")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("map missing file: %v", err)
	}
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	if !IsBinary([]byte("glTF\x02\x00\x00\x00")) {
		t.Fatalf("expected magic to be detected")
	}
	if IsBinary([]byte(`{"asset"`)) || IsBinary([]byte("gl")) {
		t.Fatalf("unexpected magic match")
	}
}
