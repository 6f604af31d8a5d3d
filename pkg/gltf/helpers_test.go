package gltf

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/samcharles93/gltfkit/pkg/glb"
)

func f32le(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func u16le(vals ...uint16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}

func mustGLB(t *testing.T, json string, bin []byte) []byte {
	t.Helper()
	data, err := glb.Encode([]byte(json), bin)
	if err != nil {
		t.Fatalf("encode container: %v", err)
	}
	return data
}

func ptr[T any](v T) *T { return &v }

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, kind, err)
	}
}
