// Package glb reads and writes the binary glTF container: a 12-byte header
// followed by a JSON chunk and an optional BIN chunk.
package glb

import (
	"encoding/binary"
	"fmt"
)

const (
	// Magic is the ASCII "glTF" read as a little-endian uint32.
	Magic uint32 = 0x46546C67

	// Version is the only container version this package reads or writes.
	Version uint32 = 2

	HeaderSize      = 12
	ChunkHeaderSize = 8

	// Align is the chunk length granularity.
	Align = 4
)

// ChunkType identifies the payload of a chunk.
type ChunkType uint32

const (
	ChunkJSON ChunkType = 0x4E4F534A // "JSON"
	ChunkBIN  ChunkType = 0x004E4942 // "BIN\x00"
)

func (t ChunkType) String() string {
	switch t {
	case ChunkJSON:
		return "JSON"
	case ChunkBIN:
		return "BIN"
	default:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(t))
		return fmt.Sprintf("unknown(%q)", b[:])
	}
}

// Header is the fixed container header.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

func (h Header) Valid() bool      { return h.Magic == Magic }
func (h Header) Compatible() bool { return h.Version == Version }

// Chunk is one length-prefixed chunk. Data aliases the container bytes.
type Chunk struct {
	Length uint32
	Type   ChunkType
	Offset int
	Data   []byte
}

func encodeHeader(b []byte, h Header) {
	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint32(b[8:12], h.Length)
}

func decodeHeader(b []byte) (Header, bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	return Header{
		Magic:   binary.LittleEndian.Uint32(b[0:4]),
		Version: binary.LittleEndian.Uint32(b[4:8]),
		Length:  binary.LittleEndian.Uint32(b[8:12]),
	}, true
}

// IsBinary reports whether data starts with the container magic.
func IsBinary(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == Magic
}

// PaddedLength rounds n up to the chunk alignment.
func PaddedLength(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}
