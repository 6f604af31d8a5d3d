package glb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	jsonPad byte = ' '
	binPad  byte = 0
)

// Length returns the total container length for the given chunk payloads.
// A nil bin omits the BIN chunk.
func Length(jsonLen int, bin []byte) uint64 {
	n := uint64(HeaderSize) + ChunkHeaderSize + uint64(PaddedLength(jsonLen))
	if bin != nil {
		n += ChunkHeaderSize + uint64(PaddedLength(len(bin)))
	}
	return n
}

// Write streams a container to w. JSON is padded with spaces and BIN with
// zeros. A nil bin omits the BIN chunk; an empty non-nil bin writes an empty one.
func Write(w io.Writer, json, bin []byte) (int64, error) {
	total := Length(len(json), bin)
	if total > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, total)
	}

	cw := &countingWriter{w: w}
	var hdr [HeaderSize]byte
	encodeHeader(hdr[:], Header{Magic: Magic, Version: Version, Length: uint32(total)})
	if _, err := cw.Write(hdr[:]); err != nil {
		return cw.n, err
	}
	if err := writeChunk(cw, ChunkJSON, json, jsonPad); err != nil {
		return cw.n, err
	}
	if bin != nil {
		if err := writeChunk(cw, ChunkBIN, bin, binPad); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// Encode returns the container bytes for the given chunk payloads.
func Encode(json, bin []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(Length(len(json), bin), math.MaxUint32)))
	if _, err := Write(&buf, json, bin); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeChunk(w io.Writer, typ ChunkType, data []byte, pad byte) error {
	padded := PaddedLength(len(data))
	var hdr [ChunkHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(padded))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(typ))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return writePadding(w, padded-len(data), pad)
}

func writePadding(w io.Writer, n int, pad byte) error {
	if n <= 0 {
		return nil
	}
	var buf [Align]byte
	for i := range buf {
		buf[i] = pad
	}
	_, err := w.Write(buf[:n])
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
