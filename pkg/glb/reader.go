package glb

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a read-only view of a file's bytes, mmapped when possible.
type Region struct {
	Data    []byte
	mmapped bool
}

// Map maps path read-only. If mmap is unavailable it falls back to
// ReadAt-based loading. The region must be closed to release the mapping.
func Map(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	size := int(size64)
	if size == 0 {
		return &Region{Data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &Region{Data: data, mmapped: true}, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &Region{Data: data}, nil
}

// Mapped reports whether the region is backed by a file mapping.
func (r *Region) Mapped() bool { return r != nil && r.mmapped }

// Close releases the mapping. Slices taken from Data are invalid afterwards.
func (r *Region) Close() error {
	if r == nil || r.Data == nil {
		return nil
	}
	var err error
	if r.mmapped {
		err = unix.Munmap(r.Data)
	}
	r.Data = nil
	r.mmapped = false
	return err
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// File is a parsed container. JSON, BIN and chunk data alias the bytes the
// file was parsed from.
type File struct {
	Header Header
	Chunks []Chunk
	JSON   []byte
	BIN    []byte // nil when the container has no BIN chunk
}

// Parse validates the header and chunk table of data. Bytes past the
// declared total length are ignored.
func Parse(data []byte) (*File, error) {
	hdr, ok := decodeHeader(data)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptFile, len(data))
	}
	if !hdr.Valid() {
		return nil, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}
	total := uint64(hdr.Length)
	if total < HeaderSize {
		return nil, fmt.Errorf("%w: declared length %d is shorter than the header", ErrCorruptFile, total)
	}
	if total > uint64(len(data)) {
		return nil, fmt.Errorf("%w: declared length %d exceeds %d available bytes", ErrCorruptFile, total, len(data))
	}
	data = data[:total]

	f := &File{Header: hdr}
	off := HeaderSize
	for i := 0; off < len(data); i++ {
		if len(data)-off < ChunkHeaderSize {
			return nil, fmt.Errorf("%w: chunk %d header truncated at offset %d", ErrCorruptFile, i, off)
		}
		length := binary.LittleEndian.Uint32(data[off : off+4])
		typ := ChunkType(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		start := off + ChunkHeaderSize
		if length%Align != 0 {
			return nil, fmt.Errorf("%w: chunk %d length %d not %d-byte aligned", ErrCorruptFile, i, length, Align)
		}
		end := uint64(start) + uint64(length)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: chunk %d at offset %d overruns declared length", ErrCorruptFile, i, off)
		}

		switch {
		case i == 0 && typ != ChunkJSON:
			return nil, fmt.Errorf("%w: first chunk is %s, want JSON", ErrCorruptFile, typ)
		case i == 1 && typ != ChunkBIN:
			return nil, fmt.Errorf("%w: second chunk is %s, want BIN", ErrCorruptFile, typ)
		case i > 1 && (typ == ChunkJSON || typ == ChunkBIN):
			return nil, fmt.Errorf("%w: chunk %d repeats %s", ErrCorruptFile, i, typ)
		}

		c := Chunk{Length: length, Type: typ, Offset: off, Data: data[start:end:end]}
		f.Chunks = append(f.Chunks, c)
		switch i {
		case 0:
			f.JSON = c.Data
		case 1:
			f.BIN = c.Data
		}
		off = int(end)
	}
	if len(f.Chunks) == 0 {
		return nil, fmt.Errorf("%w: missing JSON chunk", ErrCorruptFile)
	}
	return f, nil
}
