package gltf

import (
	"encoding/binary"
	"fmt"
	"math"
)

type encoding struct {
	component ComponentType
	element   ElementType
}

type decodeFunc func(raw []byte) any

var decodeTable = buildDecodeTable()

func buildDecodeTable() map[encoding]decodeFunc {
	components := map[ComponentType]decodeFunc{
		Byte: func(raw []byte) any {
			out := make([]int8, len(raw))
			for i, b := range raw {
				out[i] = int8(b)
			}
			return out
		},
		UnsignedByte: func(raw []byte) any { return raw },
		Short: func(raw []byte) any {
			return decodeLE(raw, 2, func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) })
		},
		UnsignedShort: func(raw []byte) any {
			return decodeLE(raw, 2, binary.LittleEndian.Uint16)
		},
		UnsignedInt: func(raw []byte) any {
			return decodeLE(raw, 4, binary.LittleEndian.Uint32)
		},
		Float: func(raw []byte) any {
			return decodeLE(raw, 4, func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) })
		},
	}
	elements := []ElementType{Scalar, Vec2, Vec3, Vec4, Mat2, Mat3, Mat4}

	t := make(map[encoding]decodeFunc, len(components)*len(elements))
	for c, fn := range components {
		for _, e := range elements {
			if needsColumnPadding(c, e) {
				continue
			}
			t[encoding{c, e}] = fn
		}
	}
	return t
}

// Matrix columns start on 4-byte boundaries, so narrow MAT2 and MAT3
// components are stored with padding that a packed decode would misread.
func needsColumnPadding(c ComponentType, e ElementType) bool {
	switch e {
	case Mat2:
		return c.Size() == 1
	case Mat3:
		return c.Size() < 4
	default:
		return false
	}
}

func decodeLE[T any](raw []byte, size int, read func([]byte) T) []T {
	out := make([]T, len(raw)/size)
	for i := range out {
		out[i] = read(raw[i*size : (i+1)*size])
	}
	return out
}

func lookupEncoding(c ComponentType, e ElementType) (decodeFunc, error) {
	fn, ok := decodeTable[encoding{c, e}]
	if !ok {
		return nil, &Error{
			Kind: KindUnsupportedAccessorEncoding,
			Msg:  fmt.Sprintf("%s %s is not supported", c, e),
		}
	}
	return fn, nil
}

func newAccessor(desc AccessorDesc, data []byte, fn decodeFunc) *Accessor {
	return &Accessor{
		Name:          desc.Name,
		ComponentType: desc.ComponentType,
		Type:          desc.Type,
		Count:         desc.Count,
		Normalized:    desc.Normalized,
		Sparse:        desc.Sparse != nil,
		data:          data,
		values:        fn(data),
	}
}

// Decode materializes a dense accessor from its buffer view and the blob
// that view points into. Strided views are de-interleaved into a packed
// copy; the blob is never modified.
func Decode(desc AccessorDesc, view BufferView, blob Blob) (*Accessor, error) {
	if desc.Sparse != nil {
		return nil, &Error{
			Kind: KindUnsupportedAccessorEncoding,
			Msg:  "sparse accessor requires document context",
		}
	}
	fn, err := lookupEncoding(desc.ComponentType, desc.Type)
	if err != nil {
		return nil, err
	}
	data, err := compact(view, blob, desc.ByteOffset, desc.Count, ElementSize(desc.ComponentType, desc.Type))
	if err != nil {
		return nil, err
	}
	return newAccessor(desc, data, fn), nil
}

// compact copies count elements of elemSize bytes starting at offset within
// view into a fresh packed slice.
func compact(view BufferView, blob Blob, offset, count, elemSize int) ([]byte, error) {
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteLength > len(blob)-view.ByteOffset {
		return nil, &Error{
			Kind: KindOutOfBounds,
			Msg:  fmt.Sprintf("buffer view [%d, +%d) exceeds %d-byte buffer", view.ByteOffset, view.ByteLength, len(blob)),
		}
	}
	if count < 0 || offset < 0 {
		return nil, &Error{Kind: KindOutOfBounds, Msg: fmt.Sprintf("negative count %d or offset %d", count, offset)}
	}
	if count == 0 {
		return []byte{}, nil
	}

	avail := view.ByteLength - offset
	stride, strided := view.Stride()
	if strided && stride < elemSize {
		return nil, &Error{
			Kind: KindOutOfBounds,
			Msg:  fmt.Sprintf("stride %d is smaller than element size %d", stride, elemSize),
		}
	}
	if !strided || stride == elemSize {
		if avail < 0 || count > avail/elemSize {
			return nil, errorSpan(offset, count, elemSize, view.ByteLength)
		}
		start := view.ByteOffset + offset
		out := make([]byte, count*elemSize)
		copy(out, blob[start:start+len(out)])
		return out, nil
	}

	if avail < elemSize || count-1 > (avail-elemSize)/stride {
		return nil, errorSpan(offset, count, elemSize, view.ByteLength)
	}
	out := make([]byte, count*elemSize)
	src := view.ByteOffset + offset
	for i := range count {
		copy(out[i*elemSize:(i+1)*elemSize], blob[src:src+elemSize])
		src += stride
	}
	return out, nil
}

func errorSpan(offset, count, elemSize, viewLen int) *Error {
	return &Error{
		Kind: KindOutOfBounds,
		Msg:  fmt.Sprintf("%d elements of %d bytes at offset %d exceed %d-byte buffer view", count, elemSize, offset, viewLen),
	}
}
