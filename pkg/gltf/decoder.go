package gltf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Decoder decodes accessors against the buffer views and blobs of one
// document. It resolves view indices, zero-fills accessors without a view
// and applies sparse substitution.
type Decoder struct {
	Views []BufferView
	Blobs []Blob
}

// Decode decodes accessor index described by desc.
func (d *Decoder) Decode(index int, desc AccessorDesc) (*Accessor, error) {
	a, err := d.decode(desc)
	if err != nil {
		return nil, withSubject(err, "accessor", index)
	}
	return a, nil
}

func (d *Decoder) decode(desc AccessorDesc) (*Accessor, error) {
	fn, err := lookupEncoding(desc.ComponentType, desc.Type)
	if err != nil {
		return nil, err
	}
	elemSize := ElementSize(desc.ComponentType, desc.Type)

	var data []byte
	if desc.BufferView != nil {
		view, blob, err := d.view(*desc.BufferView)
		if err != nil {
			return nil, err
		}
		if data, err = compact(view, blob, desc.ByteOffset, desc.Count, elemSize); err != nil {
			return nil, err
		}
	} else {
		if desc.Count < 0 || desc.Count > math.MaxInt32/elemSize {
			return nil, &Error{Kind: KindOutOfBounds, Msg: fmt.Sprintf("count %d out of range", desc.Count)}
		}
		data = make([]byte, desc.Count*elemSize)
	}

	if desc.Sparse != nil {
		if err := d.substitute(desc, data, elemSize); err != nil {
			return nil, err
		}
	}
	return newAccessor(desc, data, fn), nil
}

func (d *Decoder) view(i int) (BufferView, Blob, error) {
	if i < 0 || i >= len(d.Views) {
		return BufferView{}, nil, errorf(KindInvalidReference, "", 0, "buffer view %d does not exist", i)
	}
	v := d.Views[i]
	if v.Buffer < 0 || v.Buffer >= len(d.Blobs) {
		return BufferView{}, nil, errorf(KindInvalidReference, "bufferView", i, "buffer %d does not exist", v.Buffer)
	}
	return v, d.Blobs[v.Buffer], nil
}

// substitute overwrites the elements named by the sparse indices with the
// sparse values. Indices must be strictly increasing and below Count.
func (d *Decoder) substitute(desc AccessorDesc, data []byte, elemSize int) error {
	s := desc.Sparse
	if s.Count < 0 || s.Count > desc.Count {
		return &Error{Kind: KindOutOfBounds, Msg: fmt.Sprintf("sparse count %d exceeds accessor count %d", s.Count, desc.Count)}
	}

	var readIndex func([]byte) int
	switch s.Indices.ComponentType {
	case UnsignedByte:
		readIndex = func(b []byte) int { return int(b[0]) }
	case UnsignedShort:
		readIndex = func(b []byte) int { return int(binary.LittleEndian.Uint16(b)) }
	case UnsignedInt:
		readIndex = func(b []byte) int { return int(binary.LittleEndian.Uint32(b)) }
	default:
		return &Error{
			Kind: KindUnsupportedAccessorEncoding,
			Msg:  fmt.Sprintf("sparse indices of type %s", s.Indices.ComponentType),
		}
	}
	indexSize := s.Indices.ComponentType.Size()

	iv, iblob, err := d.view(s.Indices.BufferView)
	if err != nil {
		return err
	}
	iv.ByteStride = 0
	indices, err := compact(iv, iblob, s.Indices.ByteOffset, s.Count, indexSize)
	if err != nil {
		return prefixMsg(err, "sparse indices: ")
	}

	vv, vblob, err := d.view(s.Values.BufferView)
	if err != nil {
		return err
	}
	vv.ByteStride = 0
	values, err := compact(vv, vblob, s.Values.ByteOffset, s.Count, elemSize)
	if err != nil {
		return prefixMsg(err, "sparse values: ")
	}

	prev := -1
	for k := range s.Count {
		idx := readIndex(indices[k*indexSize:])
		if idx <= prev || idx >= desc.Count {
			return &Error{
				Kind: KindOutOfBounds,
				Msg:  fmt.Sprintf("sparse index %d at position %d is out of order or out of range", idx, k),
			}
		}
		copy(data[idx*elemSize:(idx+1)*elemSize], values[k*elemSize:(k+1)*elemSize])
		prev = idx
	}
	return nil
}

// withSubject attributes an error that does not yet name its object.
func withSubject(err error, subject string, index int) error {
	var e *Error
	if errors.As(err, &e) && e.Subject == "" {
		e.Subject, e.Index = subject, index
	}
	return err
}

func prefixMsg(err error, prefix string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Msg = prefix + e.Msg
	}
	return err
}
