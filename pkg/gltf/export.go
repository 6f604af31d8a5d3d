package gltf

import (
	"io"

	"github.com/samcharles93/gltfkit/pkg/glb"
)

// ExportBinary writes root and its buffers as a binary container. All
// buffers are concatenated into the single BIN chunk and buffer view
// offsets are rebased onto it. Every other JSON property is preserved.
func ExportBinary(root *Root, blobs []Blob) ([]byte, error) {
	out, bin, err := mergeBuffers(root, blobs)
	if err != nil {
		return nil, err
	}
	js, err := out.Encode()
	if err != nil {
		return nil, &Error{Kind: KindMalformedJSON, Msg: "encode document", Err: err}
	}
	data, err := glb.Encode(js, bin)
	if err != nil {
		return nil, &Error{Kind: KindMalformedContainer, Err: err}
	}
	return data, nil
}

// ExportBinary exports the document as a binary container.
func (d *Document) ExportBinary() ([]byte, error) {
	return ExportBinary(d.Root, d.Buffers)
}

// WriteBinary streams the exported container to w.
func (d *Document) WriteBinary(w io.Writer) (int64, error) {
	out, bin, err := mergeBuffers(d.Root, d.Buffers)
	if err != nil {
		return 0, err
	}
	js, err := out.Encode()
	if err != nil {
		return 0, &Error{Kind: KindMalformedJSON, Msg: "encode document", Err: err}
	}
	n, err := glb.Write(w, js, bin)
	if err != nil {
		return n, &Error{Kind: KindIO, Msg: "write container", Err: err}
	}
	return n, nil
}

func mergeBuffers(root *Root, blobs []Blob) (*Root, []byte, error) {
	if len(blobs) != len(root.Buffers) {
		return nil, nil, errorf(KindInvalidReference, "", 0, "%d blobs for %d buffers", len(blobs), len(root.Buffers))
	}
	out := root.Clone()
	if len(blobs) == 0 {
		return out, nil, nil
	}

	offsets := make([]int, len(blobs))
	total := 0
	for i, b := range blobs {
		if len(b) < root.Buffers[i].ByteLength {
			return nil, nil, &Error{
				Kind:     KindBufferLengthMismatch,
				Subject:  "buffer",
				Index:    i,
				Expected: root.Buffers[i].ByteLength,
				Actual:   len(b),
			}
		}
		offsets[i] = total
		total += alignLength(len(b))
	}
	bin := make([]byte, total)
	for i, b := range blobs {
		copy(bin[offsets[i]:], b)
	}

	for i := range out.BufferViews {
		v := &out.BufferViews[i]
		if v.Buffer < 0 || v.Buffer >= len(blobs) {
			return nil, nil, errorf(KindInvalidReference, "bufferView", i, "buffer %d does not exist", v.Buffer)
		}
		v.ByteOffset += offsets[v.Buffer]
		v.Buffer = 0
	}
	out.Buffers = []Buffer{{ByteLength: total}}
	return out, bin, nil
}

// Repack re-encodes every decoded accessor and every buffer view backed
// image into one tightly packed buffer. Interleaved and sparse accessors
// become dense; buffer views not used by an accessor or image are dropped.
func (d *Document) Repack() (*Root, []Blob, error) {
	if len(d.Accessors) != len(d.Root.Accessors) {
		return nil, nil, errorf(KindInvalidReference, "", 0, "%d decoded accessors for %d descriptors",
			len(d.Accessors), len(d.Root.Accessors))
	}
	out := d.Root.Clone()
	var p Packer
	for i, a := range d.Accessors {
		orig := out.Accessors[i]
		desc := p.AddAccessor(a)
		desc.Min, desc.Max = orig.Min, orig.Max
		desc.Extensions, desc.Extras = orig.Extensions, orig.Extras
		if orig.BufferView != nil {
			p.views[*desc.BufferView].Target = d.Root.BufferViews[*orig.BufferView].Target
		}
		out.Accessors[i] = desc
	}

	dec := &Decoder{Views: d.Root.BufferViews, Blobs: d.Buffers}
	for i := range out.Images {
		img := &out.Images[i]
		if img.BufferView == nil {
			continue
		}
		v, blob, err := dec.view(*img.BufferView)
		if err != nil {
			return nil, nil, withSubject(err, "image", i)
		}
		idx := p.AddBytes(blob[v.ByteOffset : v.ByteOffset+v.ByteLength])
		img.BufferView = &idx
	}

	out.BufferViews = p.Views()
	if len(out.BufferViews) == 0 {
		out.Buffers = nil
		return out, nil, nil
	}
	out.Buffers = []Buffer{{ByteLength: p.Len()}}
	return out, []Blob{p.Blob()}, nil
}
