// Package gltf imports glTF 2.0 assets and decodes their accessors into
// typed arrays. Both the JSON form and the binary container are accepted;
// buffers may be embedded, inline data URIs or files next to the asset.
package gltf

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samcharles93/gltfkit/pkg/glb"
)

// Document is an imported asset: its JSON description, the bytes of every
// buffer and every accessor decoded in document order.
type Document struct {
	Root *Root

	// Binary is set when the asset was read from a binary container, in
	// which case Header holds the container header.
	Binary bool
	Header glb.Header

	// Chunks is the container's chunk table. Chunk data is not retained.
	Chunks []glb.Chunk

	// Base is the directory external references were resolved against.
	// It is empty for byte imports.
	Base string

	Buffers   []Blob
	Accessors []*Accessor

	// Images is populated only when image decoding was requested.
	Images []*ImageData

	region *glb.Region
}

// Close releases the file mapping backing an embedded buffer. Buffers is
// cleared when it aliased the mapping; decoded accessors stay valid.
func (d *Document) Close() error {
	if d == nil || d.region == nil {
		return nil
	}
	if d.region.Mapped() {
		d.Buffers = nil
	}
	err := d.region.Close()
	d.region = nil
	return err
}

// Accessor returns decoded accessor i.
func (d *Document) Accessor(i int) (*Accessor, error) {
	if i < 0 || i >= len(d.Accessors) {
		return nil, errorf(KindInvalidReference, "", 0, "accessor %d does not exist", i)
	}
	return d.Accessors[i], nil
}

// AccessorUsage lists, per accessor, the places that reference it, such as
// "mesh 0 primitive 1 POSITION".
func (d *Document) AccessorUsage() [][]string {
	return accessorUsage(d.Root)
}

func accessorUsage(r *Root) [][]string {
	usage := make([][]string, len(r.Accessors))
	add := func(i int, format string, args ...any) {
		if i >= 0 && i < len(usage) {
			usage[i] = append(usage[i], fmt.Sprintf(format, args...))
		}
	}
	for m, mesh := range r.Meshes {
		for p, prim := range mesh.Primitives {
			for _, sem := range sortedKeys(prim.Attributes) {
				add(prim.Attributes[sem], "mesh %d primitive %d %s", m, p, sem)
			}
			if prim.Indices != nil {
				add(*prim.Indices, "mesh %d primitive %d indices", m, p)
			}
			for t, target := range prim.Targets {
				for _, sem := range sortedKeys(target) {
					add(target[sem], "mesh %d primitive %d target %d %s", m, p, t, sem)
				}
			}
		}
	}
	for s, skin := range r.Skins {
		if skin.InverseBindMatrices != nil {
			add(*skin.InverseBindMatrices, "skin %d inverseBindMatrices", s)
		}
	}
	for a, anim := range r.Animations {
		for s, sampler := range anim.Samplers {
			add(sampler.Input, "animation %d sampler %d input", a, s)
			add(sampler.Output, "animation %d sampler %d output", a, s)
		}
	}
	return usage
}

// validateReferences checks every index that points at a buffer, buffer
// view or accessor, and every view range against its buffer.
func validateReferences(r *Root) error {
	for i, b := range r.Buffers {
		if b.ByteLength < 0 {
			return errorf(KindOutOfBounds, "buffer", i, "negative byte length %d", b.ByteLength)
		}
	}
	for i, v := range r.BufferViews {
		if v.Buffer < 0 || v.Buffer >= len(r.Buffers) {
			return errorf(KindInvalidReference, "bufferView", i, "buffer %d does not exist", v.Buffer)
		}
		if v.ByteOffset < 0 || v.ByteLength < 0 || v.ByteLength > r.Buffers[v.Buffer].ByteLength-v.ByteOffset {
			return errorf(KindOutOfBounds, "bufferView", i, "range [%d, +%d) exceeds buffer %d of %d bytes",
				v.ByteOffset, v.ByteLength, v.Buffer, r.Buffers[v.Buffer].ByteLength)
		}
	}
	views := len(r.BufferViews)
	for i, a := range r.Accessors {
		if a.BufferView != nil && (*a.BufferView < 0 || *a.BufferView >= views) {
			return errorf(KindInvalidReference, "accessor", i, "buffer view %d does not exist", *a.BufferView)
		}
		if s := a.Sparse; s != nil {
			if s.Indices.BufferView < 0 || s.Indices.BufferView >= views || s.Values.BufferView < 0 || s.Values.BufferView >= views {
				return errorf(KindInvalidReference, "accessor", i, "sparse buffer view does not exist")
			}
		}
	}
	for i, img := range r.Images {
		if img.BufferView != nil && (*img.BufferView < 0 || *img.BufferView >= views) {
			return errorf(KindInvalidReference, "image", i, "buffer view %d does not exist", *img.BufferView)
		}
	}

	n := len(r.Accessors)
	check := func(idx int, format string, args ...any) error {
		if idx < 0 || idx >= n {
			return &Error{Kind: KindInvalidReference, Msg: fmt.Sprintf(format, args...) + fmt.Sprintf(" references missing accessor %d", idx)}
		}
		return nil
	}
	for m, mesh := range r.Meshes {
		for p, prim := range mesh.Primitives {
			for _, sem := range sortedKeys(prim.Attributes) {
				if err := check(prim.Attributes[sem], "mesh %d primitive %d %s", m, p, sem); err != nil {
					return err
				}
			}
			if prim.Indices != nil {
				if err := check(*prim.Indices, "mesh %d primitive %d indices", m, p); err != nil {
					return err
				}
			}
			for t, target := range prim.Targets {
				for _, sem := range sortedKeys(target) {
					if err := check(target[sem], "mesh %d primitive %d target %d %s", m, p, t, sem); err != nil {
						return err
					}
				}
			}
		}
	}
	for s, skin := range r.Skins {
		if skin.InverseBindMatrices != nil {
			if err := check(*skin.InverseBindMatrices, "skin %d", s); err != nil {
				return err
			}
		}
	}
	for a, anim := range r.Animations {
		for s, sampler := range anim.Samplers {
			if err := check(sampler.Input, "animation %d sampler %d input", a, s); err != nil {
				return err
			}
			if err := check(sampler.Output, "animation %d sampler %d output", a, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
