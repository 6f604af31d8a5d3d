// Package report summarizes an imported document for the inspect command
// and the API.
package report

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/samcharles93/gltfkit/pkg/gltf"
)

type Report struct {
	Binary      bool           `json:"binary"`
	Container   *Container     `json:"container,omitempty"`
	Asset       gltf.Asset     `json:"asset"`
	Buffers     []Buffer       `json:"buffers"`
	BufferViews []BufferView   `json:"buffer_views"`
	Accessors   []Accessor     `json:"accessors"`
	Images      []Image        `json:"images,omitempty"`
	Totals      map[string]int `json:"totals"`
}

type Container struct {
	Version uint32  `json:"version"`
	Length  uint32  `json:"length"`
	Chunks  []Chunk `json:"chunks"`
}

type Chunk struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length uint32 `json:"length"`
}

type Buffer struct {
	Index      int    `json:"index"`
	Name       string `json:"name,omitempty"`
	Source     string `json:"source"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byte_length"`
	BlobLength int    `json:"blob_length"`
	Digest     string `json:"blake3,omitempty"`
}

type BufferView struct {
	Index      int    `json:"index"`
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byte_offset"`
	ByteLength int    `json:"byte_length"`
	ByteStride int    `json:"byte_stride,omitempty"`
	Name       string `json:"name,omitempty"`
}

type Accessor struct {
	Index         int      `json:"index"`
	Name          string   `json:"name,omitempty"`
	Type          string   `json:"type"`
	ComponentType string   `json:"component_type"`
	Count         int      `json:"count"`
	Normalized    bool     `json:"normalized,omitempty"`
	Sparse        bool     `json:"sparse,omitempty"`
	ByteLength    int      `json:"byte_length"`
	BufferView    *int     `json:"buffer_view,omitempty"`
	Usage         []string `json:"usage,omitempty"`
}

type Image struct {
	Index      int    `json:"index"`
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	BufferView *int   `json:"buffer_view,omitempty"`
	URI        string `json:"uri,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Format     string `json:"format,omitempty"`
}

// Build summarizes doc. Buffer digests cover the declared byte length,
// not the alignment padding.
func Build(doc *gltf.Document) *Report {
	root := doc.Root
	r := &Report{
		Binary: doc.Binary,
		Asset:  root.Asset,
		Totals: map[string]int{},
	}
	if doc.Binary {
		r.Container = &Container{Version: doc.Header.Version, Length: doc.Header.Length}
		for i, c := range doc.Chunks {
			r.Container.Chunks = append(r.Container.Chunks, Chunk{
				Index:  i,
				Type:   c.Type.String(),
				Offset: c.Offset,
				Length: c.Length,
			})
		}
	}

	for i, b := range root.Buffers {
		info := Buffer{
			Index:      i,
			Name:       b.Name,
			Source:     sourceName(b),
			URI:        displayURI(b.URI),
			ByteLength: b.ByteLength,
		}
		if i < len(doc.Buffers) && doc.Buffers[i] != nil {
			blob := doc.Buffers[i]
			info.BlobLength = len(blob)
			info.Digest = Digest(blob[:b.ByteLength])
		}
		r.Buffers = append(r.Buffers, info)
		r.Totals["buffer_bytes"] += b.ByteLength
	}

	for i, v := range root.BufferViews {
		r.BufferViews = append(r.BufferViews, BufferView{
			Index:      i,
			Buffer:     v.Buffer,
			ByteOffset: v.ByteOffset,
			ByteLength: v.ByteLength,
			ByteStride: v.ByteStride,
			Name:       v.Name,
		})
	}

	usage := doc.AccessorUsage()
	for i, desc := range root.Accessors {
		info := Accessor{
			Index:         i,
			Name:          desc.Name,
			Type:          string(desc.Type),
			ComponentType: desc.ComponentType.String(),
			Count:         desc.Count,
			Normalized:    desc.Normalized,
			Sparse:        desc.Sparse != nil,
			ByteLength:    desc.Count * gltf.ElementSize(desc.ComponentType, desc.Type),
			BufferView:    desc.BufferView,
			Usage:         usage[i],
		}
		if i < len(doc.Accessors) && doc.Accessors[i] != nil {
			info.ByteLength = doc.Accessors[i].ByteLength()
		}
		r.Accessors = append(r.Accessors, info)
		r.Totals["accessor_bytes"] += info.ByteLength
		if desc.Sparse != nil {
			r.Totals["sparse_accessors"]++
		}
	}

	for i, img := range root.Images {
		info := Image{
			Index:      i,
			Name:       img.Name,
			MimeType:   img.MimeType,
			BufferView: img.BufferView,
			URI:        displayURI(img.URI),
		}
		if i < len(doc.Images) && doc.Images[i] != nil {
			d := doc.Images[i]
			info.Width, info.Height, info.Format = d.Width, d.Height, d.Format.String()
			if info.MimeType == "" {
				info.MimeType = d.MimeType
			}
		}
		r.Images = append(r.Images, info)
	}

	r.Totals["buffers"] = len(r.Buffers)
	r.Totals["buffer_views"] = len(r.BufferViews)
	r.Totals["accessors"] = len(r.Accessors)
	r.Totals["images"] = len(r.Images)
	return r
}

// Digest returns the hex BLAKE3-256 of data.
func Digest(data []byte) string {
	h := blake3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func sourceName(b gltf.Buffer) string {
	if b.Source() == gltf.SourceEmbedded {
		return "embedded"
	}
	return gltf.ParseLocator(b.URI).Kind.String()
}

// data URIs are replaced by their media type.
func displayURI(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return uri
	}
	l := gltf.ParseLocator(uri)
	if l.MediaType != "" {
		return "data:" + l.MediaType
	}
	return "data:"
}
