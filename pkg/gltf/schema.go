package gltf

import (
	"github.com/goccy/go-json"
)

// Root holds the parts of a glTF JSON document that carry or reference
// binary data. Every other top-level property is preserved verbatim and
// written back by Encode.
type Root struct {
	Asset       Asset
	Buffers     []Buffer
	BufferViews []BufferView
	Accessors   []AccessorDesc
	Images      []Image
	Meshes      []Mesh
	Skins       []Skin
	Animations  []Animation

	fields map[string]json.RawMessage
}

type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Buffer describes one binary payload. An empty URI refers to the BIN chunk
// of a binary container.
type Buffer struct {
	ByteLength int             `json:"byteLength"`
	URI        string          `json:"uri,omitempty"`
	Name       string          `json:"name,omitempty"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`
}

type BufferView struct {
	Buffer     int             `json:"buffer"`
	ByteOffset int             `json:"byteOffset,omitempty"`
	ByteLength int             `json:"byteLength"`
	ByteStride int             `json:"byteStride,omitempty"`
	Target     int             `json:"target,omitempty"`
	Name       string          `json:"name,omitempty"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`
}

// Stride returns the declared element stride. A zero stride means the view
// is tightly packed.
func (v BufferView) Stride() (int, bool) {
	return v.ByteStride, v.ByteStride > 0
}

// AccessorDesc is the JSON description of an accessor.
type AccessorDesc struct {
	BufferView    *int            `json:"bufferView,omitempty"`
	ByteOffset    int             `json:"byteOffset,omitempty"`
	ComponentType ComponentType   `json:"componentType"`
	Normalized    bool            `json:"normalized,omitempty"`
	Count         int             `json:"count"`
	Type          ElementType     `json:"type"`
	Max           []float64       `json:"max,omitempty"`
	Min           []float64       `json:"min,omitempty"`
	Sparse        *Sparse         `json:"sparse,omitempty"`
	Name          string          `json:"name,omitempty"`
	Extensions    json.RawMessage `json:"extensions,omitempty"`
	Extras        json.RawMessage `json:"extras,omitempty"`
}

type Sparse struct {
	Count   int           `json:"count"`
	Indices SparseIndices `json:"indices"`
	Values  SparseValues  `json:"values"`
}

type SparseIndices struct {
	BufferView    int           `json:"bufferView"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
}

type SparseValues struct {
	BufferView int `json:"bufferView"`
	ByteOffset int `json:"byteOffset,omitempty"`
}

// Image is an image source: either a URI or a buffer view with a MIME type.
type Image struct {
	URI        string          `json:"uri,omitempty"`
	MimeType   string          `json:"mimeType,omitempty"`
	BufferView *int            `json:"bufferView,omitempty"`
	Name       string          `json:"name,omitempty"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`
}

// Mesh, Skin and Animation are read only to resolve which accessors they use.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

type Primitive struct {
	Attributes map[string]int   `json:"attributes"`
	Indices    *int             `json:"indices,omitempty"`
	Targets    []map[string]int `json:"targets,omitempty"`
}

type Skin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
}

type Animation struct {
	Name     string             `json:"name,omitempty"`
	Samplers []AnimationSampler `json:"samplers"`
}

type AnimationSampler struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// ParseRoot decodes a glTF JSON document.
func ParseRoot(data []byte) (*Root, error) {
	r := &Root{}
	if err := json.Unmarshal(data, &r.fields); err != nil {
		return nil, &Error{Kind: KindMalformedJSON, Err: err}
	}
	if r.fields == nil {
		return nil, &Error{Kind: KindMalformedJSON, Msg: "document is not a JSON object"}
	}
	targets := []struct {
		key string
		dst any
	}{
		{"asset", &r.Asset},
		{"buffers", &r.Buffers},
		{"bufferViews", &r.BufferViews},
		{"accessors", &r.Accessors},
		{"images", &r.Images},
		{"meshes", &r.Meshes},
		{"skins", &r.Skins},
		{"animations", &r.Animations},
	}
	for _, t := range targets {
		raw, ok := r.fields[t.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return nil, &Error{Kind: KindMalformedJSON, Msg: "invalid " + t.key, Err: err}
		}
	}
	return r, nil
}

// Clone returns a copy whose binary-related collections can be rewritten
// without affecting r. Nested raw values are shared.
func (r *Root) Clone() *Root {
	c := *r
	c.Buffers = append([]Buffer(nil), r.Buffers...)
	c.BufferViews = append([]BufferView(nil), r.BufferViews...)
	c.Accessors = append([]AccessorDesc(nil), r.Accessors...)
	c.Images = append([]Image(nil), r.Images...)
	c.fields = make(map[string]json.RawMessage, len(r.fields))
	for k, v := range r.fields {
		c.fields[k] = v
	}
	return &c
}

// Encode serializes the document. Buffers, buffer views, accessors and
// images are written from their typed form; all other properties are
// emitted as they were read.
func (r *Root) Encode() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.fields)+4)
	for k, v := range r.fields {
		out[k] = v
	}
	if _, ok := out["asset"]; !ok {
		asset := r.Asset
		if asset.Version == "" {
			asset.Version = "2.0"
		}
		raw, err := json.Marshal(asset)
		if err != nil {
			return nil, err
		}
		out["asset"] = raw
	}
	if err := setCollection(out, "buffers", r.Buffers); err != nil {
		return nil, err
	}
	if err := setCollection(out, "bufferViews", r.BufferViews); err != nil {
		return nil, err
	}
	if err := setCollection(out, "accessors", r.Accessors); err != nil {
		return nil, err
	}
	if err := setCollection(out, "images", r.Images); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func setCollection[T any](out map[string]json.RawMessage, key string, items []T) error {
	if len(items) == 0 {
		delete(out, key)
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	out[key] = raw
	return nil
}
