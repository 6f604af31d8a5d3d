package gltf

import (
	"bytes"
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/gltfkit/pkg/glb"
)

// ImportOptions tunes an import. The zero value decodes accessors on
// GOMAXPROCS goroutines and skips images.
type ImportOptions struct {
	// Workers bounds concurrent accessor decodes and external reads.
	Workers int

	// DecodeImages decodes every image with ImageCodec.
	DecodeImages bool

	// ImageCodec defaults to StdImageCodec.
	ImageCodec ImageCodec
}

// ImportFromPath imports a .gltf or .glb file. The format is chosen by the
// leading magic, not the extension. External references resolve relative
// to the file's directory. The document should be closed when done.
func ImportFromPath(ctx context.Context, path string, opts ImportOptions) (*Document, error) {
	region, err := glb.Map(path)
	if err != nil {
		return nil, &Error{Kind: KindIO, Locator: path, Err: err}
	}
	doc, err := importData(ctx, region.Data, filepath.Dir(path), true, opts)
	if err != nil {
		_ = region.Close()
		return nil, err
	}
	doc.region = region
	return doc, nil
}

// ImportFromBytes imports an in-memory asset. Without a base directory,
// only embedded and data URI buffers can be resolved. data is not retained.
func ImportFromBytes(ctx context.Context, data []byte, opts ImportOptions) (*Document, error) {
	return importData(ctx, data, "", false, opts)
}

func importData(ctx context.Context, data []byte, base string, owned bool, opts ImportOptions) (*Document, error) {
	doc := &Document{Base: base}
	jsonData := data
	var payload *Payload
	if glb.IsBinary(data) {
		f, err := glb.Parse(data)
		if err != nil {
			return nil, &Error{Kind: KindMalformedContainer, Err: err}
		}
		doc.Binary = true
		doc.Header = f.Header
		doc.Chunks = make([]glb.Chunk, len(f.Chunks))
		for i, c := range f.Chunks {
			c.Data = nil
			doc.Chunks[i] = c
		}
		jsonData = f.JSON
		payload = NewPayload(f.BIN, owned)
	}

	root, err := ParseRoot(bytes.Clone(jsonData))
	if err != nil {
		return nil, err
	}
	doc.Root = root
	if err := validateReferences(root); err != nil {
		return nil, err
	}

	if doc.Buffers, err = AcquireBuffers(ctx, root.Buffers, payload, base, opts.Workers); err != nil {
		return nil, err
	}
	if doc.Accessors, err = decodeAccessors(ctx, root, doc.Buffers, opts.Workers); err != nil {
		return nil, err
	}
	if opts.DecodeImages {
		codec := opts.ImageCodec
		if codec == nil {
			codec = StdImageCodec{}
		}
		if doc.Images, err = decodeImages(ctx, root, doc.Buffers, base, codec, opts.Workers); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// decodeAccessors decodes every accessor concurrently. Each result lands at
// its own index, so order matches the document.
func decodeAccessors(ctx context.Context, root *Root, blobs []Blob, workers int) ([]*Accessor, error) {
	out := make([]*Accessor, len(root.Accessors))
	dec := &Decoder{Views: root.BufferViews, Blobs: blobs}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))
	for i, desc := range root.Accessors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := dec.Decode(i, desc)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeImages(ctx context.Context, root *Root, blobs []Blob, base string, codec ImageCodec, workers int) ([]*ImageData, error) {
	out := make([]*ImageData, len(root.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))
	for i, img := range root.Images {
		g.Go(func() error {
			data, mime, err := imageSource(gctx, root, blobs, img, base)
			if err != nil {
				return withSubject(err, "image", i)
			}
			decoded, err := codec.Decode(data, mime)
			if err != nil {
				return withSubject(err, "image", i)
			}
			out[i] = decoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// imageSource returns the encoded bytes of img and the best MIME hint.
func imageSource(ctx context.Context, root *Root, blobs []Blob, img Image, base string) ([]byte, string, error) {
	if img.BufferView != nil {
		v := root.BufferViews[*img.BufferView]
		blob := blobs[v.Buffer]
		return blob[v.ByteOffset : v.ByteOffset+v.ByteLength], img.MimeType, nil
	}
	if img.URI == "" {
		return nil, "", &Error{Kind: KindInvalidReference, Msg: "image has neither uri nor bufferView"}
	}
	loc := ParseLocator(img.URI)
	data, err := loc.Read(ctx, base)
	if err != nil {
		return nil, "", err
	}
	mime := img.MimeType
	if mime == "" {
		if loc.Kind == LocatorData {
			mime = loc.MediaType
		} else {
			mime = mimeFromPath(loc.Path)
		}
	}
	return data, mime, nil
}
