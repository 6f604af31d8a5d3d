package gltf

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Blob holds the bytes of one buffer. Its length is at least the declared
// byte length and a multiple of four. Blobs are never written after
// acquisition and may be shared between goroutines.
type Blob []byte

// Payload is the single embedded BIN chunk of a binary container. It can be
// taken once; later takes fail.
type Payload struct {
	mu    sync.Mutex
	data  []byte
	owned bool
	taken bool
}

// NewPayload wraps the BIN chunk bytes. owned reports whether the bytes may
// be kept without copying. A nil data means the container had no BIN chunk.
func NewPayload(data []byte, owned bool) *Payload {
	return &Payload{data: data, owned: owned}
}

// Take returns the payload bytes and whether the caller may keep them
// without copying. Only the first call succeeds.
func (p *Payload) Take() ([]byte, bool, bool) {
	if p == nil {
		return nil, false, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.taken || p.data == nil {
		return nil, false, false
	}
	p.taken = true
	data := p.data
	p.data = nil
	return data, p.owned, true
}

// Source kinds of a buffer.
type SourceKind uint8

const (
	SourceEmbedded SourceKind = iota
	SourceExternal
)

func (k SourceKind) String() string {
	if k == SourceEmbedded {
		return "embedded"
	}
	return "external"
}

// Source reports where the buffer's bytes come from.
func (b Buffer) Source() SourceKind {
	if b.URI == "" {
		return SourceEmbedded
	}
	return SourceExternal
}

// AcquireBuffer loads the bytes of buffer index.
func AcquireBuffer(ctx context.Context, index int, b Buffer, payload *Payload, base string) (Blob, error) {
	if b.ByteLength < 0 {
		return nil, errorf(KindOutOfBounds, "buffer", index, "negative byte length %d", b.ByteLength)
	}
	var (
		data  []byte
		owned bool
	)
	switch b.Source() {
	case SourceEmbedded:
		var ok bool
		data, owned, ok = payload.Take()
		if !ok {
			return nil, newError(KindMissingPayload, "buffer", index, "")
		}
	default:
		var err error
		data, err = Resolve(ctx, b.URI, base)
		if err != nil {
			if e, ok := err.(*Error); ok && e.Subject == "" {
				e.Subject, e.Index = "buffer", index
			}
			return nil, err
		}
		owned = true
	}

	if len(data) < b.ByteLength {
		return nil, &Error{
			Kind:     KindBufferLengthMismatch,
			Subject:  "buffer",
			Index:    index,
			Expected: b.ByteLength,
			Actual:   len(data),
		}
	}
	return padBlob(data, owned), nil
}

// AcquireBuffers loads every buffer of a document. Embedded buffers are
// taken in document order; external ones are read concurrently with at
// most workers reads in flight.
func AcquireBuffers(ctx context.Context, buffers []Buffer, payload *Payload, base string, workers int) ([]Blob, error) {
	blobs := make([]Blob, len(buffers))
	for i, b := range buffers {
		if b.Source() != SourceEmbedded {
			continue
		}
		blob, err := AcquireBuffer(ctx, i, b, payload, base)
		if err != nil {
			return nil, err
		}
		blobs[i] = blob
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))
	for i, b := range buffers {
		if b.Source() == SourceEmbedded {
			continue
		}
		g.Go(func() error {
			blob, err := AcquireBuffer(gctx, i, b, payload, base)
			if err != nil {
				return err
			}
			blobs[i] = blob
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blobs, nil
}

// padBlob zero-pads data to a multiple of four. Bytes not owned by the
// caller are always copied.
func padBlob(data []byte, owned bool) Blob {
	n := alignLength(len(data))
	if owned && n == len(data) {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

func alignLength(n int) int { return (n + 3) &^ 3 }

func workerCount(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
