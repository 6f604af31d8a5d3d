package gltf

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocatorKind classifies a buffer or image URI.
type LocatorKind uint8

const (
	LocatorUnsupported LocatorKind = iota
	LocatorData
	LocatorAbsolutePath
	LocatorRelativePath
)

func (k LocatorKind) String() string {
	switch k {
	case LocatorData:
		return "data"
	case LocatorAbsolutePath:
		return "file"
	case LocatorRelativePath:
		return "relative"
	default:
		return "unsupported"
	}
}

// Locator is a classified URI.
type Locator struct {
	Kind      LocatorKind
	MediaType string // data URIs only, may be empty
	Payload   string // base64 text of a data URI
	Path      string
	Raw       string
}

// ParseLocator classifies s. Strings without a scheme separator are
// percent-encoded relative paths.
func ParseLocator(s string) Locator {
	l := Locator{Raw: s}
	switch {
	case !strings.Contains(s, ":"):
		p, err := url.PathUnescape(s)
		if err != nil {
			return l
		}
		l.Kind = LocatorRelativePath
		l.Path = p
	case strings.HasPrefix(s, "data:"):
		mediaType, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ";base64,")
		if !ok {
			return l
		}
		l.Kind = LocatorData
		l.MediaType = mediaType
		l.Payload = payload
	case strings.HasPrefix(s, "file://"):
		l.Kind = LocatorAbsolutePath
		l.Path = strings.TrimPrefix(s, "file://")
	case strings.HasPrefix(s, "file:"):
		l.Kind = LocatorAbsolutePath
		l.Path = strings.TrimPrefix(s, "file:")
	}
	return l
}

// Resolve returns the bytes a locator refers to. An empty base means no
// base directory is known; file and relative locators then fail without
// touching the filesystem.
func Resolve(ctx context.Context, locator, base string) ([]byte, error) {
	return ParseLocator(locator).Read(ctx, base)
}

// Read returns the bytes the locator refers to.
func (l Locator) Read(ctx context.Context, base string) ([]byte, error) {
	switch l.Kind {
	case LocatorData:
		data, err := base64.StdEncoding.DecodeString(l.Payload)
		if err != nil {
			return nil, &Error{Kind: KindBase64, Locator: l.Raw, Err: err}
		}
		return data, nil
	case LocatorAbsolutePath, LocatorRelativePath:
		if base == "" {
			return nil, &Error{Kind: KindExternalReferenceWithoutBase, Locator: l.Raw}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := l.Path
		if l.Kind == LocatorRelativePath {
			path = filepath.Join(base, filepath.FromSlash(path))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			msg := "read failed"
			if errors.Is(err, fs.ErrNotExist) {
				msg = "file not found"
			}
			return nil, &Error{Kind: KindIO, Locator: l.Raw, Msg: msg, Err: err}
		}
		return data, nil
	default:
		return nil, &Error{Kind: KindUnsupportedScheme, Locator: l.Raw}
	}
}
