package gltf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// PixelFormat is the layout of ImageData.Pixels. 16-bit channels are
// little-endian.
type PixelFormat uint8

const (
	FormatR8 PixelFormat = iota + 1
	FormatR16
	FormatR8G8B8A8
	FormatR16G16B16A16
)

func (f PixelFormat) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatR16:
		return "R16"
	case FormatR8G8B8A8:
		return "R8G8B8A8"
	case FormatR16G16B16A16:
		return "R16G16B16A16"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

// BytesPerPixel returns the packed pixel size.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatR8:
		return 1
	case FormatR16:
		return 2
	case FormatR8G8B8A8:
		return 4
	case FormatR16G16B16A16:
		return 8
	default:
		return 0
	}
}

// ImageData is a decoded image with tightly packed rows.
type ImageData struct {
	Pixels   []byte
	Format   PixelFormat
	Width    int
	Height   int
	MimeType string
}

// ImageCodec decodes encoded image bytes. mimeType is a hint and may be
// empty.
type ImageCodec interface {
	Decode(data []byte, mimeType string) (*ImageData, error)
}

// StdImageCodec decodes PNG, JPEG and WebP. Unknown or missing MIME types
// are sniffed from the data.
type StdImageCodec struct{}

func (StdImageCodec) Decode(data []byte, mimeType string) (*ImageData, error) {
	r := bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch mimeType {
	case "image/png":
		img, err = png.Decode(r)
	case "image/jpeg":
		img, err = jpeg.Decode(r)
	case "image/webp":
		img, err = webp.Decode(r)
	default:
		var format string
		img, format, err = image.Decode(r)
		if err == nil {
			mimeType = "image/" + format
		}
	}
	if err != nil {
		return nil, &Error{Kind: KindImageDecode, Err: err}
	}
	out := fromImage(img)
	out.MimeType = mimeType
	return out, nil
}

func fromImage(img image.Image) *ImageData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &ImageData{Width: w, Height: h}

	switch m := img.(type) {
	case *image.Gray:
		out.Format = FormatR8
		out.Pixels = packRows(m.Pix, m.Stride, w, h)
	case *image.Gray16:
		out.Format = FormatR16
		out.Pixels = swap16(packRows(m.Pix, m.Stride, w*2, h))
	case *image.RGBA64, *image.NRGBA64:
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		out.Format = FormatR16G16B16A16
		out.Pixels = swap16(dst.Pix)
	default:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		out.Format = FormatR8G8B8A8
		out.Pixels = dst.Pix
	}
	return out
}

func packRows(pix []byte, stride, rowBytes, rows int) []byte {
	out := make([]byte, rowBytes*rows)
	for y := range rows {
		copy(out[y*rowBytes:(y+1)*rowBytes], pix[y*stride:y*stride+rowBytes])
	}
	return out
}

// image stores 16-bit samples big-endian.
func swap16(p []byte) []byte {
	for i := 0; i+1 < len(p); i += 2 {
		binary.LittleEndian.PutUint16(p[i:], binary.BigEndian.Uint16(p[i:]))
	}
	return p
}

// mimeFromPath guesses a MIME type from a file extension.
func mimeFromPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
