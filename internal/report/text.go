package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteText prints r in the sectioned layout used by the inspect command.
func (r *Report) WriteText(w io.Writer) error {
	p := &printer{w: w}

	if r.Container != nil {
		p.printf("glTF Binary: v%d length=%s\n", r.Container.Version, FormatBytes(uint64(r.Container.Length)))
		for _, c := range r.Container.Chunks {
			p.printf("  chunk %d: %-4s offset=%d length=%s\n", c.Index, c.Type, c.Offset, FormatBytes(uint64(c.Length)))
		}
	} else {
		p.printf("glTF JSON\n")
	}
	p.row("asset.version", r.Asset.Version)
	p.row("asset.generator", r.Asset.Generator)

	p.section(fmt.Sprintf("Buffers (%d)", len(r.Buffers)))
	for _, b := range r.Buffers {
		p.printf("[%d] %-9s %10s", b.Index, b.Source, FormatBytes(uint64(b.ByteLength)))
		if b.URI != "" {
			p.printf("  uri=%s", b.URI)
		}
		if b.Digest != "" {
			p.printf("  blake3=%s", b.Digest[:16])
		}
		p.printf("\n")
	}

	p.section(fmt.Sprintf("Buffer Views (%d)", len(r.BufferViews)))
	for _, v := range r.BufferViews {
		p.printf("[%d] buffer=%d offset=%d length=%d", v.Index, v.Buffer, v.ByteOffset, v.ByteLength)
		if v.ByteStride > 0 {
			p.printf(" stride=%d", v.ByteStride)
		}
		p.printf("\n")
	}

	p.section(fmt.Sprintf("Accessors (%d)", len(r.Accessors)))
	for _, a := range r.Accessors {
		flags := []string{}
		if a.Normalized {
			flags = append(flags, "normalized")
		}
		if a.Sparse {
			flags = append(flags, "sparse")
		}
		if a.BufferView == nil {
			flags = append(flags, "no-view")
		}
		p.printf("[%d] %-6s %-14s count=%-8d %10s", a.Index, a.Type, a.ComponentType, a.Count, FormatBytes(uint64(a.ByteLength)))
		if len(flags) > 0 {
			p.printf(" (%s)", strings.Join(flags, ", "))
		}
		if len(a.Usage) > 0 {
			p.printf("  %s", strings.Join(a.Usage, "; "))
		}
		p.printf("\n")
	}

	if len(r.Images) > 0 {
		p.section(fmt.Sprintf("Images (%d)", len(r.Images)))
		for _, img := range r.Images {
			src := img.URI
			if img.BufferView != nil {
				src = fmt.Sprintf("bufferView %d", *img.BufferView)
			}
			p.printf("[%d] %s %s", img.Index, img.MimeType, src)
			if img.Width > 0 {
				p.printf(" %dx%d %s", img.Width, img.Height, img.Format)
			}
			p.printf("\n")
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	line := strings.Repeat("-", len(title)+8)
	p.printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func (p *printer) row(label, value string) {
	if value == "" {
		return
	}
	p.printf("%-24s %s\n", label+":", value)
}

func FormatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
