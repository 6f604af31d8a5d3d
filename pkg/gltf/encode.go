package gltf

// Encode returns the descriptor, buffer view and packed bytes that
// reproduce a. The view targets buffer 0 at offset 0; min and max are left
// unset.
func Encode(a *Accessor, bufferView int) (AccessorDesc, BufferView, []byte) {
	data := append([]byte(nil), a.data...)
	desc := AccessorDesc{
		BufferView:    &bufferView,
		ComponentType: a.ComponentType,
		Normalized:    a.Normalized,
		Count:         a.Count,
		Type:          a.Type,
		Name:          a.Name,
	}
	return desc, BufferView{ByteLength: len(data)}, data
}

// Packer lays out packed accessor data and raw byte ranges in a single
// buffer, each view starting on a 4-byte boundary.
type Packer struct {
	buf   []byte
	views []BufferView
}

// AddAccessor appends a's packed bytes and returns a descriptor pointing at
// the new view.
func (p *Packer) AddAccessor(a *Accessor) AccessorDesc {
	desc, view, data := Encode(a, len(p.views))
	p.add(view, data)
	return desc
}

// AddBytes appends data as a new view and returns its index.
func (p *Packer) AddBytes(data []byte) int {
	p.add(BufferView{ByteLength: len(data)}, data)
	return len(p.views) - 1
}

func (p *Packer) add(view BufferView, data []byte) {
	if pad := alignLength(len(p.buf)) - len(p.buf); pad > 0 {
		p.buf = append(p.buf, make([]byte, pad)...)
	}
	view.Buffer = 0
	view.ByteOffset = len(p.buf)
	p.buf = append(p.buf, data...)
	p.views = append(p.views, view)
}

func (p *Packer) Views() []BufferView { return p.views }

// Blob returns the packed buffer padded to a multiple of four.
func (p *Packer) Blob() Blob { return padBlob(p.buf, true) }

// Len is the unpadded byte length of the packed buffer.
func (p *Packer) Len() int { return len(p.buf) }
