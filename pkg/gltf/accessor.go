package gltf

import "fmt"

// Component is the set of Go types accessor components decode into.
type Component interface {
	int8 | uint8 | int16 | uint16 | uint32 | float32
}

// Accessor is a decoded accessor: Count elements of Type, each made of
// ComponentType components, stored tightly packed.
type Accessor struct {
	Name          string
	ComponentType ComponentType
	Type          ElementType
	Count         int
	Normalized    bool
	Sparse        bool

	data   []byte
	values any
}

// Bytes returns the packed little-endian component bytes. The slice must
// not be modified.
func (a *Accessor) Bytes() []byte { return a.data }

// ByteLength is Count × Multiplicity × Size.
func (a *Accessor) ByteLength() int { return len(a.data) }

// Width returns the number of components per element.
func (a *Accessor) Width() int { return a.Type.Multiplicity() }

// Values returns the flat component slice: one of []int8, []uint8, []int16,
// []uint16, []uint32 or []float32.
func (a *Accessor) Values() any { return a.values }

// Elements is a grouped view over a flat component slice.
type Elements[T Component] struct {
	Values []T
	Width  int
}

func (e Elements[T]) Len() int {
	if e.Width == 0 {
		return 0
	}
	return len(e.Values) / e.Width
}

// At returns element i. The slice shares memory with Values.
func (e Elements[T]) At(i int) []T {
	lo, hi := i*e.Width, (i+1)*e.Width
	return e.Values[lo:hi:hi]
}

// ElementsOf returns the typed elements of a. T must match the accessor's
// component type.
func ElementsOf[T Component](a *Accessor) (Elements[T], error) {
	v, ok := a.values.([]T)
	if !ok {
		var zero T
		return Elements[T]{}, &Error{
			Kind: KindUnsupportedAccessorEncoding,
			Msg:  fmt.Sprintf("accessor holds %s components, not %T", a.ComponentType, zero),
		}
	}
	return Elements[T]{Values: v, Width: a.Width()}, nil
}

// Rows converts up to limit elements to float64, applying normalization
// when the accessor is normalized. A limit <= 0 returns every element.
func (a *Accessor) Rows(limit int) [][]float64 {
	n := a.Count
	if limit > 0 && limit < n {
		n = limit
	}
	w := a.Width()
	flat := make([]float64, n*w)
	switch v := a.values.(type) {
	case []int8:
		convert(flat, v, a.Normalized, 127)
	case []uint8:
		convert(flat, v, a.Normalized, 255)
	case []int16:
		convert(flat, v, a.Normalized, 32767)
	case []uint16:
		convert(flat, v, a.Normalized, 65535)
	case []uint32:
		convert(flat, v, false, 1)
	case []float32:
		convert(flat, v, false, 1)
	}
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = flat[i*w : (i+1)*w : (i+1)*w]
	}
	return rows
}

func convert[T Component](dst []float64, src []T, normalized bool, scale float64) {
	for i := range dst {
		f := float64(src[i])
		if normalized {
			f = max(f/scale, -1)
		}
		dst[i] = f
	}
}
