package gltf

import "fmt"

// ComponentType is the scalar encoding of accessor components.
type ComponentType uint32

const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the byte width of one component, or 0 for unknown types.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("COMPONENT_TYPE(%d)", uint32(c))
	}
}

// ElementType is the shape of one accessor element.
type ElementType string

const (
	Scalar ElementType = "SCALAR"
	Vec2   ElementType = "VEC2"
	Vec3   ElementType = "VEC3"
	Vec4   ElementType = "VEC4"
	Mat2   ElementType = "MAT2"
	Mat3   ElementType = "MAT3"
	Mat4   ElementType = "MAT4"
)

// Multiplicity returns the number of components per element, or 0 for
// unknown shapes.
func (e ElementType) Multiplicity() int {
	switch e {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// ElementSize is the packed byte size of one element.
func ElementSize(c ComponentType, e ElementType) int {
	return c.Size() * e.Multiplicity()
}
