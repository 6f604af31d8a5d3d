package glb

import "errors"

var (
	ErrInvalidMagic       = errors.New("invalid glTF magic")
	ErrUnsupportedVersion = errors.New("unsupported glTF container version")
	ErrCorruptFile        = errors.New("corrupt glTF container")
	ErrTooLarge           = errors.New("glTF container exceeds 4 GiB")
)
