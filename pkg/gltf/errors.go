package gltf

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies import and export failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMalformedContainer
	KindMissingPayload
	KindBufferLengthMismatch
	KindUnsupportedScheme
	KindExternalReferenceWithoutBase
	KindBase64
	KindUnsupportedAccessorEncoding
	KindMalformedJSON
	KindIO
	KindImageDecode
	KindInvalidReference
	KindOutOfBounds
)

var kindNames = [...]string{
	KindUnknown:                      "unknown",
	KindMalformedContainer:           "malformed_container",
	KindMissingPayload:               "missing_payload",
	KindBufferLengthMismatch:         "buffer_length_mismatch",
	KindUnsupportedScheme:            "unsupported_scheme",
	KindExternalReferenceWithoutBase: "external_reference_without_base",
	KindBase64:                       "base64_decode_failure",
	KindUnsupportedAccessorEncoding:  "unsupported_accessor_encoding",
	KindMalformedJSON:                "malformed_json",
	KindIO:                           "io",
	KindImageDecode:                  "image_decode_failure",
	KindInvalidReference:             "invalid_reference",
	KindOutOfBounds:                  "out_of_bounds",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrMalformedContainer           = errors.New("malformed binary container")
	ErrMissingPayload               = errors.New("missing binary portion of binary glTF")
	ErrBufferLengthMismatch         = errors.New("buffer length mismatch")
	ErrUnsupportedScheme            = errors.New("unsupported URI scheme")
	ErrExternalReferenceWithoutBase = errors.New("external reference without base directory")
	ErrBase64                       = errors.New("base64 decoding failed")
	ErrUnsupportedAccessorEncoding  = errors.New("unsupported accessor encoding")
	ErrMalformedJSON                = errors.New("malformed glTF JSON")
	ErrIO                           = errors.New("I/O failure")
	ErrImageDecode                  = errors.New("image decoding failed")
	ErrInvalidReference             = errors.New("invalid index reference")
	ErrOutOfBounds                  = errors.New("range out of bounds")
)

var kindSentinels = map[Kind]error{
	KindMalformedContainer:           ErrMalformedContainer,
	KindMissingPayload:               ErrMissingPayload,
	KindBufferLengthMismatch:         ErrBufferLengthMismatch,
	KindUnsupportedScheme:            ErrUnsupportedScheme,
	KindExternalReferenceWithoutBase: ErrExternalReferenceWithoutBase,
	KindBase64:                       ErrBase64,
	KindUnsupportedAccessorEncoding:  ErrUnsupportedAccessorEncoding,
	KindMalformedJSON:                ErrMalformedJSON,
	KindIO:                           ErrIO,
	KindImageDecode:                  ErrImageDecode,
	KindInvalidReference:             ErrInvalidReference,
	KindOutOfBounds:                  ErrOutOfBounds,
}

// Error is the single error type returned by import, decode and export.
//
// Subject and Index name the offending object ("buffer" 2, "accessor" 0).
// Expected and Actual are set for length mismatches.
type Error struct {
	Kind     Kind
	Subject  string
	Index    int
	Expected int
	Actual   int
	Locator  string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("gltf: ")
	if e.Subject != "" {
		fmt.Fprintf(&b, "%s %d: ", e.Subject, e.Index)
	}
	switch {
	case e.Kind == KindBufferLengthMismatch:
		fmt.Fprintf(&b, "expected %d bytes but received %d bytes", e.Expected, e.Actual)
	case e.Msg != "":
		b.WriteString(e.Msg)
	default:
		b.WriteString(e.sentinel().Error())
	}
	if e.Locator != "" {
		fmt.Fprintf(&b, " (%s)", truncateLocator(e.Locator))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel, so errors.Is(err, ErrMissingPayload) works
// through any amount of wrapping.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	if s, ok := kindSentinels[e.Kind]; ok {
		return s
	}
	return errors.New("unknown error")
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, subject string, index int, msg string) *Error {
	return &Error{Kind: kind, Subject: subject, Index: index, Msg: msg}
}

func errorf(kind Kind, subject string, index int, format string, args ...any) *Error {
	return newError(kind, subject, index, fmt.Sprintf(format, args...))
}

// data URIs can be megabytes long.
func truncateLocator(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
