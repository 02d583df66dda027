package cstr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmbeddedNul reports an input string that contains a nul byte. The C
	// side would silently truncate it, so it is rejected instead.
	ErrEmbeddedNul = errors.New("cstr: string contains an embedded nul byte")

	// ErrMissingNul reports an output buffer without a nul terminator.
	ErrMissingNul = errors.New("cstr: buffer is not nul terminated")

	// ErrNilBuffer reports a nil *Buffer passed where a string was expected.
	ErrNilBuffer = errors.New("cstr: nil buffer")

	// ErrTooLong reports a string that does not fit a fixed-size buffer.
	ErrTooLong = errors.New("cstr: string too long for buffer")
)

// Buffer is an owned, nul-terminated copy of a Go string. Buffers are
// immutable once built and may be shared between goroutines.
type Buffer struct {
	b []byte
}

// New copies s into a new Buffer of len(s)+1 bytes. It fails if s contains a
// nul byte.
func New(s string) (*Buffer, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, fmt.Errorf("%w at offset %d", ErrEmbeddedNul, i)
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &Buffer{b: b}, nil
}

// MustNew is like New but panics on an embedded nul. It is meant for
// constants known at compile time.
func MustNew(s string) *Buffer {
	buf, err := New(s)
	if err != nil {
		panic(err)
	}
	return buf
}

// Bytes returns the buffer contents including the terminator. The slice is a
// borrowed view: callers must not modify it or keep it past the native call
// it is passed to.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the string length, excluding the terminator.
func (b *Buffer) Len() int {
	return len(b.b) - 1
}

// String returns the Go string held by the buffer.
func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.b[:len(b.b)-1])
}

// Text is satisfied by the two forms wrappers accept for string inputs: a Go
// string, converted on every call, or a prebuilt *Buffer, borrowed as is.
type Text interface {
	string | *Buffer
}

// From returns a Buffer for s. A *Buffer is returned unchanged; a string is
// copied with New.
func From[S Text](s S) (*Buffer, error) {
	switch v := any(s).(type) {
	case *Buffer:
		if v == nil {
			return nil, ErrNilBuffer
		}
		return v, nil
	case string:
		return New(v)
	}
	panic("unreachable")
}

// Output allocates a zeroed buffer of n bytes for the native library to write
// a string into. n must cover the longest string the routine can produce,
// terminator included; the library truncates anything longer.
func Output(n int) []byte {
	if n < 1 {
		n = 1
	}
	return make([]byte, n)
}

// Sized copies s into a zeroed buffer of exactly n bytes. It serves routines
// that take a string through a fixed-size in/out argument, where the buffer
// length is passed alongside the string.
func Sized(s string, n int) ([]byte, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, fmt.Errorf("%w at offset %d", ErrEmbeddedNul, i)
	}
	if len(s) >= n {
		return nil, fmt.Errorf("%w: %d bytes into %d", ErrTooLong, len(s), n)
	}
	b := make([]byte, n)
	copy(b, s)
	return b, nil
}

// FromBuffer decodes the string at the start of buf, up to the first nul
// byte. It panics if buf has no nul byte. Invalid UTF-8 sequences are replaced
// with U+FFFD.
func FromBuffer(buf []byte) string {
	s, err := Decode(buf)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode is the non-panicking form of FromBuffer. When buf has no nul byte it
// returns the whole buffer decoded, together with an error wrapping
// ErrMissingNul.
func Decode(buf []byte) (string, error) {
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		return strings.ToValidUTF8(string(buf), "�"), fmt.Errorf("%w (%d bytes)", ErrMissingNul, len(buf))
	}
	return strings.ToValidUTF8(string(buf[:i]), "�"), nil
}

// Put writes s into out as a nul-terminated string, truncating it to
// len(out)-1 bytes. It mirrors how the native library fills output buffers
// and returns the number of bytes written before the terminator.
func Put(out []byte, s string) int {
	if len(out) == 0 {
		return 0
	}
	n := copy(out[:len(out)-1], s)
	out[n] = 0
	return n
}
