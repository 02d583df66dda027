package cspice

import (
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// Element is the set of element types a Cell can hold.
type Element interface {
	float64 | int32 | string
}

// Cell is a fixed-capacity array of elements in the toolkit's cell layout.
// Its storage is Go memory lent to the native library for one call at a time.
// A Cell is not safe for concurrent use.
type Cell[T Element] struct {
	c *backend.Cell
}

// NewDoubleCell returns an empty double precision cell with room for size
// elements.
func NewDoubleCell(size int) *Cell[float64] {
	return &Cell[float64]{c: backend.NewCell(backend.Double, size, 0)}
}

// NewIntCell returns an empty integer cell with room for size elements.
func NewIntCell(size int) *Cell[int32] {
	return &Cell[int32]{c: backend.NewCell(backend.Int, size, 0)}
}

// NewCharCell returns an empty character cell with room for size strings of
// at most length bytes each. Longer strings are truncated on Append.
func NewCharCell(size, length int) *Cell[string] {
	return &Cell[string]{c: backend.NewCell(backend.Char, size, length+1)}
}

// Append adds v after the last element. A full cell fails with
// ErrCellTooSmall.
func (c *Cell[T]) Append(t *Token, v T) error {
	switch x := any(v).(type) {
	case float64:
		return t.call("Cell.Append", func(lib backend.Library) error {
			lib.Appndd(x, c.c)
			return nil
		})
	case int32:
		return t.call("Cell.Append", func(lib backend.Library) error {
			lib.Appndi(x, c.c)
			return nil
		})
	case string:
		buf, err := cstr.New(x)
		if err != nil {
			return err
		}
		return t.call("Cell.Append", func(lib backend.Library) error {
			lib.Appndc(buf.Bytes(), c.c)
			return nil
		})
	}
	panic("unreachable")
}

// Card returns the number of elements in the cell.
func (c *Cell[T]) Card(t *Token) (int, error) {
	var n int
	err := t.call("Cell.Card", func(lib backend.Library) error {
		n = lib.Card(c.c)
		return nil
	})
	return n, err
}

// Size returns the capacity of the cell.
func (c *Cell[T]) Size(t *Token) (int, error) {
	var n int
	err := t.call("Cell.Size", func(lib backend.Library) error {
		n = lib.Size(c.c)
		return nil
	})
	return n, err
}

// SetCard sets the number of elements considered part of the cell. n must be
// in [0, Size].
func (c *Cell[T]) SetCard(t *Token, n int) error {
	return t.call("Cell.SetCard", func(lib backend.Library) error {
		lib.Scard(n, c.c)
		return nil
	})
}

// CopyTo copies the elements of c into dst, replacing its contents. When dst
// is too small the elements that fit are copied and ErrCellTooSmall is
// returned.
func (c *Cell[T]) CopyTo(t *Token, dst *Cell[T]) error {
	return t.call("Cell.CopyTo", func(lib backend.Library) error {
		lib.Copy(c.c, dst.c)
		return nil
	})
}

// Elements returns a copy of the cell's elements.
func (c *Cell[T]) Elements() []T {
	n := c.c.Card
	out := make([]T, n)
	switch dst := any(out).(type) {
	case []float64:
		copy(dst, c.c.DoubleData()[:n])
	case []int32:
		copy(dst, c.c.IntData()[:n])
	case []string:
		for i := range dst {
			dst[i] = decode(c.c.CharElem(i))
		}
	}
	return out
}
