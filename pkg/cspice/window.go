package cspice

import (
	"errors"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// Interval is a closed interval [Left, Right].
type Interval struct {
	Left, Right float64
}

// Window is an ordered set of disjoint closed intervals stored in a double
// precision cell. Like Cell it is Go memory lent to the native library one
// call at a time and is not safe for concurrent use.
type Window struct {
	c *backend.Cell
}

// NewWindow returns an empty window with room for n intervals.
func NewWindow(n int) *Window {
	return &Window{c: backend.NewCell(backend.Double, 2*n, 0)}
}

// Capacity returns the number of intervals w can hold.
func (w *Window) Capacity() int { return w.c.Size / 2 }

// Intervals returns a copy of the intervals of w.
func (w *Window) Intervals() []Interval {
	data := w.c.DoubleData()
	out := make([]Interval, 0, w.c.Card/2)
	for i := 0; i+1 < w.c.Card; i += 2 {
		out = append(out, Interval{data[i], data[i+1]})
	}
	return out
}

// Insert adds [left, right] to w, merging it with intervals it overlaps.
func (w *Window) Insert(t *Token, left, right float64) error {
	return t.call("Window.Insert", func(lib backend.Library) error {
		lib.Wninsd(left, right, w.c)
		return nil
	})
}

// Card returns the number of intervals in w.
func (w *Window) Card(t *Token) (int, error) {
	var n int
	err := t.call("Window.Card", func(lib backend.Library) error {
		n = lib.Wncard(w.c)
		return nil
	})
	return n, err
}

// Interval returns interval i, counting from 0. An index out of range fails
// with ErrNoInterval.
func (w *Window) Interval(t *Token, i int) (Interval, error) {
	var iv Interval
	err := t.call("Window.Interval", func(lib backend.Library) error {
		iv.Left, iv.Right = lib.Wnfetd(w.c, i)
		return nil
	})
	return iv, err
}

func (w *Window) binary(t *Token, op string, other *Window, size int,
	f func(lib backend.Library, a, b, c *backend.Cell)) (*Window, error) {
	out := NewWindow(size)
	err := t.call(op, func(lib backend.Library) error {
		f(lib, w.c, other.c, out.c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Union returns a new window holding the union of w and other.
func (w *Window) Union(t *Token, other *Window) (*Window, error) {
	return w.binary(t, "Window.Union", other, w.Capacity()+other.Capacity(),
		func(lib backend.Library, a, b, c *backend.Cell) { lib.Wnunid(a, b, c) })
}

// Intersect returns a new window holding the intersection of w and other.
func (w *Window) Intersect(t *Token, other *Window) (*Window, error) {
	return w.binary(t, "Window.Intersect", other, w.Capacity()+other.Capacity(),
		func(lib backend.Library, a, b, c *backend.Cell) { lib.Wnintd(a, b, c) })
}

// Difference returns a new window holding w minus other.
func (w *Window) Difference(t *Token, other *Window) (*Window, error) {
	return w.binary(t, "Window.Difference", other, w.Capacity()+other.Capacity(),
		func(lib backend.Library, a, b, c *backend.Cell) { lib.Wndifd(a, b, c) })
}

// Complement returns the complement of w relative to [left, right].
func (w *Window) Complement(t *Token, left, right float64) (*Window, error) {
	out := NewWindow(w.Capacity() + 1)
	err := t.call("Window.Complement", func(lib backend.Library) error {
		lib.Wncomd(left, right, w.c, out.c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contract shrinks every interval by left on the left and right on the
// right. Intervals that vanish are removed.
func (w *Window) Contract(t *Token, left, right float64) error {
	return t.call("Window.Contract", func(lib backend.Library) error {
		lib.Wncond(left, right, w.c)
		return nil
	})
}

// Expand grows every interval by left on the left and right on the right,
// merging intervals that come to overlap.
func (w *Window) Expand(t *Token, left, right float64) error {
	return t.call("Window.Expand", func(lib backend.Library) error {
		lib.Wnexpd(left, right, w.c)
		return nil
	})
}

// Side selects an interval endpoint.
type Side byte

const (
	LeftSide  Side = 'L'
	RightSide Side = 'R'
)

// ExtractEndpoints replaces every interval by the degenerate interval at its
// left or right endpoint.
func (w *Window) ExtractEndpoints(t *Token, side Side) error {
	return t.call("Window.ExtractEndpoints", func(lib backend.Library) error {
		lib.Wnextd(byte(side), w.c)
		return nil
	})
}

// Fill merges adjacent intervals separated by gaps no longer than small.
func (w *Window) Fill(t *Token, small float64) error {
	return t.call("Window.Fill", func(lib backend.Library) error {
		lib.Wnfild(small, w.c)
		return nil
	})
}

// Filter removes intervals no longer than small.
func (w *Window) Filter(t *Token, small float64) error {
	return t.call("Window.Filter", func(lib backend.Library) error {
		lib.Wnfltd(small, w.c)
		return nil
	})
}

// ContainsPoint reports whether p lies in one of the intervals of w.
func (w *Window) ContainsPoint(t *Token, p float64) (bool, error) {
	var ok bool
	err := t.call("Window.ContainsPoint", func(lib backend.Library) error {
		ok = lib.Wnelmd(p, w.c)
		return nil
	})
	return ok, err
}

// ContainsInterval reports whether [left, right] lies within a single
// interval of w.
func (w *Window) ContainsInterval(t *Token, left, right float64) (bool, error) {
	var ok bool
	err := t.call("Window.ContainsInterval", func(lib backend.Library) error {
		ok = lib.Wnincd(left, right, w.c)
		return nil
	})
	return ok, err
}

// Relation is a set relation between windows.
type Relation string

const (
	RelEqual          Relation = "="
	RelNotEqual       Relation = "<>"
	RelSubset         Relation = "<="
	RelProperSubset   Relation = "<"
	RelSuperset       Relation = ">="
	RelProperSuperset Relation = ">"
)

// Compare reports whether "w rel other" holds.
func (w *Window) Compare(t *Token, rel Relation, other *Window) (bool, error) {
	op, err := cstr.New(string(rel))
	if err != nil {
		return false, err
	}
	var ok bool
	err = t.call("Window.Compare", func(lib backend.Library) error {
		ok = lib.Wnreld(w.c, op.Bytes(), other.c)
		return nil
	})
	return ok, err
}

// WindowSummary is the result of Summarize. Shortest and Longest are
// interval indices.
type WindowSummary struct {
	Measure  float64
	Average  float64
	StdDev   float64
	Shortest int
	Longest  int
}

// Summarize returns the total measure of w and statistics on its interval
// lengths.
func (w *Window) Summarize(t *Token) (WindowSummary, error) {
	var s WindowSummary
	err := t.call("Window.Summarize", func(lib backend.Library) error {
		var sml, lon int
		s.Measure, s.Average, s.StdDev, sml, lon = lib.Wnsumd(w.c)
		s.Shortest, s.Longest = sml/2, lon/2
		return nil
	})
	return s, err
}

var errOddEndpoints = errors.New("cspice: odd number of window endpoints")

// ValidateWindow builds a window of capacity n intervals from raw endpoint
// pairs, which need not be sorted or disjoint. Pairs with the left endpoint
// past the right fail with ErrBadEndpoints.
func ValidateWindow(t *Token, n int, endpoints []float64) (*Window, error) {
	if len(endpoints)%2 != 0 {
		return nil, errOddEndpoints
	}
	w := NewWindow(max(n, len(endpoints)/2))
	copy(w.c.DoubleData(), endpoints)
	err := t.call("ValidateWindow", func(lib backend.Library) error {
		lib.Wnvald(w.c.Size, len(endpoints), w.c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}
