package cspice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/spicetest"
)

func newWindow(t *testing.T, tok *cspice.Token, n int, ivs ...cspice.Interval) *cspice.Window {
	t.Helper()
	w := cspice.NewWindow(n)
	for _, iv := range ivs {
		require.NoError(t, w.Insert(tok, iv.Left, iv.Right))
	}
	return w
}

func TestWindowInsert(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	w := newWindow(t, tok, 4, cspice.Interval{1, 3}, cspice.Interval{7, 11}, cspice.Interval{2, 5})

	assert.Equal(t, []cspice.Interval{{1, 5}, {7, 11}}, w.Intervals())
	assert.Equal(t, 4, w.Capacity())
	n, err := w.Card(tok)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	iv, err := w.Interval(tok, 1)
	require.NoError(t, err)
	assert.Equal(t, cspice.Interval{7, 11}, iv)
	_, err = w.Interval(tok, 2)
	assert.ErrorIs(t, err, cspice.ErrNoInterval)

	assert.ErrorIs(t, w.Insert(tok, 9, 8), cspice.ErrBadEndpoints)
	assert.Equal(t, []cspice.Interval{{1, 5}, {7, 11}}, w.Intervals())
}

func TestWindowExcess(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	w := newWindow(t, tok, 1, cspice.Interval{1, 2})

	err := w.Insert(tok, 5, 6)
	require.ErrorIs(t, err, cspice.ErrWindowExcess)
	assert.Equal(t, []cspice.Interval{{1, 2}}, w.Intervals())
}

func TestWindowSetOperations(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	a := newWindow(t, tok, 4, cspice.Interval{1, 5}, cspice.Interval{7, 11})
	b := newWindow(t, tok, 4, cspice.Interval{4, 8})

	union, err := a.Union(tok, b)
	require.NoError(t, err)
	assert.Equal(t, []cspice.Interval{{1, 11}}, union.Intervals())

	inter, err := a.Intersect(tok, b)
	require.NoError(t, err)
	assert.Equal(t, []cspice.Interval{{4, 5}, {7, 8}}, inter.Intervals())

	diff, err := a.Difference(tok, b)
	require.NoError(t, err)
	assert.Equal(t, []cspice.Interval{{1, 4}, {8, 11}}, diff.Intervals())

	comp, err := a.Complement(tok, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, []cspice.Interval{{0, 1}, {5, 7}, {11, 12}}, comp.Intervals())

	_, err = a.Complement(tok, 12, 0)
	assert.ErrorIs(t, err, cspice.ErrBadEndpoints)

	// Inputs are untouched.
	assert.Equal(t, []cspice.Interval{{1, 5}, {7, 11}}, a.Intervals())
	assert.Equal(t, []cspice.Interval{{4, 8}}, b.Intervals())
}

func TestWindowMembership(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	w := newWindow(t, tok, 4, cspice.Interval{1, 5}, cspice.Interval{7, 11})

	for p, want := range map[float64]bool{0: false, 1: true, 6: false, 7: true, 11: true, 11.5: false} {
		got, err := w.ContainsPoint(tok, p)
		require.NoError(t, err)
		assert.Equal(t, want, got, "point %g", p)
	}

	in, err := w.ContainsInterval(tok, 8, 10)
	require.NoError(t, err)
	assert.True(t, in)
	in, err = w.ContainsInterval(tok, 4, 8)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestWindowCompare(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	a := newWindow(t, tok, 4, cspice.Interval{1, 5}, cspice.Interval{7, 11})
	same := newWindow(t, tok, 2, cspice.Interval{7, 11}, cspice.Interval{1, 5})
	sub := newWindow(t, tok, 2, cspice.Interval{2, 3})

	tests := []struct {
		x    *cspice.Window
		rel  cspice.Relation
		y    *cspice.Window
		want bool
	}{
		{a, cspice.RelEqual, same, true},
		{a, cspice.RelNotEqual, same, false},
		{a, cspice.RelNotEqual, sub, true},
		{sub, cspice.RelSubset, a, true},
		{sub, cspice.RelProperSubset, a, true},
		{a, cspice.RelProperSubset, same, false},
		{a, cspice.RelSubset, same, true},
		{a, cspice.RelSuperset, sub, true},
		{a, cspice.RelProperSuperset, same, false},
		{sub, cspice.RelSuperset, a, false},
	}
	for _, tt := range tests {
		got, err := tt.x.Compare(tok, tt.rel, tt.y)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v %s %v", tt.x.Intervals(), tt.rel, tt.y.Intervals())
	}

	_, err := a.Compare(tok, "~", same)
	assert.ErrorIs(t, err, cspice.ErrInvalidOperation)
}

func TestWindowReshape(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	w := newWindow(t, tok, 4, cspice.Interval{1, 3}, cspice.Interval{4, 6}, cspice.Interval{10, 20})

	require.NoError(t, w.Fill(tok, 1.5))
	assert.Equal(t, []cspice.Interval{{1, 6}, {10, 20}}, w.Intervals())

	require.NoError(t, w.Filter(tok, 5))
	assert.Equal(t, []cspice.Interval{{10, 20}}, w.Intervals())

	require.NoError(t, w.Contract(tok, 1, 2))
	assert.Equal(t, []cspice.Interval{{11, 18}}, w.Intervals())

	require.NoError(t, w.Expand(tok, 1, 2))
	assert.Equal(t, []cspice.Interval{{10, 20}}, w.Intervals())

	require.NoError(t, w.ExtractEndpoints(tok, cspice.RightSide))
	assert.Equal(t, []cspice.Interval{{20, 20}}, w.Intervals())

	require.NoError(t, w.Contract(tok, 1, 0))
	assert.Empty(t, w.Intervals())
}

func TestWindowSummarize(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	w := newWindow(t, tok, 4, cspice.Interval{1, 3}, cspice.Interval{7, 11})

	s, err := w.Summarize(tok)
	require.NoError(t, err)
	assert.InDelta(t, 6, s.Measure, 1e-12)
	assert.InDelta(t, 3, s.Average, 1e-12)
	assert.InDelta(t, 1, s.StdDev, 1e-12)
	assert.Equal(t, 0, s.Shortest)
	assert.Equal(t, 1, s.Longest)

	empty, err := cspice.NewWindow(2).Summarize(tok)
	require.NoError(t, err)
	assert.Equal(t, cspice.WindowSummary{}, empty)
}

func TestValidateWindow(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	w, err := cspice.ValidateWindow(tok, 4, []float64{5, 6, 1, 2, 1.5, 3})
	require.NoError(t, err)
	assert.Equal(t, []cspice.Interval{{1, 3}, {5, 6}}, w.Intervals())
	assert.Equal(t, 4, w.Capacity())

	_, err = cspice.ValidateWindow(tok, 4, []float64{3, 1})
	assert.ErrorIs(t, err, cspice.ErrBadEndpoints)

	_, err = cspice.ValidateWindow(tok, 4, []float64{1, 2, 3})
	assert.Error(t, err)

	w, err = cspice.ValidateWindow(tok, 0, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, w.Capacity())
}
