//go:build cgo && cspice

package cspice_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/spicetest"
)

// These run against the linked toolkit. The native instance is process
// wide, so every library opened here shares one gate.

func TestNativeErrorBridge(t *testing.T) {
	lib := spicetest.Native(t, cspice.Config{})
	tok := spicetest.Acquire(t, lib)

	action, err := cspice.GetErrorAction(tok)
	require.NoError(t, err)
	assert.Equal(t, cspice.ActionReturn, action)

	err = cspice.Furnish(tok, "/nonexistent/de440.bsp")
	require.ErrorIs(t, err, cspice.ErrNoSuchFile)
	require.NoError(t, cspice.CheckError(tok))

	v, err := cspice.ToolkitVersion(tok)
	require.NoError(t, err)
	assert.Contains(t, v, "CSPICE_")
}

func TestNativeTime(t *testing.T) {
	lsk := spicetest.WriteLeapseconds(t, "")
	lib := spicetest.Native(t, cspice.Config{Kernels: []string{lsk}})
	tok := spicetest.Acquire(t, lib)

	et, err := cspice.StrToEt(tok, "2000-01-01T12:00:00")
	require.NoError(t, err)
	assert.InDelta(t, j2000UTC, float64(et), 1e-3)

	d := cspice.DateTime[cspice.Julian, cspice.TDB]{Year: -599, Month: 12, Day: 26}
	et, err = d.Et(tok)
	require.NoError(t, err)
	back, err := cspice.EtToDateTime[cspice.Julian, cspice.TDB](tok, et)
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestNativeCellsAndWindows(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.Native(t, cspice.Config{}))

	c := cspice.NewCharCell(2, 8)
	require.NoError(t, c.Append(tok, "EARTH"))
	require.NoError(t, c.Append(tok, "MOON"))
	assert.ErrorIs(t, c.Append(tok, "SUN"), cspice.ErrCellTooSmall)
	assert.Equal(t, []string{"EARTH", "MOON"}, c.Elements())

	w := cspice.NewWindow(4)
	require.NoError(t, w.Insert(tok, 1, 3))
	require.NoError(t, w.Insert(tok, 2, 5))
	assert.Equal(t, []cspice.Interval{{1, 5}}, w.Intervals())

	sep, err := cspice.VectorSeparation(tok, cspice.Vector3{1, 0, 0}, cspice.Vector3{0, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, sep, 1e-12)
}

func TestNativeConcurrentCallers(t *testing.T) {
	lib := spicetest.Native(t, cspice.Config{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				err := lib.Do(context.Background(), func(_ context.Context, tok *cspice.Token) error {
					code, found, err := cspice.BodyCode(tok, "EARTH")
					if err == nil {
						assert.True(t, found)
						assert.Equal(t, 399, code)
					}
					return err
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
