// Package spicetest provides helpers for testing code built on package
// cspice. Libraries returned by New run against an in-process simulator of
// the toolkit, so tests need neither cgo nor an installed CSPICE.
package spicetest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/sim"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/logging"
)

type options struct {
	screen io.Writer
}

// Option configures New.
type Option func(*options)

// WithScreen captures what the simulated toolkit writes to the SCREEN error
// device. By default that output is discarded.
func WithScreen(w io.Writer) Option {
	return func(o *options) { o.screen = w }
}

// New returns a Library backed by a fresh simulator. Every call gets its own
// simulated toolkit instance, so tests using separate libraries do not
// contend with each other. The library is closed when the test ends. A nil
// cfg.Logger is replaced by a discarding one.
func New(tb testing.TB, cfg cspice.Config, opts ...Option) *cspice.Library {
	tb.Helper()
	o := options{screen: io.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	lib, err := cspice.NewLibrary(cfg, sim.New(sim.WithScreen(o.screen)))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = lib.Close() })
	return lib
}

// Native returns a Library on the linked CSPICE toolkit and skips the test
// when the binary was built without it.
func Native(tb testing.TB, cfg cspice.Config) *cspice.Library {
	tb.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	lib, err := cspice.Open(cfg)
	if errors.Is(err, cspice.ErrNotBuilt) {
		tb.Skip("cspice: native toolkit not linked; build with -tags cspice")
	}
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = lib.Close() })
	return lib
}

// Acquire takes a token on lib and releases it when the test ends.
func Acquire(tb testing.TB, lib *cspice.Library) *cspice.Token {
	tb.Helper()
	tok, err := lib.Acquire(context.Background())
	require.NoError(tb, err)
	tb.Cleanup(tok.Release)
	return tok
}
