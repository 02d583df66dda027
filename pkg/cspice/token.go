package cspice

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// Token is proof of exclusive access to the native library. Tokens are only
// handed out by a Library's acquisition methods; the zero value and a nil
// *Token are rejected by every operation.
//
// A token stands for one logical caller. Pass it down the call stack, or
// through a context with Context. Goroutines that share a token, or that
// acquire with a context carrying it, act as that caller: their native calls
// run one at a time inside the holder's exclusive interval. Callers without
// the token wait for it (Acquire) or fail with ErrBusy (TryAcquire).
type Token struct {
	g        *gate
	lib      *Library
	root     *Token
	released atomic.Bool
}

type tokenKey struct{}

// Context returns a copy of ctx carrying t. Acquisitions with the returned
// context, or one derived from it, on any Library sharing t's native
// instance return nested tokens without waiting. Handing the context to a
// worker goroutine delegates t's access to it.
func (t *Token) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, tokenKey{}, t)
}

// FromContext returns the token stored in ctx by Token.Context, or nil.
func FromContext(ctx context.Context) *Token {
	t, _ := ctx.Value(tokenKey{}).(*Token)
	return t
}

// Release gives up access. Releasing a root token frees the library for the
// next waiter and invalidates every token nested in it. Release is
// idempotent and safe on a nil token.
func (t *Token) Release() {
	if t == nil || t.g == nil {
		return
	}
	// Wait out a call in flight on a nested token.
	t.g.call.Lock()
	first := t.released.CompareAndSwap(false, true)
	t.g.call.Unlock()
	if first && t.root == nil {
		t.g.unlock()
	}
}

// Valid reports whether t can still be used for native calls.
func (t *Token) Valid() bool {
	return t != nil && t.g != nil && t.live()
}

func (t *Token) live() bool {
	if t.released.Load() {
		return false
	}
	return t.root == nil || !t.root.released.Load()
}

func (t *Token) rootToken() *Token {
	if t.root != nil {
		return t.root
	}
	return t
}

// enter claims the native library for one call, waiting for calls made
// through other tokens of the same caller. It is the only reader of
// gate.native.
func (t *Token) enter(op string) (backend.Library, error) {
	if t == nil || t.g == nil {
		return nil, &AccessError{Op: op, Err: ErrTokenReleased}
	}
	t.g.call.Lock()
	// Liveness is checked under call: the root cannot be released, and the
	// gate handed on, until this call is done.
	if !t.live() {
		t.g.call.Unlock()
		return nil, &AccessError{Op: op, Err: ErrTokenReleased}
	}
	return t.g.native, nil
}

func (t *Token) exit() { t.g.call.Unlock() }

// call runs fn against the native library and then drains the native error
// status while access is still held. When fn and the library both report a
// failure, both are returned.
func (t *Token) call(op string, fn func(lib backend.Library) error) error {
	lib, err := t.enter(op)
	if err != nil {
		return err
	}
	defer t.exit()

	ferr := fn(lib)
	nerr := checkAndClear(lib)
	switch {
	case ferr == nil:
		return nerr
	case nerr == nil:
		return ferr
	default:
		return errors.Join(ferr, nerr)
	}
}
