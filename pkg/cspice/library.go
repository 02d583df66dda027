package cspice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/logging"
)

// Library is a handle on a native toolkit instance. All handles on the same
// instance share one access gate, so at most one token across all of them is
// live at a time.
type Library struct {
	cfg Config
	g   *gate
	log logging.Logger

	mu       sync.Mutex
	closed   bool
	prepared bool
	loaded   []string
}

// Open returns a handle on the CSPICE library linked into the binary. It
// returns ErrNotBuilt when the binary was compiled without the cspice build
// tag or without cgo.
func Open(cfg Config) (*Library, error) {
	lib, err := backend.Native()
	if err != nil {
		return nil, err
	}
	return newLibrary(cfg, lib)
}

// NewLibrary returns a handle on an explicit backend. It is used by the
// spicetest package to run against the simulator.
func NewLibrary(cfg Config, lib backend.Library) (*Library, error) {
	if lib == nil {
		return nil, errors.New("cspice: nil backend")
	}
	return newLibrary(cfg, lib)
}

func newLibrary(cfg Config, lib backend.Library) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New(nil)
	}
	return &Library{cfg: cfg, g: gateFor(lib), log: log.With("backend", fmt.Sprintf("%T", lib))}, nil
}

func (l *Library) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Acquire returns a token once access is available, waiting in FIFO order
// behind other callers. If ctx carries a live token for the same native
// instance, a nested token is returned immediately. Waiting ends with an
// *AccessError wrapping the context error when ctx is done.
func (l *Library) Acquire(ctx context.Context) (*Token, error) {
	const op = "acquire"
	if l.isClosed() {
		return nil, &AccessError{Op: op, Err: ErrLibraryClosed}
	}
	if t := l.nested(ctx); t != nil {
		return t, nil
	}
	if err := l.g.lock(ctx); err != nil {
		return nil, &AccessError{Op: op, Err: err}
	}
	return l.mint(ctx)
}

// TryAcquire is like Acquire but never waits: when another caller holds
// the library it returns an *AccessError wrapping ErrBusy.
func (l *Library) TryAcquire(ctx context.Context) (*Token, error) {
	const op = "try acquire"
	if l.isClosed() {
		return nil, &AccessError{Op: op, Err: ErrLibraryClosed}
	}
	if t := l.nested(ctx); t != nil {
		return t, nil
	}
	if !l.g.tryLock() {
		return nil, &AccessError{Op: op, Err: ErrBusy}
	}
	return l.mint(ctx)
}

// MustTryAcquire is like TryAcquire but panics with the *AccessError.
func (l *Library) MustTryAcquire(ctx context.Context) *Token {
	t, err := l.TryAcquire(ctx)
	if err != nil {
		panic(err)
	}
	return t
}

// Do runs fn with a token obtained by Acquire and releases it afterwards. The
// context passed to fn carries the token.
func (l *Library) Do(ctx context.Context, fn func(ctx context.Context, t *Token) error) error {
	t, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer t.Release()
	return fn(t.Context(ctx), t)
}

// TryDo is like Do but uses TryAcquire.
func (l *Library) TryDo(ctx context.Context, fn func(ctx context.Context, t *Token) error) error {
	t, err := l.TryAcquire(ctx)
	if err != nil {
		return err
	}
	defer t.Release()
	return fn(t.Context(ctx), t)
}

func (l *Library) nested(ctx context.Context) *Token {
	parent := FromContext(ctx)
	if parent == nil || parent.g != l.g || !parent.live() {
		return nil
	}
	return &Token{g: l.g, lib: l, root: parent.rootToken()}
}

// mint builds a root token for a caller that just took the gate, running the
// one-time setup of the native instance and of this handle.
func (l *Library) mint(ctx context.Context) (*Token, error) {
	t := &Token{g: l.g, lib: l}
	if l.isClosed() {
		// Close won the race after the caller's closed check.
		t.Release()
		return nil, &AccessError{Op: "acquire", Err: ErrLibraryClosed}
	}
	if err := l.g.initialize(ctx, t, l.cfg, l.log); err != nil {
		l.log.Error(ctx, "cspice: error subsystem setup failed", "error", err)
		t.Release()
		return nil, err
	}
	if err := l.prepare(ctx, t); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// prepare furnishes the configured kernels on the handle's first
// acquisition. It runs with the gate held, which Close also takes before
// reading l.loaded.
func (l *Library) prepare(ctx context.Context, t *Token) error {
	l.mu.Lock()
	done := l.prepared
	l.mu.Unlock()
	if done {
		return nil
	}
	var loaded []string
	for _, k := range l.cfg.Kernels {
		if err := Furnish(t, k); err != nil {
			l.log.Error(ctx, "cspice: configured kernel failed to load", "kernel", k, "error", err)
			l.release(ctx, t, loaded)
			return fmt.Errorf("cspice: load configured kernel %s: %w", k, err)
		}
		l.g.configured[k]++
		loaded = append(loaded, k)
	}
	l.mu.Lock()
	l.prepared = true
	l.loaded = loaded
	l.mu.Unlock()
	if len(loaded) > 0 {
		l.log.Info(ctx, "cspice: configured kernels loaded", "count", len(loaded))
	}
	return nil
}

// release drops this handle's claim on each kernel and unloads the ones no
// other handle on the gate configured. The gate must be held.
func (l *Library) release(ctx context.Context, t *Token, kernels []string) error {
	var errs []error
	for _, k := range kernels {
		l.g.configured[k]--
		if l.g.configured[k] > 0 {
			continue
		}
		delete(l.g.configured, k)
		if err := Unload(t, k); err != nil {
			l.log.Warn(ctx, "cspice: unload failed", "kernel", k, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close unloads the kernels the handle loaded from its configuration and
// marks it closed. A kernel another open handle on the same native instance
// also configured stays loaded until that handle is closed too. Close waits
// for access like Acquire, so it must not be called while the caller holds a
// token. Calling Close twice returns ErrLibraryClosed.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLibraryClosed
	}
	l.closed = true
	l.mu.Unlock()

	if len(l.cfg.Kernels) == 0 {
		return nil
	}
	ctx := context.Background()
	if err := l.g.lock(ctx); err != nil {
		return err
	}
	t := &Token{g: l.g, lib: l}
	defer t.Release()

	// Any prepare has finished by now: it runs with the gate held.
	l.mu.Lock()
	loaded := l.loaded
	l.loaded = nil
	l.mu.Unlock()
	return l.release(ctx, t, loaded)
}
