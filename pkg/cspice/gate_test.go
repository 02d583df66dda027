package cspice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/sim"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/logging"
)

func newSim() backend.Library {
	return sim.New(sim.WithScreen(io.Discard))
}

func newTestLibrary(t *testing.T, cfg Config, native backend.Library) *Library {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	lib, err := NewLibrary(cfg, native)
	require.NoError(t, err)
	return lib
}

func TestAtMostOneHolder(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				err := lib.Do(context.Background(), func(ctx context.Context, tok *Token) error {
					n := active.Add(1)
					defer active.Add(-1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					_, err := ToolkitVersion(tok)
					return err
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())
}

func TestHandlesShareGate(t *testing.T) {
	native := newSim()
	a := newTestLibrary(t, Config{}, native)
	b := newTestLibrary(t, Config{}, native)

	tok, err := a.Acquire(context.Background())
	require.NoError(t, err)

	_, err = b.TryAcquire(context.Background())
	var aerr *AccessError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "try acquire", aerr.Op)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Panics(t, func() { b.MustTryAcquire(context.Background()) })

	tok.Release()
	tok2 := b.MustTryAcquire(context.Background())
	tok2.Release()
}

func TestAcquireHonoursContext(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	defer tok.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lib.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done, cancelDone := context.WithCancel(context.Background())
	cancelDone()
	_, err = lib.Acquire(done)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaiterProceedsAfterRelease(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)

	got := make(chan error, 1)
	go func() {
		got <- lib.Do(context.Background(), func(ctx context.Context, tok *Token) error {
			return CheckError(tok)
		})
	}()

	select {
	case err := <-got:
		t.Fatalf("waiter ran while the library was held: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	tok.Release()
	select {
	case err := <-got:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the library")
	}
}

func TestFIFOOrder(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)

	const n = 5
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lib.Do(context.Background(), func(context.Context, *Token) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Give each waiter time to queue before the next one starts.
		time.Sleep(10 * time.Millisecond)
	}
	tok.Release()
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestNestedAcquisition(t *testing.T) {
	native := newSim()
	lib := newTestLibrary(t, Config{}, native)
	other := newTestLibrary(t, Config{}, native)

	var inner *Token
	err := lib.Do(context.Background(), func(ctx context.Context, outer *Token) error {
		var err error
		inner, err = other.Acquire(ctx)
		require.NoError(t, err)
		require.NoError(t, CheckError(inner))

		tried, err := lib.TryAcquire(ctx)
		require.NoError(t, err)
		tried.Release()
		inner.Release()

		assert.False(t, inner.Valid())
		assert.True(t, outer.Valid())
		return CheckError(outer)
	})
	require.NoError(t, err)

	assert.ErrorIs(t, CheckError(inner), ErrTokenReleased)
	tok, err := lib.TryAcquire(context.Background())
	require.NoError(t, err)
	tok.Release()
}

func TestNestedTokenDiesWithRoot(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	root, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	nested, err := lib.Acquire(root.Context(context.Background()))
	require.NoError(t, err)

	root.Release()
	assert.False(t, nested.Valid())
	assert.ErrorIs(t, CheckError(nested), ErrTokenReleased)
}

func TestReleasedAndZeroTokens(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	tok.Release()
	tok.Release()

	for name, tk := range map[string]*Token{"released": tok, "nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			err := CheckError(tk)
			var aerr *AccessError
			require.ErrorAs(t, err, &aerr)
			assert.ErrorIs(t, err, ErrTokenReleased)
			_, err = ToolkitVersion(tk)
			assert.ErrorIs(t, err, ErrTokenReleased)
		})
	}
	var nilTok *Token
	nilTok.Release()
}

func TestOtherCallerRefusedWhileHeld(t *testing.T) {
	native := newSim()
	lib := newTestLibrary(t, Config{}, native)
	other := newTestLibrary(t, Config{}, native)

	err := lib.Do(context.Background(), func(ctx context.Context, tok *Token) error {
		errs := make(chan error, 4)
		go func() {
			_, err := lib.TryAcquire(context.Background())
			errs <- err
			_, err = other.TryAcquire(context.Background())
			errs <- err

			timeout, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err = lib.Acquire(timeout)
			errs <- err

			defer func() {
				err, _ := recover().(error)
				errs <- err
			}()
			other.MustTryAcquire(context.Background())
		}()

		assert.ErrorIs(t, <-errs, ErrBusy)
		assert.ErrorIs(t, <-errs, ErrBusy)
		assert.ErrorIs(t, <-errs, context.DeadlineExceeded)
		assert.ErrorIs(t, <-errs, ErrBusy)
		return CheckError(tok)
	})
	require.NoError(t, err)
}

func TestDelegatedCallsAreSerialized(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())

	var failures atomic.Int32
	err := lib.Do(context.Background(), func(ctx context.Context, tok *Token) error {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Half the workers acquire through the context, the rest
				// share the holder's token directly.
				worker := tok
				if i%2 == 0 {
					var err error
					if worker, err = lib.TryAcquire(ctx); err != nil {
						failures.Add(1)
						return
					}
					defer worker.Release()
				}
				for range 200 {
					if _, err := ToolkitVersion(worker); err != nil {
						failures.Add(1)
					}
				}
			}()
		}
		wg.Wait()
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, failures.Load())
}

func TestReleaseWaitsForCallInFlight(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	root, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	nested, err := lib.Acquire(root.Context(context.Background()))
	require.NoError(t, err)

	// Hold the call lock as a nested call in progress would.
	root.g.call.Lock()
	released := make(chan struct{})
	go func() {
		root.Release()
		close(released)
	}()
	select {
	case <-released:
		t.Fatal("root released during a nested call")
	case <-time.After(20 * time.Millisecond):
	}
	assert.True(t, nested.Valid())
	root.g.call.Unlock()

	<-released
	assert.False(t, nested.Valid())
	tok, err := lib.TryAcquire(context.Background())
	require.NoError(t, err)
	tok.Release()
}

func TestFirstAcquisitionInitializesErrorSubsystem(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	defer tok.Release()

	action, err := GetErrorAction(tok)
	require.NoError(t, err)
	assert.Equal(t, ActionReturn, action)
	device, err := GetErrorDevice(tok)
	require.NoError(t, err)
	assert.Equal(t, DeviceNull, device)
	assert.True(t, tok.g.ready.Load())
}

func TestConfiguredErrorAction(t *testing.T) {
	lib := newTestLibrary(t, Config{ErrorAction: ActionReturn, ErrorDevice: DeviceScreen}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	defer tok.Release()

	action, err := GetErrorAction(tok)
	require.NoError(t, err)
	assert.Equal(t, ActionReturn, action)
	device, err := GetErrorDevice(tok)
	require.NoError(t, err)
	assert.Equal(t, DeviceScreen, device)
}

func TestCheckErrorDrainsPendingError(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	tok, err := lib.Acquire(context.Background())
	require.NoError(t, err)
	defer tok.Release()

	tok.g.native.Furnsh([]byte("missing.bsp\x00"))
	err = CheckError(tok)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "SPICE(NOSUCHFILE)", serr.ShortMessage)
	assert.Equal(t, "No such file", serr.Explanation)
	assert.Contains(t, serr.LongMessage, "missing.bsp")
	assert.Equal(t, "furnsh_c --> FURNSH", serr.Traceback)
	assert.True(t, errors.Is(err, ErrNoSuchFile))
	assert.False(t, errors.Is(err, ErrNoLoadedFiles))

	assert.NoError(t, CheckError(tok))
}

func TestCloseUnloadsConfiguredKernels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.tk")
	require.NoError(t, os.WriteFile(path, []byte("\\begindata\nX = 1\n"), 0o644))

	native := newSim()
	lib := newTestLibrary(t, Config{Kernels: []string{path}}, native)
	observer := newTestLibrary(t, Config{}, native)

	err := lib.Do(context.Background(), func(ctx context.Context, tok *Token) error {
		ks, err := Kernels(tok)
		require.NoError(t, err)
		require.Len(t, ks, 1)
		assert.Equal(t, path, ks[0].File)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, lib.Close())
	assert.ErrorIs(t, lib.Close(), ErrLibraryClosed)
	_, err = lib.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrLibraryClosed)

	err = observer.Do(context.Background(), func(ctx context.Context, tok *Token) error {
		ks, err := Kernels(tok)
		require.NoError(t, err)
		assert.Empty(t, ks)
		return nil
	})
	require.NoError(t, err)
}

func TestSharedConfiguredKernelOutlivesFirstClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.tk")
	require.NoError(t, os.WriteFile(path, []byte("\\begindata\nX = 1\n"), 0o644))

	native := newSim()
	a := newTestLibrary(t, Config{Kernels: []string{path}}, native)
	b := newTestLibrary(t, Config{Kernels: []string{path}}, native)
	observer := newTestLibrary(t, Config{}, native)
	loaded := func() []KernelInfo {
		var ks []KernelInfo
		require.NoError(t, observer.Do(context.Background(), func(_ context.Context, tok *Token) error {
			var err error
			ks, err = Kernels(tok)
			return err
		}))
		return ks
	}

	for _, lib := range []*Library{a, b} {
		require.NoError(t, lib.Do(context.Background(), func(context.Context, *Token) error { return nil }))
	}
	require.Len(t, loaded(), 1)

	require.NoError(t, a.Close())
	require.Len(t, loaded(), 1)
	require.NoError(t, b.Close())
	assert.Empty(t, loaded())
}

func TestMintAfterCloseReleasesGate(t *testing.T) {
	lib := newTestLibrary(t, Config{}, newSim())
	require.NoError(t, lib.Close())

	// A caller that passed the closed check before Close ran.
	require.NoError(t, lib.g.lock(context.Background()))
	_, err := lib.mint(context.Background())
	assert.ErrorIs(t, err, ErrLibraryClosed)
	require.True(t, lib.g.tryLock())
	lib.g.unlock()
}

func TestConfiguredKernelFailureFailsAcquire(t *testing.T) {
	lib := newTestLibrary(t, Config{Kernels: []string{"/nonexistent/naif0012.tls"}}, newSim())
	_, err := lib.Acquire(context.Background())
	require.ErrorIs(t, err, ErrNoSuchFile)

	// The gate must have been released.
	_, err = lib.Acquire(context.Background())
	require.ErrorIs(t, err, ErrNoSuchFile)
}

func TestConfiguredKernelFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.New(slog.NewTextHandler(&buf, nil)))
	lib := newTestLibrary(t, Config{Kernels: []string{"/nonexistent/naif0012.tls"}, Logger: logger}, newSim())

	_, err := lib.Acquire(context.Background())
	require.ErrorIs(t, err, ErrNoSuchFile)
	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "configured kernel failed to load")
	assert.Contains(t, out, "backend=*sim.Sim")
	assert.Contains(t, out, "kernel=/nonexistent/naif0012.tls")
}

func TestNewLibraryRejectsInvalidConfig(t *testing.T) {
	_, err := NewLibrary(Config{ErrorAction: "EXPLODE"}, newSim())
	require.Error(t, err)
	_, err = NewLibrary(Config{}, nil)
	require.Error(t, err)

	// Only RETURN keeps native errors flowing back as values.
	for _, a := range []ErrorAction{ActionIgnore, ActionReport, ActionAbort, ActionDefault} {
		_, err := NewLibrary(Config{ErrorAction: a}, newSim())
		assert.Error(t, err, "action %s", a)
	}
}
