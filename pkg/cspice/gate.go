package cspice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/logging"
)

// gate serializes access to one native library instance. sem has capacity
// one; holding its slot is holding the library. Blocked senders on a channel
// are queued in arrival order, so waiters are served FIFO.
type gate struct {
	native backend.Library
	sem    chan struct{}

	// ready is set once the error subsystem has been configured. It is only
	// written while the slot is held.
	ready atomic.Bool

	// call is held for the duration of each native call. The holder of sem
	// may delegate its access to other goroutines through a context; call
	// keeps their calls from overlapping.
	call sync.Mutex

	// configured counts, per kernel path, the handles that furnished it
	// from their configuration. It is only touched while sem is held.
	configured map[string]int
}

var (
	gatesMu sync.Mutex
	gates   = map[backend.Library]*gate{}
)

// gateFor returns the process-wide gate of lib, creating it on first use.
func gateFor(lib backend.Library) *gate {
	gatesMu.Lock()
	defer gatesMu.Unlock()
	g, ok := gates[lib]
	if !ok {
		g = &gate{native: lib, sem: make(chan struct{}, 1), configured: map[string]int{}}
		gates[lib] = g
	}
	return g
}

func (g *gate) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) tryLock() bool {
	select {
	case g.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (g *gate) unlock() { <-g.sem }

// initialize switches the native error subsystem from its abort-on-error
// default to the configured action and device. It runs inside the critical
// section of the first token minted on g; a failure leaves ready unset so the
// next acquisition retries.
func (g *gate) initialize(ctx context.Context, t *Token, cfg Config, log logging.Logger) error {
	if g.ready.Load() {
		return nil
	}
	action, device := cfg.errorAction(), cfg.errorDevice()
	if err := SetErrorAction(t, action); err != nil {
		return fmt.Errorf("cspice: set error action %s: %w", action, err)
	}
	if err := SetErrorDevice(t, device); err != nil {
		return fmt.Errorf("cspice: set error device %s: %w", device, err)
	}
	g.ready.Store(true)
	log.Debug(ctx, "cspice: error subsystem initialized", "action", string(action), "device", string(device))
	return nil
}
