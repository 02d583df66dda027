// Package cspice is a memory-safe binding over the NAIF CSPICE toolkit.
//
// CSPICE keeps global state and is not reentrant, so every native call goes
// through a *Token obtained from a Library:
//
//	lib, err := cspice.Open(cspice.Config{Kernels: []string{"naif0012.tls"}})
//	if err != nil {
//		return err
//	}
//	defer lib.Close()
//
//	err = lib.Do(ctx, func(ctx context.Context, t *cspice.Token) error {
//		et, err := cspice.StrToEt(t, "2000-01-01T12:00:00")
//		...
//	})
//
// Any goroutine may acquire the library. Acquisitions are served one at a
// time in arrival order; Acquire waits, TryAcquire fails with ErrBusy. Code
// that already holds a token and calls into a helper which acquires again
// should pass the context returned by Token.Context (Do does this): the
// helper then gets a nested token instead of deadlocking. Goroutines started
// with that context share the holder's access, and their native calls are
// run one at a time.
//
// The first acquisition on a process switches the toolkit's error action
// from ABORT to RETURN, so native failures come back as *Error values instead
// of terminating the process. Every wrapper checks and clears the toolkit's
// error status before giving up access.
//
// Binaries built without cgo or without the cspice build tag still compile;
// Open then returns ErrNotBuilt.
package cspice
