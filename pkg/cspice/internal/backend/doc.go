// Package backend hosts the thin cgo layer that links the Go API to the
// native CSPICE library. The real implementation lives behind the cspice build
// tag so that the rest of the repository compiles, and its tests run against
// the simulator, without a CSPICE installation.
//
// Nothing in this package is safe for concurrent use. CSPICE keeps its error
// status, kernel pool and caches in process-wide globals; callers reach a
// Library only through the access gate in package cspice.
package backend
