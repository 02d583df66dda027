// Package sim is an in-process stand-in for the CSPICE C library. It
// implements backend.Library in Go so the binding layer can be exercised
// without a native toolkit installed.
//
// The simulator reproduces the parts of CSPICE behaviour the binding depends
// on: the sticky error status with its ABORT, REPORT, RETURN and IGNORE
// actions, output devices and traceback; the kernel pool, including text
// kernels, meta-kernels and leapseconds data; the time subsystem; cells and
// windows; coordinate conversions and the body name table. Binary ephemeris
// files are recognised and registered but not read, so SPK and GF queries fail
// with the same diagnostics CSPICE gives when no usable data is loaded.
//
// Like the real library, a Sim keeps global mutable state and must not be
// entered concurrently. Unlike the real library it detects concurrent entry
// and panics, which turns a missing serialization in a caller into a test
// failure instead of a silent race.
package sim
