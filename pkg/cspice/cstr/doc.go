// Package cstr converts between Go strings and the nul-terminated character
// buffers exchanged with the CSPICE C API.
//
// Input strings are copied once into an owned Buffer that carries its own
// terminator. Call sites that pass the same string repeatedly (a kernel path,
// a reference frame name) can build the Buffer once and hand it to any wrapper
// that accepts a Text value; the wrapper borrows it without copying.
//
// Output strings are written by the native library into buffers sized by the
// caller, normally to the documented maximum for that routine. FromBuffer
// reads such a buffer up to its first nul byte and panics if there is none,
// since that means the native side broke its contract. Decode is the
// non-panicking variant used where a failure must never escalate, such as when
// reading error messages.
//
// # Usage
//
//	frame := cstr.MustNew("J2000")
//	for _, et := range epochs {
//	    pos, lt, err := cspice.SPKPosition(tok, "MOON", et, frame, cspice.AbCorrLT, "EARTH")
//	    ...
//	}
package cstr
