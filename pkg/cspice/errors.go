package cspice

import (
	"errors"
	"fmt"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

var (
	// ErrBusy is returned by the non-blocking acquisition functions when
	// another caller holds the library.
	ErrBusy = errors.New("cspice: library is held by another caller")

	// ErrTokenReleased is returned when a token is used after Release, or a
	// nested token after its root was released.
	ErrTokenReleased = errors.New("cspice: access token has been released")

	// ErrLibraryClosed is returned by operations on a closed Library.
	ErrLibraryClosed = errors.New("cspice: library closed")

	// ErrNotBuilt indicates the binary was built without cgo or without the
	// cspice build tag.
	ErrNotBuilt = backend.ErrNotBuilt
)

// AccessError reports a failure to obtain or use serialized access to the
// native library. Err is one of the sentinel errors above or a context error.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// Error is a failure reported by the native library. The fields are copied
// verbatim from the toolkit's error subsystem.
type Error struct {
	// ShortMessage is the error tag, for example "SPICE(NOSUCHFILE)".
	ShortMessage string
	// Explanation is the toolkit's one-line expansion of the tag.
	Explanation string
	// LongMessage describes the specific failure.
	LongMessage string
	// Traceback lists the active toolkit modules when the error was
	// signalled, outermost first.
	Traceback string
}

func (e *Error) Error() string {
	if e.LongMessage == "" {
		return e.ShortMessage
	}
	return e.ShortMessage + ": " + e.LongMessage
}

// Is matches errors by short message, so errors.Is(err, ErrNoSuchFile) holds
// for any "SPICE(NOSUCHFILE)" failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.ShortMessage == e.ShortMessage
}

// Well-known toolkit error tags, for use with errors.Is.
var (
	ErrNoSuchFile         = &Error{ShortMessage: "SPICE(NOSUCHFILE)"}
	ErrBlankFileName      = &Error{ShortMessage: "SPICE(BLANKFILENAME)"}
	ErrUnknownKernelType  = &Error{ShortMessage: "SPICE(UNKNOWNKERNELTYPE)"}
	ErrNoLoadedFiles      = &Error{ShortMessage: "SPICE(NOLOADEDFILES)"}
	ErrNoLeapSeconds      = &Error{ShortMessage: "SPICE(NOLEAPSECONDS)"}
	ErrMissingTimeInfo    = &Error{ShortMessage: "SPICE(MISSINGTIMEINFO)"}
	ErrUnparsedTime       = &Error{ShortMessage: "SPICE(UNPARSEDTIME)"}
	ErrIDCodeNotFound     = &Error{ShortMessage: "SPICE(IDCODENOTFOUND)"}
	ErrUnknownFrame       = &Error{ShortMessage: "SPICE(UNKNOWNFRAME)"}
	ErrSPKInsuffData      = &Error{ShortMessage: "SPICE(SPKINSUFFDATA)"}
	ErrInvalidOption      = &Error{ShortMessage: "SPICE(INVALIDOPTION)"}
	ErrInvalidAction      = &Error{ShortMessage: "SPICE(INVALIDACTION)"}
	ErrInvalidOperation   = &Error{ShortMessage: "SPICE(INVALIDOPERATION)"}
	ErrInvalidCardinality = &Error{ShortMessage: "SPICE(INVALIDCARDINALITY)"}
	ErrCellTooSmall       = &Error{ShortMessage: "SPICE(CELLTOOSMALL)"}
	ErrTypeMismatch       = &Error{ShortMessage: "SPICE(TYPEMISMATCH)"}
	ErrBadEndpoints       = &Error{ShortMessage: "SPICE(BADENDPOINTS)"}
	ErrWindowExcess       = &Error{ShortMessage: "SPICE(WINDOWEXCESS)"}
	ErrNoInterval         = &Error{ShortMessage: "SPICE(NOINTERVAL)"}
	ErrInvalidStep        = &Error{ShortMessage: "SPICE(INVALIDSTEP)"}
)

var (
	optShort   = cstr.MustNew("SHORT")
	optExplain = cstr.MustNew("EXPLAIN")
	optLong    = cstr.MustNew("LONG")
)

// CheckError reports and clears the native error status. It returns nil
// without further native calls when no error is pending. Every wrapper in
// this package already does this before returning; CheckError is for callers
// that need to confirm a clean state explicitly.
func CheckError(t *Token) error {
	return t.call("CheckError", func(backend.Library) error { return nil })
}

// checkAndClear turns the sticky native error status into an *Error and
// resets it. The reset runs even if decoding a message panics.
func checkAndClear(lib backend.Library) error {
	if !lib.Failed() {
		return nil
	}
	defer lib.Reset()

	short := cstr.Output(backend.ShortMsgLen)
	explain := cstr.Output(backend.ExplainMsgLen)
	long := cstr.Output(backend.LongMsgLen)
	trace := cstr.Output(backend.TracebackLen)
	lib.GetMsg(optShort.Bytes(), short)
	lib.GetMsg(optExplain.Bytes(), explain)
	lib.GetMsg(optLong.Bytes(), long)
	lib.Qcktrc(trace)

	return &Error{
		ShortMessage: decode(short),
		Explanation:  decode(explain),
		LongMessage:  decode(long),
		Traceback:    decode(trace),
	}
}

// decode never fails: a missing terminator yields the whole buffer.
func decode(b []byte) string {
	s, _ := cstr.Decode(b)
	return s
}
