package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// ToolkitVersion is the version string reported for the TOOLKIT item.
const ToolkitVersion = "CSPICE_N0067"

// Error actions understood by erract.
const (
	ActionAbort   = "ABORT"
	ActionIgnore  = "IGNORE"
	ActionReport  = "REPORT"
	ActionReturn  = "RETURN"
	ActionDefault = "DEFAULT"
)

// Reserved error device names.
const (
	DeviceScreen = "SCREEN"
	DeviceNull   = "NULL"
)

// Abort is the panic value raised when an error is signalled while the error
// action is ABORT or DEFAULT. The native library terminates the process in
// that situation.
type Abort struct {
	Short string
	Long  string
}

func (a *Abort) Error() string {
	return fmt.Sprintf("sim: abort on %s: %s", a.Short, a.Long)
}

// Option configures a Sim.
type Option func(*Sim)

// WithScreen sets the writer used for the SCREEN error device. The default is
// os.Stdout.
func WithScreen(w io.Writer) Option {
	return func(s *Sim) { s.screen = w }
}

// Sim is a single simulated CSPICE instance. The zero value is not usable;
// call New.
type Sim struct {
	busy   atomic.Bool
	screen io.Writer

	action  string
	device  string
	failed  bool
	short   string
	long    string
	trace   string
	modules []string

	kernels    []*kernel
	nextHandle int

	calendar string
	system   string
}

var _ backend.Library = (*Sim)(nil)

// New returns a simulator in the state of a freshly started process: error
// action ABORT, error device SCREEN, empty kernel pool.
func New(opts ...Option) *Sim {
	s := &Sim{
		screen:   os.Stdout,
		action:   ActionAbort,
		device:   DeviceScreen,
		calendar: "GREGORIAN",
		system:   "UTC",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// enter marks the start of a native call and returns the function that marks
// its end. Overlapping calls panic.
func (s *Sim) enter(module string) func() {
	if !s.busy.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("sim: %s entered while another call is in progress", module))
	}
	s.modules = append(s.modules[:0], module)
	return func() {
		s.modules = s.modules[:0]
		s.busy.Store(false)
	}
}

// chkin pushes a module onto the traceback stack and returns its chkout.
func (s *Sim) chkin(module string) func() {
	s.modules = append(s.modules, module)
	n := len(s.modules) - 1
	return func() { s.modules = s.modules[:n] }
}

// returning reports whether routines should return immediately, as
// return_c does in RETURN mode once an error has been signalled.
func (s *Sim) returning() bool {
	return s.failed && s.action == ActionReturn
}

// signal raises an error the way sigerr_c does.
func (s *Sim) signal(short, long string, args ...any) {
	if s.action == ActionIgnore {
		return
	}
	if len(args) > 0 {
		long = fmt.Sprintf(long, args...)
	}
	if !s.failed {
		s.short = short
		s.long = long
		s.trace = strings.Join(s.modules, " --> ")
		s.failed = true
		s.report()
	}
	if s.action == ActionAbort || s.action == ActionDefault {
		panic(&Abort{Short: short, Long: long})
	}
}

func (s *Sim) report() {
	var w io.Writer
	switch s.device {
	case DeviceNull:
		return
	case DeviceScreen:
		w = s.screen
	default:
		f, err := os.OpenFile(s.device, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		w = f
	}
	bar := strings.Repeat("=", 76)
	fmt.Fprintf(w, "\n%s\n\nToolkit version: %s\n\n%s --\n%s\n\n%s\n\nA traceback follows.  The name of the highest level module is first.\n%s\n\n%s\n",
		bar, strings.TrimPrefix(ToolkitVersion, "CSPICE_"), s.short, explain(s.short), s.long, s.trace, bar)
}

func (s *Sim) Failed() bool {
	defer s.enter("failed_c")()
	return s.failed
}

func (s *Sim) GetMsg(option, msg []byte) {
	defer s.enter("getmsg_c")()
	switch strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(option))) {
	case "SHORT":
		cstr.Put(msg, s.short)
	case "EXPLAIN":
		cstr.Put(msg, explain(s.short))
	case "LONG":
		cstr.Put(msg, s.long)
	default:
		s.signal("SPICE(INVALIDMSGTYPE)", "The requested message type '%s' is not one of SHORT, EXPLAIN or LONG.", cstr.FromBuffer(option))
	}
}

func (s *Sim) Qcktrc(trace []byte) {
	defer s.enter("qcktrc_c")()
	if s.failed {
		cstr.Put(trace, s.trace)
		return
	}
	cstr.Put(trace, "")
}

func (s *Sim) Reset() {
	defer s.enter("reset_c")()
	s.failed = false
	s.short = ""
	s.long = ""
	s.trace = ""
}

func (s *Sim) Erract(op, action []byte) {
	defer s.enter("erract_c")()
	switch strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(op))) {
	case "GET":
		cstr.Put(action, s.action)
	case "SET":
		a := strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(action)))
		switch a {
		case ActionAbort, ActionIgnore, ActionReport, ActionReturn, ActionDefault:
			s.action = a
		default:
			s.signal("SPICE(INVALIDACTION)", "An invalid error action '%s' was supplied.", a)
		}
	default:
		s.signal("SPICE(INVALIDOPERATION)", "Operation '%s' is not recognized; valid operations are GET and SET.", cstr.FromBuffer(op))
	}
}

func (s *Sim) Errdev(op, device []byte) {
	defer s.enter("errdev_c")()
	switch strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(op))) {
	case "GET":
		cstr.Put(device, s.device)
	case "SET":
		d := strings.TrimSpace(cstr.FromBuffer(device))
		switch u := strings.ToUpper(d); {
		case d == "":
			s.signal("SPICE(BLANKFILENAME)", "The error output device name is blank.")
		case u == DeviceScreen || u == DeviceNull:
			s.device = u
		default:
			s.device = d
		}
	default:
		s.signal("SPICE(INVALIDOPERATION)", "Operation '%s' is not recognized; valid operations are GET and SET.", cstr.FromBuffer(op))
	}
}

var explanations = map[string]string{
	"SPICE(BADENDPOINTS)":       "Endpoints are out of order",
	"SPICE(BADTIMESTRING)":      "Time string could not be parsed",
	"SPICE(BLANKFILENAME)":      "An input filename consisted of blanks",
	"SPICE(CELLTOOSMALL)":       "Cell too small to hold output",
	"SPICE(IDCODENOTFOUND)":     "ID code not found",
	"SPICE(INVALIDACTION)":      "Invalid action value",
	"SPICE(INVALIDCARDINALITY)": "Invalid cardinality value",
	"SPICE(INVALIDOPERATION)":   "Invalid operation value",
	"SPICE(INVALIDSTEP)":        "Invalid step size",
	"SPICE(NOLEAPSECONDS)":      "Leapseconds kernel not loaded",
	"SPICE(NOLOADEDFILES)":      "No files are currently loaded",
	"SPICE(NOSUCHFILE)":         "No such file",
	"SPICE(SPKINSUFFDATA)":      "Insufficient ephemeris data available",
	"SPICE(TYPEMISMATCH)":       "Data type mismatch",
	"SPICE(UNKNOWNFRAME)":       "Reference frame not recognized",
	"SPICE(UNPARSEDTIME)":       "Time string could not be parsed",
	"SPICE(WINDOWEXCESS)":       "Window would exceed its size",
}

func explain(short string) string {
	return explanations[short]
}
