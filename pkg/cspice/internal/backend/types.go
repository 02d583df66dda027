package backend

import "errors"

// ErrNotBuilt reports that the native bindings were not linked into the
// current binary.
var ErrNotBuilt = errors.New("cspice/internal/backend: native bindings not built")

// Buffer sizes documented by SpiceZdf.h for the error subsystem, including the
// terminator.
const (
	ShortMsgLen   = 26
	ExplainMsgLen = 81
	LongMsgLen    = 1841
	TracebackLen  = 100 * (33 + 4)
)

// Output sizes used by the wrappers for routines whose maximum output length
// is documented per call site.
const (
	ErrorActionLen = 20
	ErrorDeviceLen = 255
	FileNameLen    = 256
	KernelTypeLen  = 33
	BodyNameLen    = 36
	VersionLen     = 80
	TimeDefLen     = 12
)

// CellCtrlSize is the number of control elements that precede the data of a
// cell (SPICE_CELL_CTRLSZ).
const CellCtrlSize = 6

// DataType mirrors SpiceCellDataType.
type DataType int32

const (
	Char   DataType = 0
	Double DataType = 1
	Int    DataType = 2
)

func (d DataType) String() string {
	switch d {
	case Char:
		return "CHR"
	case Double:
		return "DP"
	case Int:
		return "INT"
	default:
		return "UNKNOWN"
	}
}

// Cell is the Go-owned counterpart of a SpiceCell. The backing slices include
// the control area; element i lives at index CellCtrlSize+i (times Length for
// character cells). Exactly one of the slices is non-nil, selected by Type.
//
// The native layer only ever borrows a Cell for the duration of a single call
// and writes the header fields back before returning.
type Cell struct {
	Type   DataType
	Length int
	Size   int
	Card   int
	IsSet  bool
	Adjust bool
	Init   bool

	Doubles []float64
	Ints    []int32
	Chars   []byte
}

// NewCell allocates a cell of the given type holding up to size elements.
// length is the per-element byte length for character cells (terminator
// included) and is ignored otherwise.
func NewCell(t DataType, size, length int) *Cell {
	if size < 0 {
		size = 0
	}
	c := &Cell{Type: t, Size: size, IsSet: true}
	switch t {
	case Double:
		c.Doubles = make([]float64, CellCtrlSize+size)
	case Int:
		c.Ints = make([]int32, CellCtrlSize+size)
	case Char:
		if length < 1 {
			length = 1
		}
		c.Length = length
		c.Chars = make([]byte, (CellCtrlSize+size)*length)
	}
	return c
}

// DoubleData returns the data area of a double precision cell.
func (c *Cell) DoubleData() []float64 {
	return c.Doubles[CellCtrlSize:]
}

// IntData returns the data area of an integer cell.
func (c *Cell) IntData() []int32 {
	return c.Ints[CellCtrlSize:]
}

// CharElem returns the bytes of element i of a character cell, terminator
// slot included.
func (c *Cell) CharElem(i int) []byte {
	off := (CellCtrlSize + i) * c.Length
	return c.Chars[off : off+c.Length]
}

// GfsepArgs carries the scalar and string inputs of gfsep_c. String fields
// must be nul terminated.
type GfsepArgs struct {
	Targ1, Shape1, Frame1 []byte
	Targ2, Shape2, Frame2 []byte
	Abcorr, Obsrvr        []byte
	Relate                []byte
	Refval, Adjust, Step  float64
	Nintvls               int
}

// Library is the native call surface, one method per CSPICE routine. String
// inputs are nul-terminated byte slices; string outputs are caller-sized
// buffers the routine fills with a nul-terminated string, truncated to fit.
//
// Implementations never report errors through return values. Failures raise
// the library's sticky error status, which callers inspect with Failed and the
// message routines.
type Library interface {
	// Error subsystem.
	Failed() bool
	GetMsg(option, msg []byte)
	Qcktrc(trace []byte)
	Reset()
	Erract(op, action []byte)
	Errdev(op, device []byte)

	// Kernel pool.
	Furnsh(file []byte)
	Unload(file []byte)
	Kclear()
	Ktotal(kind []byte) int
	Kdata(which int, kind, file, filtyp, srcfil []byte) (handle int, found bool)
	Tkvrsn(item, out []byte)

	// Time.
	Str2et(str []byte) float64
	Timout(et float64, pictur, out []byte)
	Timdef(action, item, value []byte)
	Unitim(epoch float64, insys, outsys []byte) float64

	// Ephemeris and bodies.
	Spkpos(targ []byte, et float64, ref, abcorr, obs []byte) (pos [3]float64, lt float64)
	Spkezr(targ []byte, et float64, ref, abcorr, obs []byte) (state [6]float64, lt float64)
	Spkez(targ int, et float64, ref, abcorr []byte, obs int) (state [6]float64, lt float64)
	Spkezp(targ int, et float64, ref, abcorr []byte, obs int) (pos [3]float64, lt float64)
	Bodn2c(name []byte) (code int, found bool)
	Bodc2n(code int, name []byte) bool

	// Coordinates and vectors.
	Reclat(rect [3]float64) (radius, lon, lat float64)
	Latrec(radius, lon, lat float64) [3]float64
	Recrad(rect [3]float64) (rng, ra, dec float64)
	Radrec(rng, ra, dec float64) [3]float64
	Recazl(rect [3]float64, azccw, elplsz bool) (rng, az, el float64)
	Azlrec(rng, az, el float64, azccw, elplsz bool) [3]float64
	Vsep(a, b [3]float64) float64

	// Cells.
	Card(c *Cell) int
	Size(c *Cell) int
	Scard(card int, c *Cell)
	Copy(src, dst *Cell)
	Appndd(item float64, c *Cell)
	Appndi(item int32, c *Cell)
	Appndc(item []byte, c *Cell)

	// Windows.
	Wncard(w *Cell) int
	Wncomd(left, right float64, w, result *Cell)
	Wncond(left, right float64, w *Cell)
	Wndifd(a, b, c *Cell)
	Wnelmd(point float64, w *Cell) bool
	Wnexpd(left, right float64, w *Cell)
	Wnextd(side byte, w *Cell)
	Wnfetd(w *Cell, n int) (left, right float64)
	Wnfild(small float64, w *Cell)
	Wnfltd(small float64, w *Cell)
	Wnincd(left, right float64, w *Cell) bool
	Wninsd(left, right float64, w *Cell)
	Wnintd(a, b, c *Cell)
	Wnreld(a *Cell, op []byte, b *Cell) bool
	Wnsumd(w *Cell) (meas, avg, stddev float64, idxsml, idxlon int)
	Wnunid(a, b, c *Cell)
	Wnvald(size, n int, w *Cell)

	// Geometry finder.
	Gfsep(args *GfsepArgs, cnfine, result *Cell)
}
