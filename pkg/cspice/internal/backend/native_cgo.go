//go:build cgo && cspice

package backend

/*
#cgo CFLAGS: -Wno-parentheses
#cgo darwin CFLAGS: -I/usr/local/opt/cspice/include
#cgo darwin LDFLAGS: -L/usr/local/opt/cspice/lib
#cgo linux CFLAGS: -I/usr/local/include/cspice
#cgo linux LDFLAGS: -L/usr/local/lib
#cgo LDFLAGS: -lcspice -lm
#include <stdio.h>
#include <stdlib.h>
#include "SpiceUsr.h"

static int go_failed(void) { return failed_c() ? 1 : 0; }
static void go_getmsg(const char *option, int lenout, char *msg) { getmsg_c(option, lenout, msg); }
static void go_qcktrc(int lenout, char *trace) { qcktrc_c(lenout, trace); }
static void go_erract(const char *op, int lenout, char *action) { erract_c(op, lenout, action); }
static void go_errdev(const char *op, int lenout, char *device) { errdev_c(op, lenout, device); }

static void go_furnsh(const char *file) { furnsh_c(file); }
static void go_unload(const char *file) { unload_c(file); }
static int go_ktotal(const char *kind) {
	SpiceInt n = 0;
	ktotal_c(kind, &n);
	return (int)n;
}
static int go_kdata(int which, const char *kind,
                    int fillen, char *file, int typlen, char *filtyp,
                    int srclen, char *srcfil, int *handle) {
	SpiceInt h = 0;
	SpiceBoolean found = 0;
	kdata_c(which, kind, fillen, typlen, srclen, file, filtyp, srcfil, &h, &found);
	*handle = (int)h;
	return found ? 1 : 0;
}
static void go_tkvrsn(const char *item, int lenout, char *out) {
	snprintf(out, (size_t)lenout, "%s", tkvrsn_c(item));
}

static double go_str2et(const char *str) {
	SpiceDouble et = 0.0;
	str2et_c(str, &et);
	return et;
}
static void go_timout(double et, const char *pictur, int lenout, char *out) { timout_c(et, pictur, lenout, out); }
static void go_timdef(const char *action, const char *item, int lenout, char *value) { timdef_c(action, item, lenout, value); }
static double go_unitim(double epoch, const char *insys, const char *outsys) { return unitim_c(epoch, insys, outsys); }

static double go_spkpos(const char *targ, double et, const char *ref, const char *abcorr, const char *obs, double *ptarg) {
	SpiceDouble lt = 0.0;
	spkpos_c(targ, et, ref, abcorr, obs, ptarg, &lt);
	return lt;
}
static double go_spkezr(const char *targ, double et, const char *ref, const char *abcorr, const char *obs, double *starg) {
	SpiceDouble lt = 0.0;
	spkezr_c(targ, et, ref, abcorr, obs, starg, &lt);
	return lt;
}
static double go_spkez(int targ, double et, const char *ref, const char *abcorr, int obs, double *starg) {
	SpiceDouble lt = 0.0;
	spkez_c(targ, et, ref, abcorr, obs, starg, &lt);
	return lt;
}
static double go_spkezp(int targ, double et, const char *ref, const char *abcorr, int obs, double *ptarg) {
	SpiceDouble lt = 0.0;
	spkezp_c(targ, et, ref, abcorr, obs, ptarg, &lt);
	return lt;
}
static int go_bodn2c(const char *name, int *code) {
	SpiceInt c = 0;
	SpiceBoolean found = 0;
	bodn2c_c(name, &c, &found);
	*code = (int)c;
	return found ? 1 : 0;
}
static int go_bodc2n(int code, int lenout, char *name) {
	SpiceBoolean found = 0;
	bodc2n_c(code, lenout, name, &found);
	return found ? 1 : 0;
}

static void go_reclat(const double *r, double *radius, double *lon, double *lat) { reclat_c(r, radius, lon, lat); }
static void go_latrec(double radius, double lon, double lat, double *r) { latrec_c(radius, lon, lat, r); }
static void go_recrad(const double *r, double *range, double *ra, double *dec) { recrad_c(r, range, ra, dec); }
static void go_radrec(double range, double ra, double dec, double *r) { radrec_c(range, ra, dec, r); }
static void go_recazl(const double *r, int azccw, int elplsz, double *range, double *az, double *el) {
	recazl_c(r, azccw, elplsz, range, az, el);
}
static void go_azlrec(double range, double az, double el, int azccw, int elplsz, double *r) {
	azlrec_c(range, az, el, azccw, elplsz, r);
}
static double go_vsep(const double *a, const double *b) { return vsep_c(a, b); }

static void go_appndc(const char *item, SpiceCell *cell) { appndc_c(item, cell); }
static int go_wnreld(SpiceCell *a, const char *op, SpiceCell *b) { return wnreld_c(a, op, b) ? 1 : 0; }
static void go_wnfetd(SpiceCell *w, int n, double *left, double *right) { wnfetd_c(w, n, left, right); }
static void go_wnsumd(SpiceCell *w, double *meas, double *avg, double *stddev, int *idxsml, int *idxlon) {
	SpiceInt sml = 0, lon = 0;
	wnsumd_c(w, meas, avg, stddev, &sml, &lon);
	*idxsml = (int)sml;
	*idxlon = (int)lon;
}
static void go_gfsep(const char *targ1, const char *shape1, const char *frame1,
                     const char *targ2, const char *shape2, const char *frame2,
                     const char *abcorr, const char *obsrvr, const char *relate,
                     double refval, double adjust, double step, int nintvls,
                     SpiceCell *cnfine, SpiceCell *result) {
	gfsep_c(targ1, shape1, frame1, targ2, shape2, frame2, abcorr, obsrvr, relate,
	        refval, adjust, step, nintvls, cnfine, result);
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

func init() {
	// Int cells are backed by []int32.
	if unsafe.Sizeof(C.SpiceInt(0)) != 4 {
		panic("cspice/internal/backend: SpiceInt is not 32 bits; rebuild CSPICE for a 32-bit SpiceInt")
	}
}

type native struct{}

// Native returns the CSPICE library linked into this binary. Every call
// returns the same process-wide instance.
func Native() (Library, error) {
	return native{}, nil
}

// cs borrows a nul-terminated Go byte slice as a C string for the duration of
// one call. The slice holds no Go pointers, so no pinning is needed.
func cs(b []byte) *C.char {
	return (*C.char)(unsafe.Pointer(&b[0]))
}

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func (native) Failed() bool { return C.go_failed() != 0 }

func (native) GetMsg(option, msg []byte) {
	C.go_getmsg(cs(option), C.int(len(msg)), cs(msg))
}

func (native) Qcktrc(trace []byte) {
	C.go_qcktrc(C.int(len(trace)), cs(trace))
}

func (native) Reset() { C.reset_c() }

func (native) Erract(op, action []byte) {
	C.go_erract(cs(op), C.int(len(action)), cs(action))
}

func (native) Errdev(op, device []byte) {
	C.go_errdev(cs(op), C.int(len(device)), cs(device))
}

func (native) Furnsh(file []byte) { C.go_furnsh(cs(file)) }

func (native) Unload(file []byte) { C.go_unload(cs(file)) }

func (native) Kclear() { C.kclear_c() }

func (native) Ktotal(kind []byte) int { return int(C.go_ktotal(cs(kind))) }

func (native) Kdata(which int, kind, file, filtyp, srcfil []byte) (int, bool) {
	var handle C.int
	found := C.go_kdata(C.int(which), cs(kind),
		C.int(len(file)), cs(file),
		C.int(len(filtyp)), cs(filtyp),
		C.int(len(srcfil)), cs(srcfil),
		&handle)
	return int(handle), found != 0
}

func (native) Tkvrsn(item, out []byte) {
	C.go_tkvrsn(cs(item), C.int(len(out)), cs(out))
}

func (native) Str2et(str []byte) float64 { return float64(C.go_str2et(cs(str))) }

func (native) Timout(et float64, pictur, out []byte) {
	C.go_timout(C.double(et), cs(pictur), C.int(len(out)), cs(out))
}

func (native) Timdef(action, item, value []byte) {
	C.go_timdef(cs(action), cs(item), C.int(len(value)), cs(value))
}

func (native) Unitim(epoch float64, insys, outsys []byte) float64 {
	return float64(C.go_unitim(C.double(epoch), cs(insys), cs(outsys)))
}

func (native) Spkpos(targ []byte, et float64, ref, abcorr, obs []byte) ([3]float64, float64) {
	var pos [3]C.double
	lt := C.go_spkpos(cs(targ), C.double(et), cs(ref), cs(abcorr), cs(obs), &pos[0])
	return vec3(pos), float64(lt)
}

func (native) Spkezr(targ []byte, et float64, ref, abcorr, obs []byte) ([6]float64, float64) {
	var state [6]C.double
	lt := C.go_spkezr(cs(targ), C.double(et), cs(ref), cs(abcorr), cs(obs), &state[0])
	return vec6(state), float64(lt)
}

func (native) Spkez(targ int, et float64, ref, abcorr []byte, obs int) ([6]float64, float64) {
	var state [6]C.double
	lt := C.go_spkez(C.int(targ), C.double(et), cs(ref), cs(abcorr), C.int(obs), &state[0])
	return vec6(state), float64(lt)
}

func (native) Spkezp(targ int, et float64, ref, abcorr []byte, obs int) ([3]float64, float64) {
	var pos [3]C.double
	lt := C.go_spkezp(C.int(targ), C.double(et), cs(ref), cs(abcorr), C.int(obs), &pos[0])
	return vec3(pos), float64(lt)
}

func (native) Bodn2c(name []byte) (int, bool) {
	var code C.int
	found := C.go_bodn2c(cs(name), &code)
	return int(code), found != 0
}

func (native) Bodc2n(code int, name []byte) bool {
	return C.go_bodc2n(C.int(code), C.int(len(name)), cs(name)) != 0
}

func (native) Reclat(rect [3]float64) (float64, float64, float64) {
	r := cvec3(rect)
	var radius, lon, lat C.double
	C.go_reclat(&r[0], &radius, &lon, &lat)
	return float64(radius), float64(lon), float64(lat)
}

func (native) Latrec(radius, lon, lat float64) [3]float64 {
	var r [3]C.double
	C.go_latrec(C.double(radius), C.double(lon), C.double(lat), &r[0])
	return vec3(r)
}

func (native) Recrad(rect [3]float64) (float64, float64, float64) {
	r := cvec3(rect)
	var rng, ra, dec C.double
	C.go_recrad(&r[0], &rng, &ra, &dec)
	return float64(rng), float64(ra), float64(dec)
}

func (native) Radrec(rng, ra, dec float64) [3]float64 {
	var r [3]C.double
	C.go_radrec(C.double(rng), C.double(ra), C.double(dec), &r[0])
	return vec3(r)
}

func (native) Recazl(rect [3]float64, azccw, elplsz bool) (float64, float64, float64) {
	r := cvec3(rect)
	var rng, az, el C.double
	C.go_recazl(&r[0], cbool(azccw), cbool(elplsz), &rng, &az, &el)
	return float64(rng), float64(az), float64(el)
}

func (native) Azlrec(rng, az, el float64, azccw, elplsz bool) [3]float64 {
	var r [3]C.double
	C.go_azlrec(C.double(rng), C.double(az), C.double(el), cbool(azccw), cbool(elplsz), &r[0])
	return vec3(r)
}

func (native) Vsep(a, b [3]float64) float64 {
	ca, cb := cvec3(a), cvec3(b)
	return float64(C.go_vsep(&ca[0], &cb[0]))
}

func (native) Card(c *Cell) (n int) {
	withCells(func(p []*C.SpiceCell) { n = int(C.card_c(p[0])) }, c)
	return n
}

func (native) Size(c *Cell) (n int) {
	withCells(func(p []*C.SpiceCell) { n = int(C.size_c(p[0])) }, c)
	return n
}

func (native) Scard(card int, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.scard_c(C.SpiceInt(card), p[0]) }, c)
}

func (native) Copy(src, dst *Cell) {
	withCells(func(p []*C.SpiceCell) { C.copy_c(p[0], p[1]) }, src, dst)
}

func (native) Appndd(item float64, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.appndd_c(C.SpiceDouble(item), p[0]) }, c)
}

func (native) Appndi(item int32, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.appndi_c(C.SpiceInt(item), p[0]) }, c)
}

func (native) Appndc(item []byte, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.go_appndc(cs(item), p[0]) }, c)
}

func (native) Wncard(w *Cell) (n int) {
	withCells(func(p []*C.SpiceCell) { n = int(C.wncard_c(p[0])) }, w)
	return n
}

func (native) Wncomd(left, right float64, w, result *Cell) {
	withCells(func(p []*C.SpiceCell) {
		C.wncomd_c(C.SpiceDouble(left), C.SpiceDouble(right), p[0], p[1])
	}, w, result)
}

func (native) Wncond(left, right float64, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wncond_c(C.SpiceDouble(left), C.SpiceDouble(right), p[0]) }, w)
}

func (native) Wndifd(a, b, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wndifd_c(p[0], p[1], p[2]) }, a, b, c)
}

func (native) Wnelmd(point float64, w *Cell) (in bool) {
	withCells(func(p []*C.SpiceCell) { in = C.wnelmd_c(C.SpiceDouble(point), p[0]) != 0 }, w)
	return in
}

func (native) Wnexpd(left, right float64, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnexpd_c(C.SpiceDouble(left), C.SpiceDouble(right), p[0]) }, w)
}

func (native) Wnextd(side byte, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnextd_c(C.SpiceChar(side), p[0]) }, w)
}

func (native) Wnfetd(w *Cell, n int) (float64, float64) {
	var left, right C.double
	withCells(func(p []*C.SpiceCell) { C.go_wnfetd(p[0], C.int(n), &left, &right) }, w)
	return float64(left), float64(right)
}

func (native) Wnfild(small float64, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnfild_c(C.SpiceDouble(small), p[0]) }, w)
}

func (native) Wnfltd(small float64, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnfltd_c(C.SpiceDouble(small), p[0]) }, w)
}

func (native) Wnincd(left, right float64, w *Cell) (in bool) {
	withCells(func(p []*C.SpiceCell) {
		in = C.wnincd_c(C.SpiceDouble(left), C.SpiceDouble(right), p[0]) != 0
	}, w)
	return in
}

func (native) Wninsd(left, right float64, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wninsd_c(C.SpiceDouble(left), C.SpiceDouble(right), p[0]) }, w)
}

func (native) Wnintd(a, b, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnintd_c(p[0], p[1], p[2]) }, a, b, c)
}

func (native) Wnreld(a *Cell, op []byte, b *Cell) (ok bool) {
	withCells(func(p []*C.SpiceCell) { ok = C.go_wnreld(p[0], cs(op), p[1]) != 0 }, a, b)
	return ok
}

func (native) Wnsumd(w *Cell) (meas, avg, stddev float64, idxsml, idxlon int) {
	var cm, ca, csd C.double
	var sml, lon C.int
	withCells(func(p []*C.SpiceCell) { C.go_wnsumd(p[0], &cm, &ca, &csd, &sml, &lon) }, w)
	return float64(cm), float64(ca), float64(csd), int(sml), int(lon)
}

func (native) Wnunid(a, b, c *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnunid_c(p[0], p[1], p[2]) }, a, b, c)
}

func (native) Wnvald(size, n int, w *Cell) {
	withCells(func(p []*C.SpiceCell) { C.wnvald_c(C.SpiceInt(size), C.SpiceInt(n), p[0]) }, w)
}

func (native) Gfsep(a *GfsepArgs, cnfine, result *Cell) {
	withCells(func(p []*C.SpiceCell) {
		C.go_gfsep(cs(a.Targ1), cs(a.Shape1), cs(a.Frame1),
			cs(a.Targ2), cs(a.Shape2), cs(a.Frame2),
			cs(a.Abcorr), cs(a.Obsrvr), cs(a.Relate),
			C.double(a.Refval), C.double(a.Adjust), C.double(a.Step), C.int(a.Nintvls),
			p[0], p[1])
	}, cnfine, result)
}

// withCells builds a SpiceCell header for each cell, pins the Go-owned
// storage for the duration of fn, and copies the header fields CSPICE may
// have updated back into the Go cells.
func withCells(fn func([]*C.SpiceCell), cells ...*Cell) {
	var pin runtime.Pinner
	defer pin.Unpin()

	hdrs := make([]C.SpiceCell, len(cells))
	ptrs := make([]*C.SpiceCell, len(cells))
	for i, c := range cells {
		hdrs[i] = header(&pin, c)
		ptrs[i] = &hdrs[i]
	}
	fn(ptrs)
	for i, c := range cells {
		c.Length = int(hdrs[i].length)
		c.Size = int(hdrs[i].size)
		c.Card = int(hdrs[i].card)
		c.IsSet = hdrs[i].isSet != 0
		c.Adjust = hdrs[i].adjust != 0
		c.Init = hdrs[i].init != 0
	}
	runtime.KeepAlive(cells)
}

func header(pin *runtime.Pinner, c *Cell) C.SpiceCell {
	var h C.SpiceCell
	h.dtype = C.SpiceCellDataType(c.Type)
	h.length = C.SpiceInt(c.Length)
	h.size = C.SpiceInt(c.Size)
	h.card = C.SpiceInt(c.Card)
	h.isSet = C.SpiceBoolean(cbool(c.IsSet))
	h.adjust = C.SpiceBoolean(cbool(c.Adjust))
	h.init = C.SpiceBoolean(cbool(c.Init))

	var base unsafe.Pointer
	var ctrl uintptr
	switch c.Type {
	case Double:
		base = unsafe.Pointer(&c.Doubles[0])
		ctrl = CellCtrlSize * unsafe.Sizeof(float64(0))
	case Int:
		base = unsafe.Pointer(&c.Ints[0])
		ctrl = CellCtrlSize * unsafe.Sizeof(int32(0))
	case Char:
		base = unsafe.Pointer(&c.Chars[0])
		ctrl = uintptr(CellCtrlSize * c.Length)
	}
	pin.Pin(base)
	h.base = base
	if c.Size > 0 {
		h.data = unsafe.Add(base, ctrl)
	} else {
		h.data = base
	}
	return h
}

func vec3(v [3]C.double) [3]float64 {
	return [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
}

func vec6(v [6]C.double) [6]float64 {
	var out [6]float64
	for i := range v {
		out[i] = float64(v[i])
	}
	return out
}

func cvec3(v [3]float64) [3]C.double {
	return [3]C.double{C.double(v[0]), C.double(v[1]), C.double(v[2])}
}
