package sim

import (
	"math"
	"strconv"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func (s *Sim) Reclat(rect [3]float64) (float64, float64, float64) {
	defer s.enter("reclat_c")()
	return reclat(rect)
}

func reclat(r [3]float64) (radius, lon, lat float64) {
	radius = norm(r)
	if radius == 0 {
		return 0, 0, 0
	}
	if r[0] != 0 || r[1] != 0 {
		lon = math.Atan2(r[1], r[0])
	}
	lat = math.Atan2(r[2], math.Hypot(r[0], r[1]))
	return radius, lon, lat
}

func latrec(radius, lon, lat float64) [3]float64 {
	return [3]float64{
		radius * math.Cos(lat) * math.Cos(lon),
		radius * math.Cos(lat) * math.Sin(lon),
		radius * math.Sin(lat),
	}
}

func (s *Sim) Latrec(radius, lon, lat float64) [3]float64 {
	defer s.enter("latrec_c")()
	return latrec(radius, lon, lat)
}

func (s *Sim) Recrad(rect [3]float64) (float64, float64, float64) {
	defer s.enter("recrad_c")()
	rng, ra, dec := reclat(rect)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	return rng, ra, dec
}

func (s *Sim) Radrec(rng, ra, dec float64) [3]float64 {
	defer s.enter("radrec_c")()
	return latrec(rng, ra, dec)
}

func (s *Sim) Recazl(rect [3]float64, azccw, elplsz bool) (float64, float64, float64) {
	defer s.enter("recazl_c")()
	rng, az, el := reclat(rect)
	if !azccw {
		az = -az
	}
	if az < 0 {
		az += 2 * math.Pi
	}
	if !elplsz {
		el = -el
	}
	return rng, az, el
}

func (s *Sim) Azlrec(rng, az, el float64, azccw, elplsz bool) [3]float64 {
	defer s.enter("azlrec_c")()
	v := latrec(rng, az, el)
	if !azccw {
		v[1] = -v[1]
	}
	if !elplsz {
		v[2] = -v[2]
	}
	return v
}

func (s *Sim) Vsep(a, b [3]float64) float64 {
	defer s.enter("vsep_c")()
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var ua, ub [3]float64
	for i := range 3 {
		ua[i], ub[i] = a[i]/na, b[i]/nb
	}
	dot := ua[0]*ub[0] + ua[1]*ub[1] + ua[2]*ub[2]
	switch {
	case dot > 0:
		d := [3]float64{ua[0] - ub[0], ua[1] - ub[1], ua[2] - ub[2]}
		return 2 * math.Asin(norm(d)/2)
	case dot < 0:
		d := [3]float64{ua[0] + ub[0], ua[1] + ub[1], ua[2] + ub[2]}
		return math.Pi - 2*math.Asin(norm(d)/2)
	default:
		return math.Pi / 2
	}
}

// builtinBodies is the subset of the NAIF body table known without kernels.
// The first name listed for a code is its preferred name.
var builtinBodies = []struct {
	name string
	code int
}{
	{"SOLAR SYSTEM BARYCENTER", 0},
	{"SSB", 0},
	{"SOLAR_SYSTEM_BARYCENTER", 0},
	{"MERCURY BARYCENTER", 1},
	{"VENUS BARYCENTER", 2},
	{"EARTH BARYCENTER", 3},
	{"EMB", 3},
	{"EARTH MOON BARYCENTER", 3},
	{"EARTH-MOON BARYCENTER", 3},
	{"MARS BARYCENTER", 4},
	{"JUPITER BARYCENTER", 5},
	{"SATURN BARYCENTER", 6},
	{"URANUS BARYCENTER", 7},
	{"NEPTUNE BARYCENTER", 8},
	{"PLUTO BARYCENTER", 9},
	{"SUN", 10},
	{"MERCURY", 199},
	{"VENUS", 299},
	{"MOON", 301},
	{"EARTH", 399},
	{"PHOBOS", 401},
	{"DEIMOS", 402},
	{"MARS", 499},
	{"IO", 501},
	{"EUROPA", 502},
	{"GANYMEDE", 503},
	{"CALLISTO", 504},
	{"JUPITER", 599},
	{"TITAN", 606},
	{"SATURN", 699},
	{"URANUS", 799},
	{"NEPTUNE", 899},
	{"CHARON", 901},
	{"PLUTO", 999},
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// bodyCode resolves a name or integer string. Kernel pool definitions
// (NAIF_BODY_NAME/NAIF_BODY_CODE) take precedence over built-in names.
func (s *Sim) bodyCode(name string) (int, bool) {
	n := normalizeName(name)
	if n == "" {
		return 0, false
	}
	if names, ok := s.pool("NAIF_BODY_NAME"); ok {
		if codes, ok := s.pool("NAIF_BODY_CODE"); ok {
			for i := len(names.strs) - 1; i >= 0; i-- {
				if i < len(codes.nums) && normalizeName(names.strs[i]) == n {
					return int(codes.nums[i]), true
				}
			}
		}
	}
	for _, b := range builtinBodies {
		if b.name == n {
			return b.code, true
		}
	}
	if code, err := strconv.Atoi(n); err == nil {
		return code, true
	}
	return 0, false
}

func (s *Sim) bodyName(code int) (string, bool) {
	if names, ok := s.pool("NAIF_BODY_NAME"); ok {
		if codes, ok := s.pool("NAIF_BODY_CODE"); ok {
			for i := len(codes.nums) - 1; i >= 0; i-- {
				if int(codes.nums[i]) == code && i < len(names.strs) {
					return names.strs[i], true
				}
			}
		}
	}
	for _, b := range builtinBodies {
		if b.code == code {
			return b.name, true
		}
	}
	return "", false
}

func (s *Sim) Bodn2c(name []byte) (int, bool) {
	defer s.enter("bodn2c_c")()
	if s.returning() {
		return 0, false
	}
	return s.bodyCode(cstr.FromBuffer(name))
}

func (s *Sim) Bodc2n(code int, name []byte) bool {
	defer s.enter("bodc2n_c")()
	if s.returning() {
		return false
	}
	n, ok := s.bodyName(code)
	cstr.Put(name, n)
	return ok
}

var inertialFrames = map[string]bool{
	"J2000": true, "B1950": true, "FK4": true, "DE-118": true, "DE-96": true,
	"DE-102": true, "DE-108": true, "DE-111": true, "DE-114": true, "DE-122": true,
	"DE-125": true, "DE-130": true, "GALACTIC": true, "DE-200": true, "DE-202": true,
	"MARSIAU": true, "ECLIPJ2000": true, "ECLIPB1950": true, "DE-140": true, "DE-142": true,
	"DE-143": true,
	"IAU_SUN": true, "IAU_MERCURY": true, "IAU_VENUS": true, "IAU_EARTH": true,
	"IAU_MOON": true, "IAU_MARS": true, "IAU_JUPITER": true, "IAU_SATURN": true,
	"IAU_URANUS": true, "IAU_NEPTUNE": true, "IAU_PLUTO": true,
}

var abcorrs = map[string]bool{
	"NONE": true, "LT": true, "LT+S": true, "CN": true, "CN+S": true,
	"XLT": true, "XLT+S": true, "XCN": true, "XCN+S": true,
}

// spkSetup validates the common inputs of the SPK readers in the order the
// toolkit checks them. It reports whether a state can be produced: a body
// observed from itself needs no data; anything else needs ephemeris data the
// simulator does not carry.
func (s *Sim) spkSetup(targ, obs int, ref, abcorr string) bool {
	if !inertialFrames[strings.ToUpper(strings.TrimSpace(ref))] {
		s.signal("SPICE(UNKNOWNFRAME)", "The requested output frame '%s' is not recognized by the reference frame subsystem.", ref)
		return false
	}
	if !abcorrs[strings.ToUpper(strings.ReplaceAll(abcorr, " ", ""))] {
		s.signal("SPICE(INVALIDOPTION)", "Aberration correction specification '%s' is not recognized.", abcorr)
		return false
	}
	if targ == obs {
		return true
	}
	if !s.loaded(KindSPK) {
		s.signal("SPICE(NOLOADEDFILES)", "At least one SPK file needs to be loaded by FURNSH before beginning a search.")
		return false
	}
	s.signal("SPICE(SPKINSUFFDATA)", "Insufficient ephemeris data has been loaded to compute the state of %d relative to %d.", targ, obs)
	return false
}

func (s *Sim) resolve(names ...string) ([]int, bool) {
	codes := make([]int, len(names))
	for i, n := range names {
		c, ok := s.bodyCode(n)
		if !ok {
			s.signal("SPICE(IDCODENOTFOUND)", "The body name '%s' could not be translated to an ID code.", n)
			return nil, false
		}
		codes[i] = c
	}
	return codes, true
}

func (s *Sim) Spkpos(targ []byte, et float64, ref, abcorr, obs []byte) ([3]float64, float64) {
	defer s.enter("spkpos_c")()
	if s.returning() {
		return [3]float64{}, 0
	}
	defer s.chkin("SPKPOS")()
	codes, ok := s.resolve(cstr.FromBuffer(targ), cstr.FromBuffer(obs))
	if ok {
		s.spkSetup(codes[0], codes[1], cstr.FromBuffer(ref), cstr.FromBuffer(abcorr))
	}
	return [3]float64{}, 0
}

func (s *Sim) Spkezr(targ []byte, et float64, ref, abcorr, obs []byte) ([6]float64, float64) {
	defer s.enter("spkezr_c")()
	if s.returning() {
		return [6]float64{}, 0
	}
	defer s.chkin("SPKEZR")()
	codes, ok := s.resolve(cstr.FromBuffer(targ), cstr.FromBuffer(obs))
	if ok {
		s.spkSetup(codes[0], codes[1], cstr.FromBuffer(ref), cstr.FromBuffer(abcorr))
	}
	return [6]float64{}, 0
}

func (s *Sim) Spkez(targ int, et float64, ref, abcorr []byte, obs int) ([6]float64, float64) {
	defer s.enter("spkez_c")()
	if s.returning() {
		return [6]float64{}, 0
	}
	defer s.chkin("SPKEZ")()
	s.spkSetup(targ, obs, cstr.FromBuffer(ref), cstr.FromBuffer(abcorr))
	return [6]float64{}, 0
}

func (s *Sim) Spkezp(targ int, et float64, ref, abcorr []byte, obs int) ([3]float64, float64) {
	defer s.enter("spkezp_c")()
	if s.returning() {
		return [3]float64{}, 0
	}
	defer s.chkin("SPKEZP")()
	s.spkSetup(targ, obs, cstr.FromBuffer(ref), cstr.FromBuffer(abcorr))
	return [3]float64{}, 0
}

var gfRelations = map[string]bool{
	">": true, "=": true, "<": true, "ABSMAX": true, "ABSMIN": true, "LOCMAX": true, "LOCMIN": true,
}

func (s *Sim) Gfsep(a *backend.GfsepArgs, cnfine, result *backend.Cell) {
	defer s.enter("gfsep_c")()
	if s.returning() {
		return
	}
	defer s.chkin("GFSEP")()

	str := func(b []byte) string { return strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(b))) }
	if a.Step <= 0 {
		s.signal("SPICE(INVALIDSTEP)", "The step size %g must be positive.", a.Step)
		return
	}
	if a.Nintvls < 1 {
		s.signal("SPICE(INVALIDDIMENSION)", "The workspace interval count %d must be at least 1.", a.Nintvls)
		return
	}
	if rel := str(a.Relate); !gfRelations[rel] {
		s.signal("SPICE(NOTRECOGNIZED)", "The relational operator '%s' is not recognized.", rel)
		return
	}
	for _, shape := range []string{str(a.Shape1), str(a.Shape2)} {
		if shape != "POINT" && shape != "SPHERE" {
			s.signal("SPICE(NOTRECOGNIZED)", "The body shape '%s' is not recognized.", shape)
			return
		}
	}
	if _, ok := s.intervals(cnfine); !ok {
		return
	}
	if result.Type != backend.Double {
		s.signal("SPICE(TYPEMISMATCH)", "Result window must be a double precision cell; found %s.", result.Type)
		return
	}
	codes, ok := s.resolve(cstr.FromBuffer(a.Targ1), cstr.FromBuffer(a.Targ2), cstr.FromBuffer(a.Obsrvr))
	if !ok {
		return
	}
	for _, f := range []string{cstr.FromBuffer(a.Frame1), cstr.FromBuffer(a.Frame2)} {
		if u := strings.ToUpper(strings.TrimSpace(f)); u != "NULL" && u != "" && !inertialFrames[u] {
			s.signal("SPICE(UNKNOWNFRAME)", "The body-fixed frame '%s' is not recognized.", f)
			return
		}
	}
	if cnfine.Card == 0 {
		s.store(result, nil)
		return
	}
	for _, t := range codes[:2] {
		if !s.spkSetup(t, codes[2], "J2000", cstr.FromBuffer(a.Abcorr)) {
			return
		}
	}
	// Both targets coincide with the observer, so the separation is zero
	// everywhere.
	sep := 0.0
	var hold bool
	switch str(a.Relate) {
	case ">":
		hold = sep > a.Refval
	case "<":
		hold = sep < a.Refval
	case "=":
		hold = sep == a.Refval
	default:
		hold = true
	}
	if !hold {
		s.store(result, nil)
		return
	}
	ivs, _ := s.intervals(cnfine)
	s.store(result, ivs)
}
