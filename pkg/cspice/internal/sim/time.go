package sim

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
)

const noLeapSecondsMsg = "The variable that points to the leapseconds (DELTET/DELTA_AT) could not be located in the kernel pool. It is likely that the leapseconds kernel has not been loaded via the routine FURNSH."

// Time scales and calendars accepted by the time routines.
var (
	scales    = map[string]bool{"UTC": true, "TDB": true, "TDT": true}
	calendars = map[string]bool{"GREGORIAN": true, "JULIAN": true, "MIXED": true}
)

type leapEntry struct {
	dat float64
	utc float64
}

// deltet holds the leapseconds kernel parameters.
type deltet struct {
	deltaTA float64
	k       float64
	eb      float64
	m0, m1  float64
	leaps   []leapEntry
}

func (s *Sim) deltet() (*deltet, bool) {
	scalar := func(name string, n int) []float64 {
		v, ok := s.pool(name)
		if !ok || len(v.nums) < n {
			return nil
		}
		return v.nums
	}
	dta := scalar("DELTET/DELTA_T_A", 1)
	k := scalar("DELTET/K", 1)
	eb := scalar("DELTET/EB", 1)
	m := scalar("DELTET/M", 2)
	dat := scalar("DELTET/DELTA_AT", 2)
	if dta == nil || k == nil || eb == nil || m == nil || dat == nil {
		return nil, false
	}
	d := &deltet{deltaTA: dta[0], k: k[0], eb: eb[0], m0: m[0], m1: m[1]}
	for i := 0; i+1 < len(dat); i += 2 {
		d.leaps = append(d.leaps, leapEntry{dat: dat[i], utc: dat[i+1]})
	}
	return d, true
}

func (d *deltet) tdbFromTDT(tdt float64) float64 {
	m := d.m0 + d.m1*tdt
	e := m + d.eb*math.Sin(m)
	return tdt + d.k*math.Sin(e)
}

func (d *deltet) tdtFromTDB(et float64) float64 {
	tdt := et
	for range 3 {
		m := d.m0 + d.m1*tdt
		tdt = et - d.k*math.Sin(m+d.eb*math.Sin(m))
	}
	return tdt
}

func (d *deltet) datAt(utc float64) float64 {
	dat := d.leaps[0].dat
	for _, l := range d.leaps {
		if l.utc > utc {
			break
		}
		dat = l.dat
	}
	return dat
}

// utcFromTAI returns formal UTC seconds. Inside a leap second the result
// points into the last second of the day and leap is set.
func (d *deltet) utcFromTAI(tai float64) (utc float64, leap bool) {
	i := -1
	for j, l := range d.leaps {
		if l.utc+l.dat > tai {
			break
		}
		i = j
	}
	if i < 0 {
		return tai - d.leaps[0].dat, false
	}
	utc = tai - d.leaps[i].dat
	if i+1 < len(d.leaps) && utc >= d.leaps[i+1].utc {
		return d.leaps[i+1].utc - 1 + (utc - d.leaps[i+1].utc), true
	}
	return utc, false
}

// toScale converts ephemeris time to formal seconds past J2000 in scale.
func (s *Sim) toScale(et float64, scale string) (sec float64, leap bool, ok bool) {
	if scale == "TDB" {
		return et, false, true
	}
	d, found := s.deltet()
	if !found {
		s.signal("SPICE(NOLEAPSECONDS)", noLeapSecondsMsg)
		return 0, false, false
	}
	tdt := d.tdtFromTDB(et)
	if scale == "TDT" {
		return tdt, false, true
	}
	sec, leap = d.utcFromTAI(tdt - d.deltaTA)
	return sec, leap, true
}

// fromScale converts formal seconds past J2000 in scale to ephemeris time.
func (s *Sim) fromScale(sec float64, scale string, leap bool) (float64, bool) {
	if scale == "TDB" {
		return sec, true
	}
	d, found := s.deltet()
	if !found {
		s.signal("SPICE(NOLEAPSECONDS)", noLeapSecondsMsg)
		return 0, false
	}
	if scale == "TDT" {
		return d.tdbFromTDT(sec), true
	}
	lookup := sec
	if leap {
		lookup--
	}
	tai := sec + d.datAt(lookup)
	return d.tdbFromTDT(tai + d.deltaTA), true
}

func (s *Sim) Timdef(action, item, value []byte) {
	defer s.enter("timdef_c")()
	if s.returning() {
		return
	}
	act := strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(action)))
	it := strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(item)))
	var slot *string
	var valid map[string]bool
	switch it {
	case "CALENDAR":
		slot, valid = &s.calendar, calendars
	case "SYSTEM":
		slot, valid = &s.system, scales
	default:
		s.signal("SPICE(BADTIMEITEM)", "The time default item '%s' is not recognized.", it)
		return
	}
	switch act {
	case "GET":
		cstr.Put(value, *slot)
	case "SET":
		v := strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(value)))
		if !valid[v] {
			s.signal("SPICE(BADDEFAULTVALUE)", "The value '%s' is not a valid setting for %s.", v, it)
			return
		}
		*slot = v
	default:
		s.signal("SPICE(BADACTIONITEM)", "The action '%s' is not recognized; use GET or SET.", act)
	}
}

func (s *Sim) Unitim(epoch float64, insys, outsys []byte) float64 {
	defer s.enter("unitim_c")()
	if s.returning() {
		return 0
	}
	in := strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(insys)))
	out := strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(outsys)))
	known := map[string]bool{"TAI": true, "TDT": true, "TDB": true, "ET": true, "JDTDB": true, "JDTDT": true, "JED": true}
	for _, sys := range []string{in, out} {
		if !known[sys] {
			s.signal("SPICE(BADTIMETYPE)", "The time system '%s' is not supported.", sys)
			return 0
		}
	}
	if in == out {
		return epoch
	}
	needsDeltet := func(sys string) bool { return sys == "TAI" || sys == "TDT" || sys == "JDTDT" }
	var d *deltet
	if needsDeltet(in) || needsDeltet(out) {
		var ok bool
		if d, ok = s.deltet(); !ok {
			s.signal("SPICE(MISSINGTIMEINFO)", "The leapseconds kernel values DELTET/* are not in the kernel pool.")
			return 0
		}
	}

	var tdb float64
	switch in {
	case "TAI":
		tdb = d.tdbFromTDT(epoch + d.deltaTA)
	case "TDT":
		tdb = d.tdbFromTDT(epoch)
	case "TDB", "ET":
		tdb = epoch
	case "JDTDB", "JED":
		tdb = (epoch - j2000JDN) * spd
	case "JDTDT":
		tdb = d.tdbFromTDT((epoch - j2000JDN) * spd)
	}

	switch out {
	case "TAI":
		return d.tdtFromTDB(tdb) - d.deltaTA
	case "TDT":
		return d.tdtFromTDB(tdb)
	case "JDTDB", "JED":
		return j2000JDN + tdb/spd
	case "JDTDT":
		return j2000JDN + d.tdtFromTDB(tdb)/spd
	default:
		return tdb
	}
}

func (s *Sim) Str2et(str []byte) float64 {
	defer s.enter("str2et_c")()
	if s.returning() {
		return 0
	}
	text := cstr.FromBuffer(str)
	t, err := parseTime(text, s.calendar, s.system)
	if err != nil {
		s.signal("SPICE(UNPARSEDTIME)", "The input string '%s' could not be parsed: %v", text, err)
		return 0
	}
	if t.leap && t.scale != "UTC" {
		s.signal("SPICE(UNPARSEDTIME)", "The input string '%s' has 60 seconds outside of UTC.", text)
		return 0
	}
	et, ok := s.fromScale(t.sec, t.scale, t.leap)
	if !ok {
		return 0
	}
	return et
}

// parsedTime is a time string reduced to formal seconds past J2000 in scale.
type parsedTime struct {
	sec   float64
	scale string
	leap  bool
}

var (
	clockRe  = regexp.MustCompile(`(\d{1,2}):(\d{1,2})(?::(\d{1,2}(?:\.\d*)?))?`)
	zoneRe   = regexp.MustCompile(`\bUTC([+-])(\d{1,2})(?::(\d{1,2}))?`)
	isoTRe   = regexp.MustCompile(`(\d)T(\d)`)
	errParse = errors.New("unrecognized time format")
)

func parseTime(text, cal, system string) (parsedTime, error) {
	up := strings.ToUpper(strings.TrimSpace(text))
	if up == "" {
		return parsedTime{}, errors.New("blank time string")
	}
	if strings.HasPrefix(up, "JD") {
		return parseJD(up, system)
	}

	out := parsedTime{scale: system}
	zloc := zoneRe.FindStringSubmatchIndex(up)
	zone, ok := zoneMinutes(up, zloc)
	if !ok {
		return parsedTime{}, errors.New("time zone out of range")
	}
	if zloc != nil {
		out.scale = "UTC"
		up = up[:zloc[0]] + " " + up[zloc[1]:]
	}
	var h, mn int64
	var sc float64
	up = isoTRe.ReplaceAllString(up, "$1 $2")
	if loc := clockRe.FindStringSubmatchIndex(up); loc != nil {
		h, _ = strconv.ParseInt(up[loc[2]:loc[3]], 10, 64)
		mn, _ = strconv.ParseInt(up[loc[4]:loc[5]], 10, 64)
		if loc[6] >= 0 {
			sc, _ = strconv.ParseFloat(up[loc[6]:loc[7]], 64)
		}
		up = up[:loc[0]] + " " + up[loc[1]:]
	}
	up = strings.NewReplacer("A.D.", " AD ", "B.C.", " BC ").Replace(up)

	era := 0
	month := int64(0)
	monthPos := -1
	var nums []string
	for _, f := range strings.FieldsFunc(up, func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '/' || r == '\t'
	}) {
		switch {
		case f[0] >= '0' && f[0] <= '9':
			if _, err := strconv.ParseUint(f, 10, 63); err != nil {
				return parsedTime{}, fmt.Errorf("bad number %q", f)
			}
			nums = append(nums, f)
		case f == "AD":
			era = 1
		case f == "BC":
			era = -1
		case scales[f]:
			out.scale = f
		default:
			m := monthIndex(f)
			if m == 0 || month != 0 {
				return parsedTime{}, fmt.Errorf("unexpected word %q", f)
			}
			month, monthPos = m, len(nums)
		}
	}

	var yTok, dTok string
	var doy bool
	switch {
	case month != 0 && len(nums) == 2:
		a, b := nums[0], nums[1]
		if monthPos < 2 && !(looksLikeYear(a) && !looksLikeYear(b)) {
			yTok, dTok = b, a
		} else {
			yTok, dTok = a, b
		}
	case month == 0 && len(nums) == 3:
		if looksLikeYear(nums[2]) && !looksLikeYear(nums[0]) {
			yTok, dTok = nums[2], nums[1]
			m, _ := strconv.ParseInt(nums[0], 10, 64)
			month = m
		} else {
			yTok, dTok = nums[0], nums[2]
			m, _ := strconv.ParseInt(nums[1], 10, 64)
			month = m
		}
	case month == 0 && len(nums) == 2 && len(nums[1]) == 3:
		yTok, dTok, doy = nums[0], nums[1], true
	default:
		return parsedTime{}, errParse
	}

	y, _ := strconv.ParseInt(yTok, 10, 64)
	d, _ := strconv.ParseInt(dTok, 10, 64)
	switch {
	case era != 0 && y == 0:
		return parsedTime{}, errors.New("year 0 with an era")
	case era == -1:
		y = 1 - y
	case era == 0 && len(yTok) <= 2:
		if y >= 69 {
			y += 1900
		} else {
			y += 2000
		}
	}

	var jdn int64
	if doy {
		maxDOY := int64(365)
		if isLeap(cal, y) {
			maxDOY = 366
		}
		if d < 1 || d > maxDOY {
			return parsedTime{}, fmt.Errorf("day of year %d out of range", d)
		}
		jdn = dateToJDN(cal, y, 1, 1) + d - 1
	} else {
		if month < 1 || month > 12 {
			return parsedTime{}, fmt.Errorf("month %d out of range", month)
		}
		if d < 1 || d > daysInMonth(cal, y, month) {
			return parsedTime{}, fmt.Errorf("day %d out of range", d)
		}
		jdn = dateToJDN(cal, y, month, d)
	}

	if h > 23 || mn > 59 || sc < 0 || sc >= 61 {
		return parsedTime{}, fmt.Errorf("clock %02d:%02d:%g out of range", h, mn, sc)
	}
	if sc >= 60 {
		// The leap second ends the UTC day, whatever the local clock says.
		if utcMin := ((h*60+mn-zone)%1440 + 1440) % 1440; utcMin != 1439 {
			return parsedTime{}, errors.New("60 seconds outside the last minute of a day")
		}
		out.leap = true
	}
	out.sec = float64(jdn-j2000JDN)*spd + float64(h*3600+mn*60) + sc - spd/2 - float64(zone*60)
	return out, nil
}

// zoneMinutes decodes a UTC+hr[:mn] match into minutes east of UTC.
func zoneMinutes(s string, loc []int) (int64, bool) {
	if loc == nil {
		return 0, true
	}
	h, _ := strconv.ParseInt(s[loc[4]:loc[5]], 10, 64)
	var m int64
	if loc[6] >= 0 {
		m, _ = strconv.ParseInt(s[loc[6]:loc[7]], 10, 64)
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	z := h*60 + m
	if s[loc[2]:loc[3]] == "-" {
		z = -z
	}
	return z, true
}

func parseJD(up, system string) (parsedTime, error) {
	f := strings.Fields(up)
	out := parsedTime{scale: system}
	var num string
	switch {
	case f[0] == "JD" && len(f) == 3 && scales[f[1]]:
		out.scale, num = f[1], f[2]
	case f[0] == "JD" && len(f) == 2:
		num = f[1]
	case len(f) == 2 && scales[strings.TrimPrefix(f[0], "JD")]:
		out.scale, num = strings.TrimPrefix(f[0], "JD"), f[1]
	default:
		return parsedTime{}, errParse
	}

	neg := strings.HasPrefix(num, "-")
	num = strings.TrimLeft(num, "+-")
	ip, fp, _ := strings.Cut(num, ".")
	if ip == "" {
		ip = "0"
	}
	whole, err := strconv.ParseInt(ip, 10, 64)
	if err != nil {
		return parsedTime{}, fmt.Errorf("bad Julian date %q", num)
	}
	frac := 0.0
	if fp != "" {
		if frac, err = strconv.ParseFloat("0."+fp, 64); err != nil {
			return parsedTime{}, fmt.Errorf("bad Julian date %q", num)
		}
	}
	if neg {
		whole, frac = -whole, -frac
	}
	out.sec = float64(whole-j2000JDN)*spd + frac*spd
	return out, nil
}

func looksLikeYear(tok string) bool {
	if len(tok) >= 3 {
		return true
	}
	n, _ := strconv.Atoi(tok)
	return n > 31
}

func monthIndex(word string) int64 {
	if len(word) < 3 {
		return 0
	}
	for i, m := range monthNames {
		if strings.HasPrefix(word, m) {
			full := []string{"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE", "JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER"}[i]
			if strings.HasPrefix(full, word) || word == "SEPT" {
				return int64(i + 1)
			}
		}
	}
	return 0
}

// formalFromDate converts a kernel @date to formal seconds past J2000 without
// any time scale adjustment.
func formalFromDate(text string) (float64, error) {
	t, err := parseTime(text, "GREGORIAN", "TDB")
	if err != nil {
		return 0, err
	}
	return t.sec, nil
}
