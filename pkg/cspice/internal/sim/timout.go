package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
)

type picKind int

const (
	picLiteral picKind = iota
	picJulian
	picEra
	picEraLower
	picYear
	picMon
	picMonMixed
	picDOY
	picMonth
	picDay
	picHour
	picMinute
	picSecond
)

type picItem struct {
	kind   picKind
	lit    string
	digits int
}

var picTokens = []struct {
	text string
	kind picKind
}{
	{"JULIAND", picJulian},
	{"YYYY", picYear},
	{"ERA", picEra},
	{"era", picEraLower},
	{"MON", picMon},
	{"Mon", picMonMixed},
	{"DOY", picDOY},
	{"MM", picMonth},
	{"DD", picDay},
	{"HR", picHour},
	{"MN", picMinute},
	{"SC", picSecond},
}

var picMarkers = map[string]string{
	"::TDB":  "TDB",
	"::TDT":  "TDT",
	"::UTC":  "UTC",
	"::GCAL": "GREGORIAN",
	"::JCAL": "JULIAN",
	"::MCAL": "MIXED",
	"::TRNC": "",
}

// maxFracDigits bounds the fractional digits computed exactly; further
// requested digits are written as zeros.
const maxFracDigits = 13

func parsePicture(pic string) (items []picItem, scale, cal string, zone int64) {
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			items = append(items, picItem{kind: picLiteral, lit: lit.String()})
			lit.Reset()
		}
	}
next:
	for i := 0; i < len(pic); {
		for m, v := range picMarkers {
			if strings.HasPrefix(pic[i:], m) {
				switch {
				case scales[v]:
					scale = v
				case calendars[v]:
					cal = v
				}
				if v == "UTC" {
					// ::UTC+hr:mn
					if loc := zoneRe.FindStringSubmatchIndex(pic[i+2:]); loc != nil && loc[0] == 0 {
						if z, ok := zoneMinutes(pic[i+2:], loc); ok {
							zone = z
							i += loc[1] - len(m) + 2
						}
					}
				}
				i += len(m)
				continue next
			}
		}
		for _, t := range picTokens {
			if !strings.HasPrefix(pic[i:], t.text) {
				continue
			}
			flush()
			i += len(t.text)
			it := picItem{kind: t.kind}
			if (t.kind == picSecond || t.kind == picJulian) && i+1 < len(pic) && pic[i] == '.' && pic[i+1] == '#' {
				j := i + 1
				for j < len(pic) && pic[j] == '#' {
					j++
				}
				it.digits = j - i - 1
				i = j
			}
			items = append(items, it)
			continue next
		}
		lit.WriteByte(pic[i])
		i++
	}
	flush()
	return items, scale, cal, zone
}

func (s *Sim) Timout(et float64, pictur, out []byte) {
	defer s.enter("timout_c")()
	if s.returning() {
		return
	}
	if len(out) < 2 {
		s.signal("SPICE(STRINGTOOSHORT)", "The output string has room for %d characters; at least 2 are required.", len(out))
		return
	}
	items, scale, cal, zone := parsePicture(cstr.FromBuffer(pictur))
	if scale == "" {
		scale = "UTC"
	}
	if cal == "" {
		cal = s.calendar
	}
	sec, leap, ok := s.toScale(et, scale)
	if !ok {
		return
	}
	if scale == "UTC" {
		sec += float64(zone * 60)
	}
	cstr.Put(out, strings.TrimRight(render(items, sec, leap, cal), " "))
}

func render(items []picItem, sec float64, leap bool, cal string) string {
	secDigits := 0
	for _, it := range items {
		if it.kind == picSecond {
			secDigits = it.digits
		}
	}
	f := breakdown(sec, leap, cal, min(secDigits, maxFracDigits))

	var b strings.Builder
	for _, it := range items {
		switch it.kind {
		case picLiteral:
			b.WriteString(it.lit)
		case picJulian:
			writeJulian(&b, sec, it.digits)
		case picEra:
			b.WriteString(f.era("A.D.", "B.C."))
		case picEraLower:
			b.WriteString(f.era("a.d.", "b.c."))
		case picYear:
			fmt.Fprintf(&b, "%04d", f.eraYear())
		case picMon:
			b.WriteString(monthNames[f.month-1])
		case picMonMixed:
			name := monthNames[f.month-1]
			b.WriteString(name[:1] + strings.ToLower(name[1:]))
		case picDOY:
			fmt.Fprintf(&b, "%03d", f.doy)
		case picMonth:
			fmt.Fprintf(&b, "%02d", f.month)
		case picDay:
			fmt.Fprintf(&b, "%02d", f.day)
		case picHour:
			fmt.Fprintf(&b, "%02d", f.hour)
		case picMinute:
			fmt.Fprintf(&b, "%02d", f.minute)
		case picSecond:
			fmt.Fprintf(&b, "%02d", f.second)
			if it.digits > 0 {
				b.WriteByte('.')
				writeFrac(&b, f.frac, min(it.digits, maxFracDigits), it.digits)
			}
		}
	}
	return b.String()
}

type fields struct {
	year, month, day, doy int64
	hour, minute, second  int64
	frac                  int64
}

func (f fields) era(ad, bc string) string {
	if f.year <= 0 {
		return bc
	}
	return ad
}

func (f fields) eraYear() int64 {
	if f.year <= 0 {
		return 1 - f.year
	}
	return f.year
}

// breakdown splits formal seconds past J2000 into calendar fields, truncating
// the seconds to digits fractional digits.
func breakdown(sec float64, leap bool, cal string, digits int) fields {
	pow := int64(math.Pow10(digits))
	x := sec + spd/2
	day := int64(math.Floor(x / spd))
	sod := x - float64(day)*spd
	units := int64(math.Floor(sod*float64(pow) + 1e-6))
	if units >= int64(spd)*pow {
		day++
		units -= int64(spd) * pow
	}
	if units < 0 {
		units = 0
	}

	jdn := j2000JDN + day
	y, m, d := jdnToDate(cal, jdn)
	f := fields{year: y, month: m, day: d, doy: jdn - dateToJDN(cal, y, 1, 1) + 1}
	whole := units / pow
	f.frac = units % pow
	f.hour = whole / 3600
	f.minute = whole % 3600 / 60
	f.second = whole % 60
	if leap {
		f.second++
	}
	return f
}

func writeJulian(b *strings.Builder, sec float64, digits int) {
	x := sec / spd
	ip := math.Floor(x)
	fp := x - ip
	exact := min(digits, maxFracDigits)
	pow := int64(math.Pow10(exact))
	units := int64(math.Floor(fp*float64(pow) + 1e-6))
	if units >= pow {
		ip++
		units -= pow
	}
	fmt.Fprintf(b, "%d", j2000JDN+int64(ip))
	if digits > 0 {
		b.WriteByte('.')
		writeFrac(b, units, exact, digits)
	}
}

func writeFrac(b *strings.Builder, units int64, exact, digits int) {
	if exact > 0 {
		fmt.Fprintf(b, "%0*d", exact, units)
	}
	b.WriteString(strings.Repeat("0", digits-exact))
}
