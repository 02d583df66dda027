package cspice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

var monthAbbrev = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// ErrZoneOutsideUTC is returned when a non-zero Zone is used with a time
// scale other than UTC.
var ErrZoneOutsideUTC = errors.New("cspice: time zones apply to UTC only")

// Zone is an offset from UTC in minutes, positive east.
type Zone int

// NewZone returns the zone hours:minutes from UTC. The sign of hours applies
// to minutes, so NewZone(-2, 30) is two and a half hours west.
func NewZone(hours, minutes int) Zone {
	if hours < 0 {
		return Zone(hours*60 - minutes)
	}
	return Zone(hours*60 + minutes)
}

// ZoneFromSeconds rounds an offset in seconds to the nearest minute.
func ZoneFromSeconds(seconds int) Zone {
	return Zone(math.Round(float64(seconds) / 60))
}

// Seconds returns the offset in seconds.
func (z Zone) Seconds() int { return int(z) * 60 }

// String returns the toolkit's zone marker, for example "UTC+5:30" or
// "UTC-2:30".
func (z Zone) String() string {
	sign, m := "+", int(z)
	if m < 0 {
		sign, m = "-", -m
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, m/60, m%60)
}

func (z Zone) valid() bool { return z > -24*60 && z < 24*60 }

// DateTime is a calendar date and time of day in calendar C and time scale
// S. Year is astronomical: year 0 is 1 B.C.
//
// Zone is the local offset of a UTC date; the fields then hold local time.
// It must be zero for the other scales.
type DateTime[C Calendar, S Scale] struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second float64
	Zone   Zone
}

// String formats d the way StrToEt parses it, for example
// "26 DEC 600 B.C. 00:00:00.000000000 TDB" or
// "1 JAN 2000 A.D. 17:30:00.000000000 UTC+5:30".
func (d DateTime[C, S]) String() string {
	month := strconv.Itoa(d.Month)
	if d.Month >= 1 && d.Month <= 12 {
		month = monthAbbrev[d.Month-1]
	}
	year, era := d.Year, "A.D."
	if year <= 0 {
		year, era = 1-year, "B.C."
	}
	return fmt.Sprintf("%d %s %d %s %02d:%02d:%s %s",
		d.Day, month, year, era, d.Hour, d.Minute, formatSecond(d.Second), scaleMarker[S](d.Zone))
}

// formatSecond writes sec with nine fractional digits. Digits past the ninth
// are dropped, never rounded up into the next whole second: 59.9999999999
// must not read as 60.
func formatSecond(sec float64) string {
	s := strconv.FormatFloat(sec, 'f', 12, 64)
	s = s[:len(s)-3]
	if v, err := strconv.ParseFloat(s, 64); err == nil && math.Floor(v) > math.Floor(sec) {
		s = strconv.FormatFloat(math.Floor(sec), 'f', 0, 64) + ".999999999"
	}
	if i := strings.IndexByte(s, '.'); i == 1 {
		s = "0" + s
	}
	return s
}

func scaleMarker[S Scale](z Zone) string {
	name := scaleOf[S]()
	if z != 0 && name == "UTC" {
		return z.String()
	}
	return name
}

func checkZone[S Scale](z Zone) error {
	if z == 0 {
		return nil
	}
	if scaleOf[S]() != "UTC" {
		return ErrZoneOutsideUTC
	}
	if !z.valid() {
		return fmt.Errorf("cspice: zone offset of %d minutes out of range", int(z))
	}
	return nil
}

// EtToDateTime converts ephemeris time to a calendar date in calendar C and
// scale S.
func EtToDateTime[C Calendar, S Scale](t *Token, et Et) (DateTime[C, S], error) {
	return EtToDateTimeIn[C, S](t, et, 0)
}

// EtToDateTimeIn is like EtToDateTime but returns local time in zone. Only
// the UTC scale accepts a non-zero zone.
func EtToDateTimeIn[C Calendar, S Scale](t *Token, et Et, zone Zone) (DateTime[C, S], error) {
	if err := checkZone[S](zone); err != nil {
		return DateTime[C, S]{}, err
	}
	pic := "ERA:YYYY:MM:DD:HR:MN:SC.######### ::" + scaleMarker[S](zone) + " " + calendarOf[C]().pictureMarker()
	s, err := TimeOut(t, et, pic, 64)
	if err != nil {
		return DateTime[C, S]{}, err
	}
	d, err := parseDateTime[C, S](s)
	if err != nil {
		return DateTime[C, S]{}, fmt.Errorf("cspice: parse date %q: %w", s, err)
	}
	d.Zone = zone
	return d, nil
}

func parseDateTime[C Calendar, S Scale](s string) (DateTime[C, S], error) {
	f := strings.Split(s, ":")
	if len(f) != 7 {
		return DateTime[C, S]{}, fmt.Errorf("want 7 fields, got %d", len(f))
	}
	var n [5]int
	for i := range n {
		v, err := strconv.Atoi(strings.TrimSpace(f[i+1]))
		if err != nil {
			return DateTime[C, S]{}, err
		}
		n[i] = v
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(f[6]), 64)
	if err != nil {
		return DateTime[C, S]{}, err
	}
	year := n[0]
	if strings.TrimSpace(f[0]) == "B.C." {
		year = 1 - year
	}
	return DateTime[C, S]{Year: year, Month: n[1], Day: n[2], Hour: n[3], Minute: n[4], Second: sec}, nil
}

// Et converts d to ephemeris time. The default calendar is switched to C for
// the conversion and restored before Et returns; other callers never observe
// the change.
func (d DateTime[C, S]) Et(t *Token) (Et, error) {
	if err := checkZone[S](d.Zone); err != nil {
		return 0, err
	}
	in, err := cstr.New(d.String())
	if err != nil {
		return 0, err
	}
	cal := cstr.MustNew(calendarOf[C]().calendarName())

	var et float64
	err = t.call("DateTime.Et", func(lib backend.Library) error {
		prev := cstr.Output(backend.TimeDefLen)
		lib.Timdef(opGet.Bytes(), itemCalendar.Bytes(), prev)
		if err := checkAndClear(lib); err != nil {
			return err
		}
		lib.Timdef(opSet.Bytes(), itemCalendar.Bytes(), cal.Bytes())
		if err := checkAndClear(lib); err != nil {
			return err
		}

		et = lib.Str2et(in.Bytes())
		convErr := checkAndClear(lib)

		lib.Timdef(opSet.Bytes(), itemCalendar.Bytes(), prev)
		if err := checkAndClear(lib); err != nil {
			if convErr != nil {
				return convErr
			}
			return fmt.Errorf("cspice: restore default calendar: %w", err)
		}
		return convErr
	})
	return Et(et), err
}
