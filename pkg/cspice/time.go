package cspice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// Et is ephemeris time: TDB seconds past the J2000 epoch.
type Et float64

// Scale is implemented by the zero-size time scale markers TDB, TDT and UTC.
// The interface is sealed.
type Scale interface {
	scaleName() string
}

// TDB is Barycentric Dynamical Time.
type TDB struct{}

// TDT is Terrestrial Dynamical Time.
type TDT struct{}

// UTC is Coordinated Universal Time. Conversions need a leapseconds kernel.
// UTC dates may carry a Zone.
type UTC struct{}

func (TDB) scaleName() string { return "TDB" }
func (TDT) scaleName() string { return "TDT" }
func (UTC) scaleName() string { return "UTC" }

// Calendar is implemented by the zero-size calendar markers Gregorian,
// Julian and Mixed. The interface is sealed.
type Calendar interface {
	calendarName() string
	pictureMarker() string
}

// Gregorian is the proleptic Gregorian calendar.
type Gregorian struct{}

// Julian is the proleptic Julian calendar.
type Julian struct{}

// Mixed is the Julian calendar up to 1582 October 4 and the Gregorian
// calendar from 1582 October 15.
type Mixed struct{}

func (Gregorian) calendarName() string  { return "GREGORIAN" }
func (Gregorian) pictureMarker() string { return "::GCAL" }
func (Julian) calendarName() string     { return "JULIAN" }
func (Julian) pictureMarker() string    { return "::JCAL" }
func (Mixed) calendarName() string      { return "MIXED" }
func (Mixed) pictureMarker() string     { return "::MCAL" }

func scaleOf[S Scale]() string {
	var s S
	return s.scaleName()
}

func calendarOf[C Calendar]() C {
	var c C
	return c
}

// TimeOut formats et with a timout picture. maxLen is the longest result
// the caller accepts; longer output is truncated by the toolkit.
func TimeOut[S cstr.Text](t *Token, et Et, picture S, maxLen int) (string, error) {
	pic, err := cstr.From(picture)
	if err != nil {
		return "", err
	}
	var s string
	err = t.call("TimeOut", func(lib backend.Library) error {
		out := cstr.Output(maxLen + 1)
		lib.Timout(float64(et), pic.Bytes(), out)
		s = decode(out)
		return nil
	})
	return s, err
}

// StrToEt parses a time string. Strings without an explicit time system
// use the default set with SetDefaultTimeSystem, UTC unless changed.
func StrToEt[S cstr.Text](t *Token, s S) (Et, error) {
	in, err := cstr.From(s)
	if err != nil {
		return 0, err
	}
	var et float64
	err = t.call("StrToEt", func(lib backend.Library) error {
		et = lib.Str2et(in.Bytes())
		return nil
	})
	return Et(et), err
}

var (
	itemCalendar = cstr.MustNew("CALENDAR")
	itemSystem   = cstr.MustNew("SYSTEM")
)

// SetDefaultCalendar sets the calendar used to parse and format calendar
// strings that do not name one.
func SetDefaultCalendar[C Calendar](t *Token) error {
	return setTimeDefault(t, "SetDefaultCalendar", itemCalendar, calendarOf[C]().calendarName())
}

// DefaultCalendar returns the name of the default calendar: GREGORIAN,
// JULIAN or MIXED.
func DefaultCalendar(t *Token) (string, error) {
	return getTimeDefault(t, "DefaultCalendar", itemCalendar)
}

// SetDefaultTimeSystem sets the time system assumed by StrToEt for strings
// that do not name one.
func SetDefaultTimeSystem[S Scale](t *Token) error {
	return setTimeDefault(t, "SetDefaultTimeSystem", itemSystem, scaleOf[S]())
}

// DefaultTimeSystem returns the default input time system.
func DefaultTimeSystem(t *Token) (string, error) {
	return getTimeDefault(t, "DefaultTimeSystem", itemSystem)
}

func setTimeDefault(t *Token, op string, item *cstr.Buffer, value string) error {
	v := cstr.MustNew(value)
	return t.call(op, func(lib backend.Library) error {
		lib.Timdef(opSet.Bytes(), item.Bytes(), v.Bytes())
		return nil
	})
}

func getTimeDefault(t *Token, op string, item *cstr.Buffer) (string, error) {
	var s string
	err := t.call(op, func(lib backend.Library) error {
		out := cstr.Output(backend.TimeDefLen)
		lib.Timdef(opGet.Bytes(), item.Bytes(), out)
		s = decode(out)
		return nil
	})
	return s, err
}

// JulianDate is a Julian date in time scale S.
type JulianDate[S Scale] struct {
	Value float64
}

func (j JulianDate[S]) String() string {
	return "JD " + scaleOf[S]() + " " + strconv.FormatFloat(j.Value, 'f', -1, 64)
}

// Et converts the Julian date to ephemeris time.
func (j JulianDate[S]) Et(t *Token) (Et, error) {
	return StrToEt(t, j.String())
}

// EtToJulian converts ephemeris time to a Julian date in scale S.
func EtToJulian[S Scale](t *Token, et Et) (JulianDate[S], error) {
	s, err := TimeOut(t, et, "JULIAND.############# ::"+scaleOf[S](), 40)
	if err != nil {
		return JulianDate[S]{}, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return JulianDate[S]{}, fmt.Errorf("cspice: parse Julian date %q: %w", s, err)
	}
	return JulianDate[S]{Value: v}, nil
}

// ConvertJulian re-expresses a Julian date in another time scale.
func ConvertJulian[From, To Scale](t *Token, j JulianDate[From]) (JulianDate[To], error) {
	from, to := scaleOf[From](), scaleOf[To]()
	if from == to {
		return JulianDate[To]{Value: j.Value}, nil
	}
	if from != "UTC" && to != "UTC" {
		v, err := UnitTime(t, j.Value, TimeSystem("JD"+from), TimeSystem("JD"+to))
		return JulianDate[To]{Value: v}, err
	}
	et, err := j.Et(t)
	if err != nil {
		return JulianDate[To]{}, err
	}
	return EtToJulian[To](t, et)
}

// TimeSystem names a uniform time system understood by UnitTime.
type TimeSystem string

const (
	SystemTAI   TimeSystem = "TAI"
	SystemTDT   TimeSystem = "TDT"
	SystemTDB   TimeSystem = "TDB"
	SystemET    TimeSystem = "ET"
	SystemJDTDB TimeSystem = "JDTDB"
	SystemJDTDT TimeSystem = "JDTDT"
	SystemJED   TimeSystem = "JED"
)

// UnitTime converts an epoch between uniform time systems.
func UnitTime(t *Token, epoch float64, from, to TimeSystem) (float64, error) {
	in, err := cstr.New(string(from))
	if err != nil {
		return 0, err
	}
	out, err := cstr.New(string(to))
	if err != nil {
		return 0, err
	}
	var v float64
	err = t.call("UnitTime", func(lib backend.Library) error {
		v = lib.Unitim(epoch, in.Bytes(), out.Bytes())
		return nil
	})
	return v, err
}
