package cspice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/spicetest"
)

// j2000UTC is ET at 2000-01-01T12:00:00 UTC: 32 leap seconds plus the
// 32.184 s TAI to TT offset plus the small TDB periodic term.
const j2000UTC = 64.1839

func withLeapseconds(t *testing.T) *cspice.Token {
	t.Helper()
	lsk := spicetest.WriteLeapseconds(t, "")
	return spicetest.Acquire(t, spicetest.New(t, cspice.Config{Kernels: []string{lsk}}))
}

func TestStrToEt(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	et, err := cspice.StrToEt(tok, "2000-01-01T12:00:00 TDB")
	require.NoError(t, err)
	assert.Zero(t, et)

	_, err = cspice.StrToEt(tok, "2000-01-01T12:00:00")
	assert.ErrorIs(t, err, cspice.ErrNoLeapSeconds)

	_, err = cspice.StrToEt(tok, "the twelfth of never")
	assert.ErrorIs(t, err, cspice.ErrUnparsedTime)
}

func TestStrToEtUTC(t *testing.T) {
	tok := withLeapseconds(t)

	et, err := cspice.StrToEt(tok, "2000-01-01T12:00:00")
	require.NoError(t, err)
	assert.InDelta(t, j2000UTC, float64(et), 1e-3)

	same, err := cspice.StrToEt(tok, "1 JAN 2000 12:00:00 UTC")
	require.NoError(t, err)
	assert.InDelta(t, float64(et), float64(same), 1e-9)
}

func TestTimeOut(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	s, err := cspice.TimeOut(tok, 0, "YYYY MON DD HR:MN:SC.### ::TDB", 40)
	require.NoError(t, err)
	assert.Equal(t, "2000 JAN 01 12:00:00.000", s)

	s, err = cspice.TimeOut(tok, 0, "YYYY MON DD ::TDB", 4)
	require.NoError(t, err)
	assert.Equal(t, "2000", s)

	// Pictures default to UTC, which needs leapseconds.
	_, err = cspice.TimeOut(tok, 0, "YYYY MON DD", 40)
	assert.ErrorIs(t, err, cspice.ErrNoLeapSeconds)
}

func TestJulianDate(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	jd, err := cspice.EtToJulian[cspice.TDB](tok, 0)
	require.NoError(t, err)
	assert.Equal(t, 2451545.0, jd.Value)
	assert.Equal(t, "JD TDB 2451545", jd.String())

	et, err := cspice.JulianDate[cspice.TDB]{Value: 2451546.5}.Et(tok)
	require.NoError(t, err)
	assert.InDelta(t, 1.5*86400, float64(et), 1e-6)
}

func TestConvertJulian(t *testing.T) {
	tok := withLeapseconds(t)

	same, err := cspice.ConvertJulian[cspice.TDB, cspice.TDB](tok, cspice.JulianDate[cspice.TDB]{Value: 2451545})
	require.NoError(t, err)
	assert.Equal(t, 2451545.0, same.Value)

	tdt, err := cspice.ConvertJulian[cspice.TDB, cspice.TDT](tok, cspice.JulianDate[cspice.TDB]{Value: 2451545})
	require.NoError(t, err)
	assert.InDelta(t, 2451545.0, tdt.Value, 1e-8)

	tdb, err := cspice.ConvertJulian[cspice.UTC, cspice.TDB](tok, cspice.JulianDate[cspice.UTC]{Value: 2451545})
	require.NoError(t, err)
	assert.InDelta(t, 2451545+j2000UTC/86400, tdb.Value, 1e-7)
}

func TestEtToDateTime(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	d, err := cspice.EtToDateTime[cspice.Gregorian, cspice.TDB](tok, 0)
	require.NoError(t, err)
	assert.Equal(t, cspice.DateTime[cspice.Gregorian, cspice.TDB]{
		Year: 2000, Month: 1, Day: 1, Hour: 12,
	}, d)
	assert.Equal(t, "1 JAN 2000 A.D. 12:00:00.000000000 TDB", d.String())
}

func TestDateTimeRoundTripBeforeCommonEra(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	d := cspice.DateTime[cspice.Julian, cspice.TDB]{Year: -599, Month: 12, Day: 26}
	assert.Equal(t, "26 DEC 600 B.C. 00:00:00.000000000 TDB", d.String())

	et, err := d.Et(tok)
	require.NoError(t, err)
	back, err := cspice.EtToDateTime[cspice.Julian, cspice.TDB](tok, et)
	require.NoError(t, err)
	assert.Equal(t, d, back)

	cal, err := cspice.DefaultCalendar(tok)
	require.NoError(t, err)
	assert.Equal(t, "GREGORIAN", cal)
}

func TestMixedCalendarSkipsTenDays(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	last, err := cspice.DateTime[cspice.Mixed, cspice.TDB]{Year: 1582, Month: 10, Day: 4}.Et(tok)
	require.NoError(t, err)
	first, err := cspice.DateTime[cspice.Mixed, cspice.TDB]{Year: 1582, Month: 10, Day: 15}.Et(tok)
	require.NoError(t, err)
	assert.InDelta(t, 86400, float64(first-last), 1e-6)
}

func TestLeapSecondDateTime(t *testing.T) {
	tok := withLeapseconds(t)

	leap, err := cspice.StrToEt(tok, "2016-12-31T23:59:60")
	require.NoError(t, err)

	d, err := cspice.EtToDateTime[cspice.Gregorian, cspice.UTC](tok, leap+0.5)
	require.NoError(t, err)
	assert.Equal(t, 2016, d.Year)
	assert.Equal(t, 23, d.Hour)
	assert.Equal(t, 59, d.Minute)
	assert.InDelta(t, 60.5, d.Second, 1e-6)

	et, err := d.Et(tok)
	require.NoError(t, err)
	assert.InDelta(t, float64(leap+0.5), float64(et), 1e-6)
}

func TestDateTimeFailureRestoresCalendar(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	require.NoError(t, cspice.SetDefaultCalendar[cspice.Julian](tok))

	_, err := cspice.DateTime[cspice.Gregorian, cspice.UTC]{Year: 2000, Month: 1, Day: 1}.Et(tok)
	require.ErrorIs(t, err, cspice.ErrNoLeapSeconds)

	cal, err := cspice.DefaultCalendar(tok)
	require.NoError(t, err)
	assert.Equal(t, "JULIAN", cal)
}

func TestTimeDefaults(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	sys, err := cspice.DefaultTimeSystem(tok)
	require.NoError(t, err)
	assert.Equal(t, "UTC", sys)

	require.NoError(t, cspice.SetDefaultTimeSystem[cspice.TDB](tok))
	sys, err = cspice.DefaultTimeSystem(tok)
	require.NoError(t, err)
	assert.Equal(t, "TDB", sys)

	// No leapseconds needed once strings default to TDB.
	et, err := cspice.StrToEt(tok, "2000-01-01T12:00:00")
	require.NoError(t, err)
	assert.Zero(t, et)

	require.NoError(t, cspice.SetDefaultCalendar[cspice.Mixed](tok))
	cal, err := cspice.DefaultCalendar(tok)
	require.NoError(t, err)
	assert.Equal(t, "MIXED", cal)
}

func TestUnitTime(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	jd, err := cspice.UnitTime(tok, 0, cspice.SystemTDB, cspice.SystemJDTDB)
	require.NoError(t, err)
	assert.Equal(t, 2451545.0, jd)

	_, err = cspice.UnitTime(tok, 0, cspice.SystemTDB, cspice.SystemTAI)
	assert.ErrorIs(t, err, cspice.ErrMissingTimeInfo)
}

func TestZone(t *testing.T) {
	tests := []struct {
		seconds int
		want    cspice.Zone
		marker  string
	}{
		{9000, cspice.NewZone(2, 30), "UTC+2:30"},
		{-9000, cspice.NewZone(-2, 30), "UTC-2:30"},
		{-9001, cspice.NewZone(-2, 30), "UTC-2:30"},
		{-9050, cspice.NewZone(-2, 31), "UTC-2:31"},
		{-1800, cspice.Zone(-30), "UTC-0:30"},
		{19800, cspice.NewZone(5, 30), "UTC+5:30"},
	}
	for _, tt := range tests {
		z := cspice.ZoneFromSeconds(tt.seconds)
		assert.Equal(t, tt.want, z, "%d s", tt.seconds)
		assert.Equal(t, tt.marker, z.String())
	}
	assert.Equal(t, -9000, cspice.NewZone(-2, 30).Seconds())
	assert.Equal(t, 9000, cspice.NewZone(2, 30).Seconds())
}

func TestDateTimeInZone(t *testing.T) {
	tok := withLeapseconds(t)
	noon, err := cspice.StrToEt(tok, "2000-01-01T12:00:00")
	require.NoError(t, err)
	et := noon + 0.5

	d, err := cspice.EtToDateTimeIn[cspice.Gregorian, cspice.UTC](tok, et, cspice.NewZone(5, 30))
	require.NoError(t, err)
	assert.Equal(t, [5]int{2000, 1, 1, 17, 30}, [5]int{d.Year, d.Month, d.Day, d.Hour, d.Minute})
	assert.InDelta(t, 0.5, d.Second, 1e-6)
	assert.Equal(t, cspice.NewZone(5, 30), d.Zone)

	back, err := d.Et(tok)
	require.NoError(t, err)
	assert.InDelta(t, float64(et), float64(back), 1e-6)

	west := cspice.DateTime[cspice.Gregorian, cspice.UTC]{
		Year: 2000, Month: 1, Day: 1, Hour: 9, Minute: 30, Second: 0.5, Zone: cspice.NewZone(-2, 30),
	}
	assert.Equal(t, "1 JAN 2000 A.D. 09:30:00.500000000 UTC-2:30", west.String())
	back, err = west.Et(tok)
	require.NoError(t, err)
	assert.InDelta(t, float64(et), float64(back), 1e-6)

	// A zero zone is plain UTC.
	d, err = cspice.EtToDateTime[cspice.Gregorian, cspice.UTC](tok, et)
	require.NoError(t, err)
	assert.Equal(t, 12, d.Hour)
	assert.Zero(t, d.Zone)
	assert.Contains(t, d.String(), " UTC")
	assert.NotContains(t, d.String(), "UTC+")
}

func TestLeapSecondInZone(t *testing.T) {
	tok := withLeapseconds(t)
	leap, err := cspice.StrToEt(tok, "2016-12-31T23:59:60")
	require.NoError(t, err)

	d, err := cspice.EtToDateTimeIn[cspice.Gregorian, cspice.UTC](tok, leap+0.5, cspice.NewZone(5, 30))
	require.NoError(t, err)
	assert.Equal(t, [5]int{2017, 1, 1, 5, 29}, [5]int{d.Year, d.Month, d.Day, d.Hour, d.Minute})
	assert.InDelta(t, 60.5, d.Second, 1e-6)

	et, err := d.Et(tok)
	require.NoError(t, err)
	assert.InDelta(t, float64(leap+0.5), float64(et), 1e-6)
}

func TestZoneOutsideUTC(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	_, err := cspice.DateTime[cspice.Gregorian, cspice.TDB]{Year: 2000, Month: 1, Day: 1, Zone: 60}.Et(tok)
	assert.ErrorIs(t, err, cspice.ErrZoneOutsideUTC)
	_, err = cspice.EtToDateTimeIn[cspice.Gregorian, cspice.TDT](tok, 0, 60)
	assert.ErrorIs(t, err, cspice.ErrZoneOutsideUTC)

	_, err = cspice.EtToDateTimeIn[cspice.Gregorian, cspice.UTC](tok, 0, cspice.NewZone(30, 0))
	assert.Error(t, err)
}

func TestSecondsNeverRoundIntoNextMinute(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	for _, sec := range []float64{59.9999999999, 59.9999999999996} {
		d := cspice.DateTime[cspice.Gregorian, cspice.TDB]{Year: 2000, Month: 1, Day: 1, Hour: 11, Minute: 59, Second: sec}
		assert.Equal(t, "1 JAN 2000 A.D. 11:59:59.999999999 TDB", d.String())
		et, err := d.Et(tok)
		require.NoError(t, err)
		assert.InDelta(t, 0, float64(et), 1e-6)
	}

	d := cspice.DateTime[cspice.Gregorian, cspice.TDB]{Year: 2000, Month: 1, Day: 1, Hour: 12, Second: 5.25}
	assert.Equal(t, "1 JAN 2000 A.D. 12:00:05.250000000 TDB", d.String())
}
