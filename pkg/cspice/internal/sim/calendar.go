package sim

// Calendar arithmetic on Julian day numbers. Years use astronomical
// numbering: year 0 is 1 B.C.

const (
	j2000JDN = 2451545
	spd      = 86400.0

	// First day of the Gregorian calendar in the mixed calendar,
	// 1582 October 15.
	gregorianStartJDN = 2299161
)

var monthNames = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func dayOfMarchYear(m, d int64) int64 {
	mp := m - 3
	if m <= 2 {
		mp = m + 9
	}
	return (153*mp+2)/5 + d - 1
}

func gregorianToJDN(y, m, d int64) int64 {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	doe := yoe*365 + yoe/4 - yoe/100 + dayOfMarchYear(m, d)
	return era*146097 + doe + 1721120
}

func julianToJDN(y, m, d int64) int64 {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 4)
	yoe := y - era*4
	doe := yoe*365 + dayOfMarchYear(m, d)
	return era*1461 + doe + 1721118
}

func marchDayToDate(y, doy int64) (int64, int64, int64) {
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}

func jdnToGregorian(j int64) (int64, int64, int64) {
	z := j - 1721120
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	return marchDayToDate(yoe+era*400, doy)
}

func jdnToJulian(j int64) (int64, int64, int64) {
	z := j - 1721118
	era := floorDiv(z, 1461)
	doe := z - era*1461
	yoe := (doe - doe/1460) / 365
	doy := doe - 365*yoe
	return marchDayToDate(yoe+era*4, doy)
}

func dateToJDN(cal string, y, m, d int64) int64 {
	switch cal {
	case "JULIAN":
		return julianToJDN(y, m, d)
	case "MIXED":
		if y > 1582 || (y == 1582 && (m > 10 || (m == 10 && d >= 15))) {
			return gregorianToJDN(y, m, d)
		}
		return julianToJDN(y, m, d)
	default:
		return gregorianToJDN(y, m, d)
	}
}

func jdnToDate(cal string, j int64) (int64, int64, int64) {
	switch cal {
	case "JULIAN":
		return jdnToJulian(j)
	case "MIXED":
		if j >= gregorianStartJDN {
			return jdnToGregorian(j)
		}
		return jdnToJulian(j)
	default:
		return jdnToGregorian(j)
	}
}

func isLeap(cal string, y int64) bool {
	return dateToJDN(cal, y, 3, 1)-dateToJDN(cal, y, 2, 28) == 2
}

func daysInMonth(cal string, y, m int64) int64 {
	switch m {
	case 2:
		if isLeap(cal, y) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}
