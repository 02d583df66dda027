package spicetest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Leapseconds is a leapseconds kernel with the DELTET parameters and leap
// seconds of naif0012.tls.
const Leapseconds = `KPL/LSK

\begindata

DELTET/DELTA_T_A       =   32.184
DELTET/K               =    1.657D-3
DELTET/EB              =    1.671D-2
DELTET/M               = (  6.239996D0   1.99096871D-7 )

DELTET/DELTA_AT        = ( 10,   @1972-JAN-1
                           11,   @1972-JUL-1
                           12,   @1973-JAN-1
                           13,   @1974-JAN-1
                           14,   @1975-JAN-1
                           15,   @1976-JAN-1
                           16,   @1977-JAN-1
                           17,   @1978-JAN-1
                           18,   @1979-JAN-1
                           19,   @1980-JAN-1
                           20,   @1981-JUL-1
                           21,   @1982-JUL-1
                           22,   @1983-JUL-1
                           23,   @1985-JUL-1
                           24,   @1988-JAN-1
                           25,   @1990-JAN-1
                           26,   @1991-JAN-1
                           27,   @1992-JUL-1
                           28,   @1993-JUL-1
                           29,   @1994-JUL-1
                           30,   @1996-JAN-1
                           31,   @1997-JUL-1
                           32,   @1999-JAN-1
                           33,   @2006-JAN-1
                           34,   @2009-JAN-1
                           35,   @2012-JUL-1
                           36,   @2015-JUL-1
                           37,   @2017-JAN-1 )

\begintext
`

func write(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	if dir == "" {
		dir = tb.TempDir()
	}
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, data, 0o644))
	return path
}

// WriteLeapseconds writes Leapseconds to dir, or to a temporary directory
// when dir is empty, and returns its path.
func WriteLeapseconds(tb testing.TB, dir string) string {
	tb.Helper()
	return write(tb, dir, "naif0012.tls", []byte(Leapseconds))
}

// WriteTextKernel writes a text kernel whose data section is body.
func WriteTextKernel(tb testing.TB, dir, name, body string) string {
	tb.Helper()
	return write(tb, dir, name, []byte("KPL/FK\n\n\\begindata\n\n"+body+"\n\n\\begintext\n"))
}

// WriteMetaKernel writes a meta-kernel listing kernels.
func WriteMetaKernel(tb testing.TB, dir, name string, kernels ...string) string {
	tb.Helper()
	quoted := make([]string, len(kernels))
	for i, k := range kernels {
		quoted[i] = "'" + strings.ReplaceAll(k, "'", "''") + "'"
	}
	body := fmt.Sprintf("KERNELS_TO_LOAD = ( %s )", strings.Join(quoted, "\n                    "))
	return WriteTextKernel(tb, dir, name, body)
}

// WriteSPK writes a file carrying the ID word of a DAF SPK kernel. It loads
// as an SPK but holds no segments, so ephemeris queries against it report
// insufficient data.
func WriteSPK(tb testing.TB, dir, name string) string {
	tb.Helper()
	rec := make([]byte, 1024)
	copy(rec, "DAF/SPK ")
	return write(tb, dir, name, rec)
}
