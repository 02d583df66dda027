package cstr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
)

func TestNewAppendsTerminator(t *testing.T) {
	buf, err := cstr.New("J2000")
	require.NoError(t, err)
	assert.Equal(t, []byte("J2000\x00"), buf.Bytes())
	assert.Equal(t, 5, buf.Len())
	assert.Equal(t, "J2000", buf.String())
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"SPICE(NOSUCHFILE)",
		"/tmp/kernels/de440s.bsp",
		"ünïcödé ✓",
		string(make([]byte, 0, 10)),
	}
	for _, s := range inputs {
		buf, err := cstr.New(s)
		require.NoError(t, err, "input %q", s)
		assert.Equal(t, s, cstr.FromBuffer(buf.Bytes()))
	}
}

func TestNewRejectsEmbeddedNul(t *testing.T) {
	buf, err := cstr.New("abc\x00def")
	require.ErrorIs(t, err, cstr.ErrEmbeddedNul)
	assert.Nil(t, buf)
	assert.Contains(t, err.Error(), "offset 3")
}

func TestMustNewPanicsOnEmbeddedNul(t *testing.T) {
	assert.Panics(t, func() { cstr.MustNew("\x00") })
}

func TestFromBorrowsBuffer(t *testing.T) {
	orig := cstr.MustNew("EARTH")
	got, err := cstr.From(orig)
	require.NoError(t, err)
	assert.Same(t, orig, got)

	fresh, err := cstr.From("EARTH")
	require.NoError(t, err)
	assert.NotSame(t, orig, fresh)
	assert.Equal(t, orig.Bytes(), fresh.Bytes())

	var nilBuf *cstr.Buffer
	_, err = cstr.From(nilBuf)
	assert.ErrorIs(t, err, cstr.ErrNilBuffer)
}

func TestFromBufferStopsAtFirstNul(t *testing.T) {
	buf := []byte{'a', 'b', 0, 'c', 0}
	assert.Equal(t, "ab", cstr.FromBuffer(buf))
}

func TestFromBufferPanicsWithoutNul(t *testing.T) {
	assert.PanicsWithError(t, "cstr: buffer is not nul terminated (2 bytes)", func() {
		cstr.FromBuffer([]byte{'a', 'b'})
	})
}

func TestDecodeIsLossy(t *testing.T) {
	s, err := cstr.Decode([]byte{'o', 'k', 0xff, 0})
	require.NoError(t, err)
	assert.Equal(t, "ok�", s)

	s, err = cstr.Decode([]byte{'x', 'y'})
	assert.ErrorIs(t, err, cstr.ErrMissingNul)
	assert.Equal(t, "xy", s)
}

func TestPutTruncates(t *testing.T) {
	out := cstr.Output(4)
	n := cstr.Put(out, "RETURN")
	assert.Equal(t, 3, n)
	assert.Equal(t, "RET", cstr.FromBuffer(out))

	assert.Equal(t, 0, cstr.Put(nil, "x"))
	assert.Len(t, cstr.Output(0), 1)
}

func TestSized(t *testing.T) {
	b, err := cstr.Sized("NULL", 8)
	require.NoError(t, err)
	assert.Len(t, b, 8)
	assert.Equal(t, "NULL", cstr.FromBuffer(b))

	_, err = cstr.Sized("SCREEN", 6)
	assert.ErrorIs(t, err, cstr.ErrTooLong)

	_, err = cstr.Sized("a\x00b", 8)
	assert.ErrorIs(t, err, cstr.ErrEmbeddedNul)
}
