package cspice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/spicetest"
)

func TestBodyCodes(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	tests := []struct {
		name  string
		code  int
		found bool
	}{
		{"EARTH", 399, true},
		{"earth", 399, true},
		{"  Solar   System Barycenter ", 0, true},
		{"-82", -82, true},
		{"VULCAN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, found, err := cspice.BodyCode(tok, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.code, code)
		})
	}

	name, found, err := cspice.BodyName(tok, 301)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "MOON", name)

	name, found, err = cspice.BodyName(tok, 123456)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, name)
}

func TestBodyCodesFromKernelPool(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))
	fk := spicetest.WriteTextKernel(t, "", "sat.tf",
		"NAIF_BODY_NAME += 'MY SAT'\nNAIF_BODY_CODE += -999")
	require.NoError(t, cspice.Furnish(tok, fk))

	code, found, err := cspice.BodyCode(tok, cstr.MustNew("my sat"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, -999, code)

	name, found, err := cspice.BodyName(tok, -999)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "MY SAT", name)
}

func TestSPKWithoutData(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	_, _, err := cspice.SPKPosition(tok, "MOON", 0, "J2000", cspice.AbCorrNone, "EARTH")
	assert.ErrorIs(t, err, cspice.ErrNoLoadedFiles)

	require.NoError(t, cspice.Furnish(tok, spicetest.WriteSPK(t, "", "empty.bsp")))
	_, _, err = cspice.SPKState(tok, "MOON", 0, "J2000", cspice.AbCorrLTS, "EARTH")
	assert.ErrorIs(t, err, cspice.ErrSPKInsuffData)
	_, _, err = cspice.SPKEasyPosition(tok, 301, 0, "J2000", cspice.AbCorrCN, 399)
	assert.ErrorIs(t, err, cspice.ErrSPKInsuffData)

	// Every error above was cleared before the call returned.
	require.NoError(t, cspice.CheckError(tok))
}

func TestSPKArgumentErrors(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	_, _, err := cspice.SPKPosition(tok, "MOON", 0, "NOT_A_FRAME", cspice.AbCorrNone, "EARTH")
	assert.ErrorIs(t, err, cspice.ErrUnknownFrame)
	_, _, err = cspice.SPKPosition(tok, "MOON", 0, "J2000", "LT+Q", "EARTH")
	assert.ErrorIs(t, err, cspice.ErrInvalidOption)
	_, _, err = cspice.SPKPosition(tok, "VULCAN", 0, "J2000", cspice.AbCorrNone, "EARTH")
	assert.ErrorIs(t, err, cspice.ErrIDCodeNotFound)
	_, _, err = cspice.SPKPosition(tok, "MOON\x00", 0, "J2000", cspice.AbCorrNone, "EARTH")
	assert.ErrorIs(t, err, cstr.ErrEmbeddedNul)
}

func TestSPKObserverIsTarget(t *testing.T) {
	tok := spicetest.Acquire(t, spicetest.New(t, cspice.Config{}))

	st, lt, err := cspice.SPKEasyState(tok, 399, 0, "J2000", cspice.AbCorrNone, 399)
	require.NoError(t, err)
	assert.Zero(t, lt)
	assert.Equal(t, cspice.Vector3{}, st.Position())
	assert.Equal(t, cspice.Vector3{}, st.Velocity())

	pos, _, err := cspice.SPKPosition(tok, "EARTH", 0, "ECLIPJ2000", cspice.AbCorrXCNS, "399")
	require.NoError(t, err)
	assert.Equal(t, cspice.Vector3{}, pos)
}
