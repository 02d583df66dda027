package cspice

import "github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"

// Vector3 is a rectangular 3-vector.
type Vector3 [3]float64

// Latitudinal coordinates. Angles are in radians, longitude in (-pi, pi].
type Latitudinal struct {
	Radius, Lon, Lat float64
}

// RaDec is range, right ascension in [0, 2pi) and declination, in radians.
type RaDec struct {
	Range, RA, Dec float64
}

// AzEl is range, azimuth and elevation in radians. The sign conventions are
// chosen per call with azccw and elplsz.
type AzEl struct {
	Range, Az, El float64
}

// RecLat converts rectangular to latitudinal coordinates.
func RecLat(t *Token, v Vector3) (Latitudinal, error) {
	var out Latitudinal
	err := t.call("RecLat", func(lib backend.Library) error {
		out.Radius, out.Lon, out.Lat = lib.Reclat(v)
		return nil
	})
	return out, err
}

// LatRec converts latitudinal to rectangular coordinates.
func LatRec(t *Token, c Latitudinal) (Vector3, error) {
	var out Vector3
	err := t.call("LatRec", func(lib backend.Library) error {
		out = lib.Latrec(c.Radius, c.Lon, c.Lat)
		return nil
	})
	return out, err
}

// RecRad converts rectangular coordinates to range, right ascension and
// declination.
func RecRad(t *Token, v Vector3) (RaDec, error) {
	var out RaDec
	err := t.call("RecRad", func(lib backend.Library) error {
		out.Range, out.RA, out.Dec = lib.Recrad(v)
		return nil
	})
	return out, err
}

// RadRec is the inverse of RecRad.
func RadRec(t *Token, c RaDec) (Vector3, error) {
	var out Vector3
	err := t.call("RadRec", func(lib backend.Library) error {
		out = lib.Radrec(c.Range, c.RA, c.Dec)
		return nil
	})
	return out, err
}

// RecAzl converts rectangular coordinates to range, azimuth and elevation.
// azccw makes azimuth increase counterclockwise about +Z; elplsz makes
// elevation positive toward +Z.
func RecAzl(t *Token, v Vector3, azccw, elplsz bool) (AzEl, error) {
	var out AzEl
	err := t.call("RecAzl", func(lib backend.Library) error {
		out.Range, out.Az, out.El = lib.Recazl(v, azccw, elplsz)
		return nil
	})
	return out, err
}

// AzlRec is the inverse of RecAzl.
func AzlRec(t *Token, c AzEl, azccw, elplsz bool) (Vector3, error) {
	var out Vector3
	err := t.call("AzlRec", func(lib backend.Library) error {
		out = lib.Azlrec(c.Range, c.Az, c.El, azccw, elplsz)
		return nil
	})
	return out, err
}

// VectorSeparation returns the angle between a and b in [0, pi]. It is 0
// when either vector is zero.
func VectorSeparation(t *Token, a, b Vector3) (float64, error) {
	var out float64
	err := t.call("VectorSeparation", func(lib backend.Library) error {
		out = lib.Vsep(a, b)
		return nil
	})
	return out, err
}
