//go:build !cgo || !cspice

package backend

// Native reports ErrNotBuilt: this binary was compiled without cgo or without
// the cspice build tag, so no CSPICE library is linked.
func Native() (Library, error) {
	return nil, ErrNotBuilt
}
