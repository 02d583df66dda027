package cspice

import (
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// BodyCode translates a body name, or the decimal form of an ID code, to its
// NAIF ID code. found is false when the name is unknown.
func BodyCode[S cstr.Text](t *Token, name S) (code int, found bool, err error) {
	buf, err := cstr.From(name)
	if err != nil {
		return 0, false, err
	}
	err = t.call("BodyCode", func(lib backend.Library) error {
		code, found = lib.Bodn2c(buf.Bytes())
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return code, found, nil
}

// BodyName translates a NAIF ID code to the body's preferred name.
func BodyName(t *Token, code int) (name string, found bool, err error) {
	err = t.call("BodyName", func(lib backend.Library) error {
		out := cstr.Output(backend.BodyNameLen)
		found = lib.Bodc2n(code, out)
		name = decode(out)
		return nil
	})
	if err != nil || !found {
		return "", false, err
	}
	return name, true, nil
}
