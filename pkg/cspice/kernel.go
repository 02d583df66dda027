package cspice

import (
	"context"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// KernelKind filters kernels by type in Kernels.
type KernelKind string

const (
	KindAll  KernelKind = "ALL"
	KindSPK  KernelKind = "SPK"
	KindCK   KernelKind = "CK"
	KindPCK  KernelKind = "PCK"
	KindDSK  KernelKind = "DSK"
	KindEK   KernelKind = "EK"
	KindText KernelKind = "TEXT"
	KindMeta KernelKind = "META"
)

// KernelInfo describes a loaded kernel.
type KernelInfo struct {
	File string
	Type KernelKind
	// Source is the meta-kernel that loaded File, or empty.
	Source string
	// Handle is the DAF or DAS handle of a binary kernel, 0 for text kernels.
	Handle int
}

// Furnish loads a kernel file, or every kernel listed by a meta-kernel, into
// the kernel pool. A missing file fails with ErrNoSuchFile.
func Furnish[S cstr.Text](t *Token, path S) error {
	buf, err := cstr.From(path)
	if err != nil {
		return err
	}
	err = t.call("Furnish", func(lib backend.Library) error {
		lib.Furnsh(buf.Bytes())
		return nil
	})
	if err == nil && t != nil && t.lib != nil {
		t.lib.log.Debug(context.Background(), "cspice: kernel loaded", "path", buf.String())
	}
	return err
}

// Unload removes a kernel from the pool. Unloading a meta-kernel also
// unloads the kernels it loaded. Unloading a file that is not loaded is not
// an error.
func Unload[S cstr.Text](t *Token, path S) error {
	buf, err := cstr.From(path)
	if err != nil {
		return err
	}
	return t.call("Unload", func(lib backend.Library) error {
		lib.Unload(buf.Bytes())
		return nil
	})
}

// ClearKernels unloads every kernel and clears the kernel pool.
func ClearKernels(t *Token) error {
	return t.call("ClearKernels", func(lib backend.Library) error {
		lib.Kclear()
		return nil
	})
}

// Kernels lists the loaded kernels of the given kinds in load order. With no
// kinds it lists all of them.
func Kernels(t *Token, kinds ...KernelKind) ([]KernelInfo, error) {
	spec := string(KindAll)
	if len(kinds) > 0 {
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = string(k)
		}
		spec = strings.Join(parts, " ")
	}
	kind, err := cstr.New(spec)
	if err != nil {
		return nil, err
	}

	var out []KernelInfo
	err = t.call("Kernels", func(lib backend.Library) error {
		n := lib.Ktotal(kind.Bytes())
		for i := range n {
			file := cstr.Output(backend.FileNameLen)
			typ := cstr.Output(backend.KernelTypeLen)
			src := cstr.Output(backend.FileNameLen)
			handle, found := lib.Kdata(i, kind.Bytes(), file, typ, src)
			if !found || lib.Failed() {
				break
			}
			out = append(out, KernelInfo{
				File:   decode(file),
				Type:   KernelKind(decode(typ)),
				Source: decode(src),
				Handle: handle,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var itemToolkit = cstr.MustNew("TOOLKIT")

// ToolkitVersion returns the version string of the linked toolkit, for
// example "CSPICE_N0067".
func ToolkitVersion(t *Token) (string, error) {
	var v string
	err := t.call("ToolkitVersion", func(lib backend.Library) error {
		out := cstr.Output(backend.VersionLen)
		lib.Tkvrsn(itemToolkit.Bytes(), out)
		v = decode(out)
		return nil
	})
	return v, err
}
