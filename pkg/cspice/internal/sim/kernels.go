package sim

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
)

// Kernel types reported by kdata.
const (
	KindSPK  = "SPK"
	KindCK   = "CK"
	KindPCK  = "PCK"
	KindDSK  = "DSK"
	KindEK   = "EK"
	KindText = "TEXT"
	KindMeta = "META"
)

type kernel struct {
	file   string
	kind   string
	source string
	handle int
	vars   map[string]*poolVar
}

func (s *Sim) Furnsh(file []byte) {
	defer s.enter("furnsh_c")()
	if s.returning() {
		return
	}
	s.furnsh(strings.TrimSpace(cstr.FromBuffer(file)), "")
}

func (s *Sim) furnsh(name, source string) {
	defer s.chkin("FURNSH")()
	if name == "" {
		s.signal("SPICE(BLANKFILENAME)", "The input filename is blank.")
		return
	}
	if s.find(name) >= 0 {
		s.unload(name)
	}

	kind, data, err := sniff(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.signal("SPICE(NOSUCHFILE)", "The file '%s' could not be located.", name)
		return
	case err != nil:
		s.signal("SPICE(FILEREADFAILED)", "Attempt to read the file '%s' failed: %v", name, err)
		return
	case kind == "":
		s.signal("SPICE(UNKNOWNKERNELTYPE)", "The file '%s' is not a recognized SPICE kernel.", name)
		return
	}

	k := &kernel{file: name, kind: kind, source: source}
	if kind != KindText {
		s.nextHandle++
		k.handle = s.nextHandle
		s.kernels = append(s.kernels, k)
		return
	}

	vars, perr := parseTextKernel(data)
	if perr != nil {
		s.signal(perr.short, "%s in text kernel '%s'.", perr.msg, name)
		return
	}
	k.vars = vars
	meta, isMeta := vars["KERNELS_TO_LOAD"]
	if isMeta {
		k.kind = KindMeta
	}
	s.kernels = append(s.kernels, k)
	if !isMeta {
		return
	}
	if len(meta.strs) == 0 && len(meta.nums) > 0 {
		s.signal("SPICE(BADVARIABLETYPE)", "KERNELS_TO_LOAD in '%s' must hold strings.", name)
		return
	}
	for _, child := range meta.strs {
		s.furnsh(expandPathSymbols(child, vars), name)
		if s.failed {
			return
		}
	}
}

func (s *Sim) Unload(file []byte) {
	defer s.enter("unload_c")()
	if s.returning() {
		return
	}
	s.unload(strings.TrimSpace(cstr.FromBuffer(file)))
}

func (s *Sim) unload(name string) {
	i := s.find(name)
	if i < 0 {
		return
	}
	k := s.kernels[i]
	s.kernels = append(s.kernels[:i], s.kernels[i+1:]...)
	if k.kind != KindMeta {
		return
	}
	kept := s.kernels[:0]
	for _, c := range s.kernels {
		if c.source != name {
			kept = append(kept, c)
		}
	}
	s.kernels = kept
}

func (s *Sim) Kclear() {
	defer s.enter("kclear_c")()
	if s.returning() {
		return
	}
	s.kernels = nil
}

func (s *Sim) Ktotal(kind []byte) int {
	defer s.enter("ktotal_c")()
	if s.returning() {
		return 0
	}
	match := kindFilter(cstr.FromBuffer(kind))
	n := 0
	for _, k := range s.kernels {
		if match(k.kind) {
			n++
		}
	}
	return n
}

func (s *Sim) Kdata(which int, kind, file, filtyp, srcfil []byte) (int, bool) {
	defer s.enter("kdata_c")()
	if s.returning() {
		return 0, false
	}
	match := kindFilter(cstr.FromBuffer(kind))
	n := 0
	for _, k := range s.kernels {
		if !match(k.kind) {
			continue
		}
		if n == which {
			cstr.Put(file, k.file)
			cstr.Put(filtyp, k.kind)
			cstr.Put(srcfil, k.source)
			return k.handle, true
		}
		n++
	}
	cstr.Put(file, "")
	cstr.Put(filtyp, "")
	cstr.Put(srcfil, "")
	return 0, false
}

func (s *Sim) Tkvrsn(item, out []byte) {
	defer s.enter("tkvrsn_c")()
	if strings.ToUpper(strings.TrimSpace(cstr.FromBuffer(item))) != "TOOLKIT" {
		cstr.Put(out, "")
		return
	}
	cstr.Put(out, ToolkitVersion)
}

func (s *Sim) find(name string) int {
	for i, k := range s.kernels {
		if k.file == name {
			return i
		}
	}
	return -1
}

func (s *Sim) loaded(kind string) bool {
	for _, k := range s.kernels {
		if k.kind == kind {
			return true
		}
	}
	return false
}

// pool returns the value of a kernel pool variable. Later kernels override
// earlier ones unless they extend them with +=.
func (s *Sim) pool(name string) (*poolVar, bool) {
	var parts []*poolVar
	for i := len(s.kernels) - 1; i >= 0; i-- {
		v, ok := s.kernels[i].vars[name]
		if !ok {
			continue
		}
		parts = append(parts, v)
		if !v.extends {
			break
		}
	}
	switch len(parts) {
	case 0:
		return nil, false
	case 1:
		return parts[0], true
	}
	merged := &poolVar{}
	for i := len(parts) - 1; i >= 0; i-- {
		merged.nums = append(merged.nums, parts[i].nums...)
		merged.strs = append(merged.strs, parts[i].strs...)
	}
	return merged, true
}

func kindFilter(spec string) func(string) bool {
	want := map[string]bool{}
	for _, w := range strings.Fields(strings.ToUpper(spec)) {
		if w == "ALL" {
			return func(string) bool { return true }
		}
		want[w] = true
	}
	return func(kind string) bool { return want[kind] }
}

var binaryIDs = []struct {
	prefix string
	kind   string
}{
	{"DAF/SPK", KindSPK},
	{"NAIF/DAF", KindSPK},
	{"DAF/CK", KindCK},
	{"DAF/PCK", KindPCK},
	{"DAS/DSK", KindDSK},
	{"DAS/EK", KindEK},
}

// sniff classifies a file by its ID word the way getfat_c does. Text kernels
// are returned with their contents; binary kernels only by kind.
func sniff(name string) (string, []byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	for _, id := range binaryIDs {
		if bytes.HasPrefix(head, []byte(id.prefix)) {
			return id.kind, nil, nil
		}
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	data := append(head, rest...)
	if bytes.HasPrefix(data, []byte("KPL/")) || bytes.Contains(data, []byte(`\begindata`)) {
		return KindText, data, nil
	}
	return "", nil, nil
}

func expandPathSymbols(path string, vars map[string]*poolVar) string {
	syms, ok1 := vars["PATH_SYMBOLS"]
	vals, ok2 := vars["PATH_VALUES"]
	if !ok1 || !ok2 {
		return path
	}
	for i, sym := range syms.strs {
		if i >= len(vals.strs) {
			break
		}
		path = strings.ReplaceAll(path, "$"+sym, vals.strs[i])
	}
	return path
}
