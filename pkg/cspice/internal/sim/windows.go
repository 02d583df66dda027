package sim

import (
	"math"
	"sort"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

type interval struct{ left, right float64 }

// intervals reads a window, signalling if w is not a valid double cell of
// even cardinality.
func (s *Sim) intervals(w *backend.Cell) ([]interval, bool) {
	if w.Type != backend.Double {
		s.signal("SPICE(TYPEMISMATCH)", "Window must be a double precision cell; found %s.", w.Type)
		return nil, false
	}
	if w.Card%2 != 0 {
		s.signal("SPICE(UNMATCHENDPTS)", "Window cardinality %d is odd.", w.Card)
		return nil, false
	}
	data := w.DoubleData()
	out := make([]interval, 0, w.Card/2)
	for i := 0; i < w.Card; i += 2 {
		out = append(out, interval{data[i], data[i+1]})
	}
	w.Init = true
	return out, true
}

// store writes ivs into w. If they do not fit, as many as fit are written and
// WINDOWEXCESS is signalled.
func (s *Sim) store(w *backend.Cell, ivs []interval) {
	if w.Type != backend.Double {
		s.signal("SPICE(TYPEMISMATCH)", "Window must be a double precision cell; found %s.", w.Type)
		return
	}
	fit := min(len(ivs), w.Size/2)
	data := w.DoubleData()
	for i := range fit {
		data[2*i] = ivs[i].left
		data[2*i+1] = ivs[i].right
	}
	w.Card = 2 * fit
	w.IsSet = true
	w.Init = true
	if fit < len(ivs) {
		s.signal("SPICE(WINDOWEXCESS)", "The window requires %d endpoints but has room for %d.", 2*len(ivs), w.Size)
	}
}

// merge sorts intervals and merges those that overlap or touch.
func merge(ivs []interval) []interval {
	if len(ivs) == 0 {
		return ivs
	}
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].left < ivs[j].left })
	out := []interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.left <= last.right {
			last.right = math.Max(last.right, iv.right)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (s *Sim) Wncard(w *backend.Cell) int {
	defer s.enter("wncard_c")()
	if s.returning() {
		return 0
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return 0
	}
	return len(ivs)
}

func (s *Sim) Wninsd(left, right float64, w *backend.Cell) {
	defer s.enter("wninsd_c")()
	if s.returning() {
		return
	}
	if left > right {
		s.signal("SPICE(BADENDPOINTS)", "Left endpoint %g exceeds right endpoint %g.", left, right)
		return
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return
	}
	s.store(w, merge(append(ivs, interval{left, right})))
}

func (s *Sim) Wnunid(a, b, c *backend.Cell) {
	defer s.enter("wnunid_c")()
	if s.returning() {
		return
	}
	ia, ok1 := s.intervals(a)
	ib, ok2 := s.intervals(b)
	if !ok1 || !ok2 {
		return
	}
	s.store(c, merge(append(append([]interval(nil), ia...), ib...)))
}

func (s *Sim) Wnintd(a, b, c *backend.Cell) {
	defer s.enter("wnintd_c")()
	if s.returning() {
		return
	}
	ia, ok1 := s.intervals(a)
	ib, ok2 := s.intervals(b)
	if !ok1 || !ok2 {
		return
	}
	s.store(c, intersect(ia, ib))
}

func intersect(a, b []interval) []interval {
	var out []interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		l := math.Max(a[i].left, b[j].left)
		r := math.Min(a[i].right, b[j].right)
		if l <= r {
			out = append(out, interval{l, r})
		}
		if a[i].right < b[j].right {
			i++
		} else {
			j++
		}
	}
	return out
}

func (s *Sim) Wndifd(a, b, c *backend.Cell) {
	defer s.enter("wndifd_c")()
	if s.returning() {
		return
	}
	ia, ok1 := s.intervals(a)
	ib, ok2 := s.intervals(b)
	if !ok1 || !ok2 {
		return
	}
	var out []interval
	for _, iv := range ia {
		pieces := []interval{iv}
		for _, cut := range ib {
			var next []interval
			for _, p := range pieces {
				if cut.right <= p.left || cut.left >= p.right {
					next = append(next, p)
					continue
				}
				if cut.left > p.left {
					next = append(next, interval{p.left, cut.left})
				}
				if cut.right < p.right {
					next = append(next, interval{cut.right, p.right})
				}
			}
			pieces = next
		}
		out = append(out, pieces...)
	}
	s.store(c, out)
}

func (s *Sim) Wncomd(left, right float64, w, result *backend.Cell) {
	defer s.enter("wncomd_c")()
	if s.returning() {
		return
	}
	if left > right {
		s.signal("SPICE(BADENDPOINTS)", "Left endpoint %g exceeds right endpoint %g.", left, right)
		return
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return
	}
	var out []interval
	cursor := left
	for _, iv := range ivs {
		if iv.right < left {
			continue
		}
		if iv.left > right {
			break
		}
		if iv.left > cursor {
			out = append(out, interval{cursor, iv.left})
		}
		cursor = math.Max(cursor, iv.right)
	}
	if cursor < right {
		out = append(out, interval{cursor, right})
	}
	s.store(result, out)
}

func (s *Sim) Wncond(left, right float64, w *backend.Cell) {
	defer s.enter("wncond_c")()
	if s.returning() {
		return
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return
	}
	var out []interval
	for _, iv := range ivs {
		iv.left += left
		iv.right -= right
		if iv.left <= iv.right {
			out = append(out, iv)
		}
	}
	s.store(w, out)
}

func (s *Sim) Wnexpd(left, right float64, w *backend.Cell) {
	defer s.enter("wnexpd_c")()
	if s.returning() {
		return
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return
	}
	var out []interval
	for _, iv := range ivs {
		iv.left -= left
		iv.right += right
		if iv.left <= iv.right {
			out = append(out, iv)
		}
	}
	s.store(w, merge(out))
}

func (s *Sim) Wnextd(side byte, w *backend.Cell) {
	defer s.enter("wnextd_c")()
	if s.returning() {
		return
	}
	if side != 'L' && side != 'l' && side != 'R' && side != 'r' {
		s.signal("SPICE(INVALIDENDPNTSPEC)", "Endpoint specification '%c' is not L or R.", side)
		return
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return
	}
	out := make([]interval, 0, len(ivs))
	for _, iv := range ivs {
		p := iv.left
		if side == 'R' || side == 'r' {
			p = iv.right
		}
		if len(out) > 0 && out[len(out)-1].left == p {
			continue
		}
		out = append(out, interval{p, p})
	}
	s.store(w, out)
}

func (s *Sim) Wnfetd(w *backend.Cell, n int) (float64, float64) {
	defer s.enter("wnfetd_c")()
	if s.returning() {
		return 0, 0
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return 0, 0
	}
	if n < 0 || n >= len(ivs) {
		s.signal("SPICE(NOINTERVAL)", "Interval %d does not exist; the window holds %d intervals.", n, len(ivs))
		return 0, 0
	}
	return ivs[n].left, ivs[n].right
}

func (s *Sim) Wnfild(small float64, w *backend.Cell) {
	defer s.enter("wnfild_c")()
	if s.returning() {
		return
	}
	ivs, ok := s.intervals(w)
	if !ok || len(ivs) == 0 {
		return
	}
	out := []interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.left-last.right <= small {
			last.right = iv.right
			continue
		}
		out = append(out, iv)
	}
	s.store(w, out)
}

func (s *Sim) Wnfltd(small float64, w *backend.Cell) {
	defer s.enter("wnfltd_c")()
	if s.returning() {
		return
	}
	ivs, ok := s.intervals(w)
	if !ok {
		return
	}
	var out []interval
	for _, iv := range ivs {
		if iv.right-iv.left > small {
			out = append(out, iv)
		}
	}
	s.store(w, out)
}

func (s *Sim) Wnelmd(point float64, w *backend.Cell) bool {
	defer s.enter("wnelmd_c")()
	if s.returning() {
		return false
	}
	ivs, _ := s.intervals(w)
	for _, iv := range ivs {
		if point >= iv.left && point <= iv.right {
			return true
		}
	}
	return false
}

func (s *Sim) Wnincd(left, right float64, w *backend.Cell) bool {
	defer s.enter("wnincd_c")()
	if s.returning() {
		return false
	}
	ivs, _ := s.intervals(w)
	for _, iv := range ivs {
		if left >= iv.left && right <= iv.right {
			return left <= right
		}
	}
	return false
}

func (s *Sim) Wnreld(a *backend.Cell, op []byte, b *backend.Cell) bool {
	defer s.enter("wnreld_c")()
	if s.returning() {
		return false
	}
	ia, ok1 := s.intervals(a)
	ib, ok2 := s.intervals(b)
	if !ok1 || !ok2 {
		return false
	}
	equal := len(ia) == len(ib)
	for i := 0; equal && i < len(ia); i++ {
		equal = ia[i] == ib[i]
	}
	subset := func(x, y []interval) bool {
		for _, iv := range x {
			inside := false
			for _, jv := range y {
				if iv.left >= jv.left && iv.right <= jv.right {
					inside = true
					break
				}
			}
			if !inside {
				return false
			}
		}
		return true
	}
	switch o := strings.TrimSpace(cstr.FromBuffer(op)); o {
	case "=":
		return equal
	case "<>":
		return !equal
	case "<=":
		return subset(ia, ib)
	case "<":
		return subset(ia, ib) && !equal
	case ">=":
		return subset(ib, ia)
	case ">":
		return subset(ib, ia) && !equal
	default:
		s.signal("SPICE(INVALIDOPERATION)", "Relational operator '%s' is not recognized.", o)
		return false
	}
}

func (s *Sim) Wnsumd(w *backend.Cell) (meas, avg, stddev float64, idxsml, idxlon int) {
	defer s.enter("wnsumd_c")()
	if s.returning() {
		return
	}
	ivs, ok := s.intervals(w)
	if !ok || len(ivs) == 0 {
		return
	}
	var sumsq float64
	shortest, longest := 0, 0
	for i, iv := range ivs {
		m := iv.right - iv.left
		meas += m
		sumsq += m * m
		if m < ivs[shortest].right-ivs[shortest].left {
			shortest = i
		}
		if m > ivs[longest].right-ivs[longest].left {
			longest = i
		}
	}
	n := float64(len(ivs))
	avg = meas / n
	stddev = math.Sqrt(math.Max(0, sumsq/n-avg*avg))
	return meas, avg, stddev, 2 * shortest, 2 * longest
}

func (s *Sim) Wnvald(size, n int, w *backend.Cell) {
	defer s.enter("wnvald_c")()
	if s.returning() {
		return
	}
	switch {
	case w.Type != backend.Double:
		s.signal("SPICE(TYPEMISMATCH)", "Window must be a double precision cell; found %s.", w.Type)
		return
	case n%2 != 0:
		s.signal("SPICE(UNMATCHENDPTS)", "The number of endpoints %d is odd.", n)
		return
	case size%2 != 0:
		s.signal("SPICE(INVALIDSIZE)", "The window size %d is odd.", size)
		return
	case n > size || size > w.Size:
		s.signal("SPICE(INVALIDCARDINALITY)", "Cannot validate %d endpoints in a window of size %d.", n, size)
		return
	}
	data := w.DoubleData()
	ivs := make([]interval, 0, n/2)
	for i := 0; i < n; i += 2 {
		if data[i] > data[i+1] {
			s.signal("SPICE(BADENDPOINTS)", "Left endpoint %g of interval %d exceeds right endpoint %g.", data[i], i/2, data[i+1])
			return
		}
		ivs = append(ivs, interval{data[i], data[i+1]})
	}
	w.Size = size
	s.store(w, merge(ivs))
}
