package sim

import (
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

func (s *Sim) Card(c *backend.Cell) int {
	defer s.enter("card_c")()
	if s.returning() {
		return 0
	}
	c.Init = true
	return c.Card
}

func (s *Sim) Size(c *backend.Cell) int {
	defer s.enter("size_c")()
	if s.returning() {
		return 0
	}
	c.Init = true
	return c.Size
}

func (s *Sim) Scard(card int, c *backend.Cell) {
	defer s.enter("scard_c")()
	if s.returning() {
		return
	}
	if card < 0 || card > c.Size {
		s.signal("SPICE(INVALIDCARDINALITY)", "Attempt to set cardinality of cell to %d. Valid range is 0:%d.", card, c.Size)
		return
	}
	c.Card = card
	c.Init = true
}

func (s *Sim) Copy(src, dst *backend.Cell) {
	defer s.enter("copy_c")()
	if s.returning() {
		return
	}
	if src.Type != dst.Type {
		s.signal("SPICE(TYPEMISMATCH)", "Input cell has type %s; output cell has type %s.", src.Type, dst.Type)
		return
	}
	n := min(src.Card, dst.Size)
	switch src.Type {
	case backend.Double:
		copy(dst.DoubleData()[:n], src.DoubleData()[:n])
	case backend.Int:
		copy(dst.IntData()[:n], src.IntData()[:n])
	case backend.Char:
		for i := range n {
			cstr.Put(dst.CharElem(i), cstr.FromBuffer(src.CharElem(i)))
		}
	}
	dst.Card = n
	dst.IsSet = src.IsSet
	dst.Init = true
	if n < src.Card {
		s.signal("SPICE(CELLTOOSMALL)", "Output cell has size %d; input cell has cardinality %d.", dst.Size, src.Card)
	}
}

func (s *Sim) Appndd(item float64, c *backend.Cell) {
	defer s.enter("appndd_c")()
	if s.returning() || !s.appendable(c, backend.Double) {
		return
	}
	c.DoubleData()[c.Card] = item
	c.Card++
}

func (s *Sim) Appndi(item int32, c *backend.Cell) {
	defer s.enter("appndi_c")()
	if s.returning() || !s.appendable(c, backend.Int) {
		return
	}
	c.IntData()[c.Card] = item
	c.Card++
}

func (s *Sim) Appndc(item []byte, c *backend.Cell) {
	defer s.enter("appndc_c")()
	if s.returning() || !s.appendable(c, backend.Char) {
		return
	}
	cstr.Put(c.CharElem(c.Card), cstr.FromBuffer(item))
	c.Card++
}

func (s *Sim) appendable(c *backend.Cell, t backend.DataType) bool {
	if c.Type != t {
		s.signal("SPICE(TYPEMISMATCH)", "Expected %s cell but found %s.", t, c.Type)
		return false
	}
	if c.Card >= c.Size {
		s.signal("SPICE(CELLTOOSMALL)", "Cell has size %d and is full.", c.Size)
		return false
	}
	c.Init = true
	return true
}
