package cspice

import (
	"fmt"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// Shape is the shape model of a target body in a geometry search.
type Shape string

const (
	ShapePoint  Shape = "POINT"
	ShapeSphere Shape = "SPHERE"
)

// SearchRelation is the condition a geometry search looks for.
type SearchRelation string

const (
	SearchGreater SearchRelation = ">"
	SearchEqual   SearchRelation = "="
	SearchLess    SearchRelation = "<"
	SearchAbsMax  SearchRelation = "ABSMAX"
	SearchAbsMin  SearchRelation = "ABSMIN"
	SearchLocMax  SearchRelation = "LOCMAX"
	SearchLocMin  SearchRelation = "LOCMIN"
)

// SeparationParams describes an angular separation search. Frames are only
// consulted for ShapeSphere bodies and may be left empty otherwise.
type SeparationParams struct {
	Target1  string
	Shape1   Shape
	Frame1   string
	Target2  string
	Shape2   Shape
	Frame2   string
	AbCorr   AbCorr
	Observer string

	Relation SearchRelation
	// RefValue is the separation in radians compared against for the
	// ordinary relations.
	RefValue float64
	// Adjust widens the absolute extremum searches; 0 otherwise.
	Adjust float64
	// Step is the search step in seconds. It must be shorter than the
	// shortest interval of interest.
	Step float64
	// MaxIntervals bounds the workspace and the result window.
	MaxIntervals int
}

func (p SeparationParams) args() (*backend.GfsepArgs, error) {
	frame := func(f string) string {
		if f == "" {
			return "NULL"
		}
		return f
	}
	fields := []string{
		p.Target1, string(p.Shape1), frame(p.Frame1),
		p.Target2, string(p.Shape2), frame(p.Frame2),
		string(p.AbCorr), p.Observer, string(p.Relation),
	}
	bufs := make([][]byte, len(fields))
	for i, f := range fields {
		b, err := cstr.New(f)
		if err != nil {
			return nil, fmt.Errorf("cspice: separation search: %w", err)
		}
		bufs[i] = b.Bytes()
	}
	return &backend.GfsepArgs{
		Targ1: bufs[0], Shape1: bufs[1], Frame1: bufs[2],
		Targ2: bufs[3], Shape2: bufs[4], Frame2: bufs[5],
		Abcorr: bufs[6], Obsrvr: bufs[7], Relate: bufs[8],
		Refval: p.RefValue, Adjust: p.Adjust, Step: p.Step,
		Nintvls: p.MaxIntervals,
	}, nil
}

// SeparationSearch finds the times within confine at which the angular
// separation of two targets, seen from the observer, satisfies p.Relation.
func SeparationSearch(t *Token, p SeparationParams, confine *Window) (*Window, error) {
	args, err := p.args()
	if err != nil {
		return nil, err
	}
	out := NewWindow(max(p.MaxIntervals, confine.Capacity()))
	err = t.call("SeparationSearch", func(lib backend.Library) error {
		lib.Gfsep(args, confine.c, out.c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
