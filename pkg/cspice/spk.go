package cspice

import (
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// AbCorr selects the aberration correction applied by the SPK readers.
type AbCorr string

const (
	AbCorrNone AbCorr = "NONE"
	// Reception corrections.
	AbCorrLT   AbCorr = "LT"
	AbCorrLTS  AbCorr = "LT+S"
	AbCorrCN   AbCorr = "CN"
	AbCorrCNS  AbCorr = "CN+S"
	// Transmission corrections.
	AbCorrXLT  AbCorr = "XLT"
	AbCorrXLTS AbCorr = "XLT+S"
	AbCorrXCN  AbCorr = "XCN"
	AbCorrXCNS AbCorr = "XCN+S"
)

// State is a position (km) followed by a velocity (km/s).
type State [6]float64

// Position returns the position half of s.
func (s State) Position() Vector3 { return Vector3{s[0], s[1], s[2]} }

// Velocity returns the velocity half of s.
func (s State) Velocity() Vector3 { return Vector3{s[3], s[4], s[5]} }

// SPKPosition returns the position of target relative to observer in frame
// ref at et, together with the one-way light time in seconds.
func SPKPosition[S cstr.Text](t *Token, target S, et Et, ref S, corr AbCorr, observer S) (Vector3, float64, error) {
	targ, frame, obs, ab, err := spkStrings(target, ref, corr, observer)
	if err != nil {
		return Vector3{}, 0, err
	}
	var (
		pos [3]float64
		lt  float64
	)
	err = t.call("SPKPosition", func(lib backend.Library) error {
		pos, lt = lib.Spkpos(targ.Bytes(), float64(et), frame.Bytes(), ab.Bytes(), obs.Bytes())
		return nil
	})
	return Vector3(pos), lt, err
}

// SPKState is like SPKPosition but returns the full state.
func SPKState[S cstr.Text](t *Token, target S, et Et, ref S, corr AbCorr, observer S) (State, float64, error) {
	targ, frame, obs, ab, err := spkStrings(target, ref, corr, observer)
	if err != nil {
		return State{}, 0, err
	}
	var (
		st [6]float64
		lt float64
	)
	err = t.call("SPKState", func(lib backend.Library) error {
		st, lt = lib.Spkezr(targ.Bytes(), float64(et), frame.Bytes(), ab.Bytes(), obs.Bytes())
		return nil
	})
	return State(st), lt, err
}

// SPKEasyPosition is SPKPosition with NAIF integer codes for the bodies.
func SPKEasyPosition[S cstr.Text](t *Token, target int, et Et, ref S, corr AbCorr, observer int) (Vector3, float64, error) {
	frame, err := cstr.From(ref)
	if err != nil {
		return Vector3{}, 0, err
	}
	ab, err := cstr.New(string(corr))
	if err != nil {
		return Vector3{}, 0, err
	}
	var (
		pos [3]float64
		lt  float64
	)
	err = t.call("SPKEasyPosition", func(lib backend.Library) error {
		pos, lt = lib.Spkezp(target, float64(et), frame.Bytes(), ab.Bytes(), observer)
		return nil
	})
	return Vector3(pos), lt, err
}

// SPKEasyState is SPKState with NAIF integer codes for the bodies.
func SPKEasyState[S cstr.Text](t *Token, target int, et Et, ref S, corr AbCorr, observer int) (State, float64, error) {
	frame, err := cstr.From(ref)
	if err != nil {
		return State{}, 0, err
	}
	ab, err := cstr.New(string(corr))
	if err != nil {
		return State{}, 0, err
	}
	var (
		st [6]float64
		lt float64
	)
	err = t.call("SPKEasyState", func(lib backend.Library) error {
		st, lt = lib.Spkez(target, float64(et), frame.Bytes(), ab.Bytes(), observer)
		return nil
	})
	return State(st), lt, err
}

func spkStrings[S cstr.Text](target, ref S, corr AbCorr, observer S) (targ, frame, obs, ab *cstr.Buffer, err error) {
	if targ, err = cstr.From(target); err != nil {
		return
	}
	if frame, err = cstr.From(ref); err != nil {
		return
	}
	if obs, err = cstr.From(observer); err != nil {
		return
	}
	ab, err = cstr.New(string(corr))
	return
}
