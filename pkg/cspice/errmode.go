package cspice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/cstr"
	"github.com/hsiuhsiu/cspice-go/pkg/cspice/internal/backend"
)

// ErrorAction selects what the toolkit does when it detects an error.
type ErrorAction string

const (
	// ActionAbort prints the error and terminates the process.
	ActionAbort ErrorAction = "ABORT"
	// ActionIgnore discards errors without setting the error status.
	ActionIgnore ErrorAction = "IGNORE"
	// ActionReport sets the error status and lets routines continue.
	ActionReport ErrorAction = "REPORT"
	// ActionReturn sets the error status and makes routines return at once
	// until it is cleared. Libraries install this by default.
	ActionReturn ErrorAction = "RETURN"
	// ActionDefault behaves like ActionAbort.
	ActionDefault ErrorAction = "DEFAULT"
)

func (a ErrorAction) valid() bool {
	switch a {
	case ActionAbort, ActionIgnore, ActionReport, ActionReturn, ActionDefault:
		return true
	}
	return false
}

func (a ErrorAction) String() string { return string(a) }

// MarshalText implements encoding.TextMarshaler.
func (a ErrorAction) MarshalText() ([]byte, error) {
	return []byte(a), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case
// insensitive.
func (a *ErrorAction) UnmarshalText(b []byte) error {
	v := ErrorAction(strings.ToUpper(strings.TrimSpace(string(b))))
	if !v.valid() {
		return fmt.Errorf("cspice: invalid error action %q", string(b))
	}
	*a = v
	return nil
}

// ErrorDevice names where the toolkit writes its error reports: DeviceScreen,
// DeviceNull, or a file name to append to.
type ErrorDevice string

const (
	DeviceScreen ErrorDevice = "SCREEN"
	DeviceNull   ErrorDevice = "NULL"
)

func (d ErrorDevice) String() string { return string(d) }

// UnmarshalText implements encoding.TextUnmarshaler. The reserved names are
// matched case insensitively; anything else is a file name.
func (d *ErrorDevice) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch u := ErrorDevice(strings.ToUpper(s)); u {
	case DeviceScreen, DeviceNull:
		*d = u
	default:
		*d = ErrorDevice(s)
	}
	return nil
}

var (
	opGet = cstr.MustNew("GET")
	opSet = cstr.MustNew("SET")
)

// GetErrorAction returns the current error action.
func GetErrorAction(t *Token) (ErrorAction, error) {
	var out ErrorAction
	err := t.call("GetErrorAction", func(lib backend.Library) error {
		buf := cstr.Output(backend.ErrorActionLen)
		lib.Erract(opGet.Bytes(), buf)
		out = ErrorAction(decode(buf))
		return nil
	})
	return out, err
}

// SetErrorAction installs a new error action. Invalid actions are rejected
// by the toolkit with ErrInvalidAction.
func SetErrorAction(t *Token, a ErrorAction) error {
	buf, err := cstr.Sized(string(a), backend.ErrorActionLen)
	if err != nil {
		return err
	}
	return t.call("SetErrorAction", func(lib backend.Library) error {
		lib.Erract(opSet.Bytes(), buf)
		return nil
	})
}

// GetErrorDevice returns the current error output device.
func GetErrorDevice(t *Token) (ErrorDevice, error) {
	var out ErrorDevice
	err := t.call("GetErrorDevice", func(lib backend.Library) error {
		buf := cstr.Output(backend.ErrorDeviceLen)
		lib.Errdev(opGet.Bytes(), buf)
		out = ErrorDevice(decode(buf))
		return nil
	})
	return out, err
}

// SetErrorDevice changes the error output device.
func SetErrorDevice(t *Token, d ErrorDevice) error {
	buf, err := cstr.Sized(string(d), backend.ErrorDeviceLen)
	if err != nil {
		return err
	}
	return t.call("SetErrorDevice", func(lib backend.Library) error {
		lib.Errdev(opSet.Bytes(), buf)
		return nil
	})
}

// WithErrorAction runs fn with the error action temporarily set to a and
// restores the previous action afterwards, whether or not fn fails. The
// whole sequence runs under t, so no other caller can observe or change the
// action in between.
func WithErrorAction(t *Token, a ErrorAction, fn func() error) error {
	prev, err := GetErrorAction(t)
	if err != nil {
		return err
	}
	if err := SetErrorAction(t, a); err != nil {
		return err
	}
	ferr := fn()
	if err := SetErrorAction(t, prev); err != nil {
		return errors.Join(ferr, fmt.Errorf("cspice: restore error action %s: %w", prev, err))
	}
	return ferr
}
