// Package errcode is the board-wide error taxonomy.
//
// Peripheral drivers return a Code (or an *E wrapping one) so that examples
// can decide between "show it on a label and let the user retry" and
// "log it and stop".
package errcode

import "errors"

// Code is a short, stable error identifier. It implements error.
type Code string

func (c Code) Error() string { return string(c) }

const (
	OK            Code = "ok"
	Busy          Code = "busy"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	Timeout       Code = "timeout"
	NotReady      Code = "not_ready"

	// ResourceAlloc: out of memory or a driver handle could not be created.
	ResourceAlloc Code = "resource_alloc"
	// HardwareAbsent: no SD card, no codec, no radio.
	HardwareAbsent Code = "hardware_absent"
	// Network: scan, connect or HTTP failed; the user can retry.
	Network Code = "network"
	// FatalConfig: display or co-processor transport cannot come up.
	FatalConfig Code = "fatal_config"

	NotMounted     Code = "not_mounted"
	AlreadyMounted Code = "already_mounted"

	NVSNoFreePages Code = "nvs_no_free_pages"
	NVSNewVersion  Code = "nvs_new_version"

	Error Code = "error" // generic fallback
)

// E keeps an operation name and a cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil && e.Err != error(e.C) {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns err tagged with c and op. A nil err stays nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error chain, defaulting to Error. The chain is
// walked outermost first, following joined errors in order.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := find(err); ok {
		return c
	}
	return Error
}

func find(err error) (Code, bool) {
	type coder interface{ Code() Code }
	for err != nil {
		switch e := err.(type) {
		case Code:
			return e, true
		case coder:
			return e.Code(), true
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				if c, ok := find(inner); ok {
					return c, true
				}
			}
			return "", false
		}
		err = errors.Unwrap(err)
	}
	return "", false
}

// Transient reports whether a failure with this code is only reflected in
// the UI, leaving the example running so the user can retry from a button.
func Transient(c Code) bool {
	switch c {
	case Network, Timeout, Busy, HardwareAbsent, NotMounted, AlreadyMounted:
		return true
	}
	return false
}
