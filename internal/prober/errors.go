package prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind is the closed set of ways a probe can fail.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindRefused
	KindTimeout
	KindInterrupted
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRefused:
		return "refused"
	case KindTimeout:
		return "timeout"
	case KindInterrupted:
		return "interrupted"
	default:
		return "other"
	}
}

// ErrMalformedEndpoint is returned for endpoints that are not ws:// or wss:// URLs.
var ErrMalformedEndpoint = errors.New("malformed endpoint")

// ProbeError is returned by Probe for every failed run.
type ProbeError struct {
	Kind     ErrorKind
	Endpoint string
	Err      error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("probe %s failed (%s)", e.Endpoint, e.Kind)
	}
	return fmt.Sprintf("probe %s failed (%s): %v", e.Endpoint, e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// KindOf reports the ErrorKind carried by err, KindNone for nil and KindOther
// for errors that did not come from a probe.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}

// Classify maps a dial or read error onto an ErrorKind. ctx is the run context;
// once it is cancelled every failure counts as an interrupt.
func Classify(ctx context.Context, err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || (ctx != nil && errors.Is(ctx.Err(), context.Canceled)) {
		return KindInterrupted
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindOther
}
