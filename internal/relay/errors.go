package relay

import (
	"errors"
	"fmt"
	"time"
)

// DefaultUpstreamDetail is substituted when the AI Engine signals failure
// without a detail field in its response body.
const DefaultUpstreamDetail = "AI Engine processing error"

// Kind identifies how a relay failure is classified.
// Every error returned by Client.Generate maps to exactly one Kind.
type Kind int

const (
	// KindUpstream indicates the AI Engine responded with a non-2xx status.
	KindUpstream Kind = iota

	// KindConnectivity indicates no HTTP response was received at all:
	// timeout, connection refused, or name resolution failure.
	KindConnectivity

	// KindUnknown covers everything else, such as an unreadable response body.
	KindUnknown
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindConnectivity:
		return "connectivity"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// UpstreamError indicates the AI Engine was reached but signaled failure.
// Detail is taken from the response body when present, else
// DefaultUpstreamDetail. StatusCode preserves the upstream status for
// callers that want to forward it rather than collapse to 500.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Workflow generation failed: %s", e.Detail)
}

// ConnectivityError indicates the AI Engine was unreachable within the
// timeout ceiling. The underlying transport error is retained for logs but
// never surfaced to callers.
type ConnectivityError struct {
	Timeout time.Duration
	Err     error
}

// Error implements the error interface.
func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("AI Engine is unavailable: no response received within %s", e.Timeout)
}

// Unwrap returns the underlying transport error.
func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// UnknownError wraps an unanticipated failure. The original error is kept
// for logging; Error returns a fixed message safe to expose.
type UnknownError struct {
	Err error
}

// Error implements the error interface.
func (e *UnknownError) Error() string {
	return "Workflow generation failed: unexpected internal error"
}

// Unwrap returns the original error.
func (e *UnknownError) Unwrap() error {
	return e.Err
}

// KindOf classifies a relay error. Errors that are none of the three relay
// types classify as KindUnknown.
func KindOf(err error) Kind {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return KindUpstream
	}
	var conn *ConnectivityError
	if errors.As(err, &conn) {
		return KindConnectivity
	}
	return KindUnknown
}
