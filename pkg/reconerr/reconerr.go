// Package reconerr implements the core's error-kind taxonomy: a small,
// closed set of kinds callers can branch on with errors.As instead of
// matching message strings.
package reconerr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the taxonomy's error categories an error
// belongs to.
type Kind string

const (
	// HelperUnavailable means the external fast-sweep binary could not be
	// resolved or failed to start. Informational: the caller falls
	// through to the in-process connect-scan.
	HelperUnavailable Kind = "HELPER_UNAVAILABLE"
	// HelperMalformedOutput means the helper ran but its stdout didn't
	// match the expected greppable format. Also falls through.
	HelperMalformedOutput Kind = "HELPER_MALFORMED_OUTPUT"
	// NetworkTimeout covers any per-probe deadline expiry.
	NetworkTimeout Kind = "NETWORK_TIMEOUT"
	// ConnectRefused covers a TCP RST on connect.
	ConnectRefused Kind = "CONNECT_REFUSED"
	// ConnectReset covers a connection reset mid-read.
	ConnectReset Kind = "CONNECT_RESET"
	// DecodeError covers banner/body/header decoding failures; the
	// offending field is left empty and the port/endpoint still reported.
	DecodeError Kind = "DECODE_ERROR"
	// RuleCompilationError is fatal at startup: a banner/HTTP/directory
	// rule failed to compile. Cannot occur mid-scan.
	RuleCompilationError Kind = "RULE_COMPILATION_ERROR"
	// ConfigInvalid means ScanConfig failed validation; rejected before
	// any scan begins.
	ConfigInvalid Kind = "CONFIG_INVALID"
	// UnhandledInternal is the catch-all caught at the per-target
	// goroutine boundary; the target's ScanResult becomes failed.
	UnhandledInternal Kind = "UNHANDLED_INTERNAL"
)

// codedError wraps an error with the taxonomy kind it belongs to.
type codedError struct {
	error
	kind Kind
}

func (e *codedError) Error() string { return e.error.Error() }
func (e *codedError) Unwrap() error { return e.error }
func (e *codedError) Code() string  { return string(e.kind) }

// New creates an error of the given kind from a format string.
func New(kind Kind, format string, args ...any) error {
	return &codedError{error: fmt.Errorf(format, args...), kind: kind}
}

// Wrap attaches kind to an existing error. Returns nil if err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{error: err, kind: kind}
}

// KindOf resolves err's taxonomy kind by walking its Unwrap chain. Returns
// the empty Kind if neither err nor anything it wraps carries one.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.kind
	}
	return ""
}

// Is reports whether err's taxonomy kind equals kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Fatal reports whether kind must abort the scan outright rather than be
// absorbed into an empty layer result. Per the policy, only ConfigInvalid
// and RuleCompilationError ever escape to the caller; everything else is
// swallowed at its layer or, for UnhandledInternal, at the per-target
// boundary.
func Fatal(kind Kind) bool {
	switch kind {
	case ConfigInvalid, RuleCompilationError:
		return true
	default:
		return false
	}
}

// ExitCode maps a reconerr Kind to a CLI process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case ConfigInvalid:
		return 2
	case RuleCompilationError:
		return 3
	default:
		return 1
	}
}
