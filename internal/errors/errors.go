// Package errors defines structured error types shared across the resolver.
//
// NetworkError, WireFormatError and ConfigError carry the operation that
// failed and the underlying cause (exposed via Unwrap); ValidationError
// carries the offending field, value and message instead. Callers can use
// errors.As to branch on failure class without parsing strings.
package errors

import (
	"fmt"
)

// NetworkError represents a failure in socket creation, binding, or I/O.
type NetworkError struct {
	// Operation describes what network operation failed (e.g. "bind socket", "dial upstream").
	Operation string

	// Err is the underlying error from the network stack.
	Err error

	// Details provides additional context for troubleshooting.
	Details string
}

func (e *NetworkError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("network error during %s: %v (%s)", e.Operation, e.Err, e.Details)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError represents a failure validating caller-supplied input such
// as a malformed name or an out-of-range parameter.
type ValidationError struct {
	// Field identifies which input failed validation (e.g. "name", "ttl").
	Field string

	// Value is the invalid value, if safe to include.
	Value interface{}

	// Message describes why the validation failed.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// WireFormatError represents a failure parsing or encoding a DNS message:
// malformed packets, invalid compression pointers, truncated RDATA, or
// section-count mismatches.
type WireFormatError struct {
	// Operation describes what parsing/encoding step failed.
	Operation string

	// Offset is the byte offset in the message where the error occurred, or
	// -1 if not applicable.
	Offset int

	// Message describes why the wire format is invalid.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *WireFormatError) Error() string {
	if e.Offset >= 0 {
		if e.Err != nil {
			return fmt.Sprintf("wire format error during %s at offset %d: %s (underlying: %v)", e.Operation, e.Offset, e.Message, e.Err)
		}
		return fmt.Sprintf("wire format error during %s at offset %d: %s", e.Operation, e.Offset, e.Message)
	}

	if e.Err != nil {
		return fmt.Sprintf("wire format error during %s: %s (underlying: %v)", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("wire format error during %s: %s", e.Operation, e.Message)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ConfigError represents a fatal error building the server's configuration
// from CLI flags or loaded zone/hosts sources.
type ConfigError struct {
	// Operation describes what configuration step failed (e.g. "load zone file").
	Operation string

	// Source identifies the offending file or flag, if any.
	Source string

	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("configuration error during %s (%s): %v", e.Operation, e.Source, e.Err)
	}
	return fmt.Sprintf("configuration error during %s: %v", e.Operation, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
