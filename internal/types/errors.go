package types

import (
	"fmt"
	"strings"
)

// OracleError reports a failure reaching the external generative service:
// network, auth or quota. The core never retries these; the caller decides.
type OracleError struct {
	Op  string // "identify" or "generate"
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle unavailable during %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// SanitizationError means the oracle's text contained no extractable JSON
// object. The in-flight operation aborts without partial persistence.
type SanitizationError struct {
	Reason string
}

func (e *SanitizationError) Error() string {
	return "sanitization failed: " + e.Reason
}

// SchemaErrorKind separates "the JSON would not parse" from "the JSON parsed
// but had the wrong shape". Parse failures are retry candidates; shape
// failures point at a prompt-template mismatch.
type SchemaErrorKind string

const (
	SchemaParse SchemaErrorKind = "parse"
	SchemaShape SchemaErrorKind = "shape"
)

// SchemaError reports a sanitized response failing validation against one of
// the three record shapes.
type SchemaError struct {
	Kind    SchemaErrorKind
	Shape   string   // "identification", "specification" or "comparison"
	Missing []string // missing mandatory keys, for shape failures
	Err     error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s validation failed (%s)", e.Shape, e.Kind)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Retryable reports whether re-asking the oracle with stricter instructions
// could plausibly fix the failure.
func (e *SchemaError) Retryable() bool { return e.Kind == SchemaParse }

// ValidationError reports a caller-supplied precondition violation, such as
// comparing a vehicle to itself or saving a duplicate record.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StorageError wraps a persistence-layer failure. The store stays in its
// last-committed state; nothing partial becomes visible.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
