package checkcache

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/checkcache/codec"
)

// DecodeError is returned by Get for payloads that cannot be decoded.
// Check treats it as a miss.
type DecodeError = codec.DecodeError

// PreconditionError reports a missing argument. Nothing was sent to the backend.
type PreconditionError struct {
	Op    string
	Field string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("checkcache: %s: %s is required", e.Op, e.Field)
}

// ExecutableError wraps a failure of the caller's executable.
type ExecutableError struct {
	Key string
	Err error
}

func (e *ExecutableError) Error() string {
	return fmt.Sprintf("checkcache: execute %q: %v", e.Key, e.Err)
}

func (e *ExecutableError) Unwrap() error { return e.Err }

// Fault is a non-fatal cache failure observed during Check.
type Fault struct {
	Op  string
	Key string
	Err error
}

func (f Fault) Error() string { return fmt.Sprintf("%s %q: %v", f.Op, f.Key, f.Err) }
func (f Fault) Unwrap() error { return f.Err }

// FaultError aggregates the faults of a single call.
type FaultError struct {
	Key    string
	Faults []Fault
}

func (e *FaultError) Error() string {
	msgs := make([]string, len(e.Faults))
	for i, f := range e.Faults {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("checkcache: %d cache fault(s) for %q: %s", len(e.Faults), e.Key, strings.Join(msgs, "; "))
}

func (e *FaultError) Unwrap() []error {
	errs := make([]error, 0, len(e.Faults))
	for _, f := range e.Faults {
		errs = append(errs, f)
	}
	return errs
}
