package middlewares

import (
	"errors"
	"fmt"
)

// PanicError carries a recovered panic value and the stack captured at
// the recovery site. It satisfies the pipeline's stack-tracer contract,
// so logging it splits the record into an error message and a stack.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StackTrace returns the captured stack.
func (e *PanicError) StackTrace() []byte {
	return e.Stack
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
