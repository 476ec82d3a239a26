// Package trajerr defines the failure taxonomy of trajectory generation. Every failure is local to
// one path's generation attempt.
package trajerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindUnknown is any error that is not part of the taxonomy.
	KindUnknown Kind = iota
	// KindValidation is a malformed or missing input field.
	KindValidation
	// KindDegeneratePath is an effectively zero-length path.
	KindDegeneratePath
	// KindInfeasible is a path no velocity or rotation budget can satisfy.
	KindInfeasible
	// KindNumeric is a NaN or infinity produced during integration.
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDegeneratePath:
		return "degenerate_path"
	case KindInfeasible:
		return "infeasible"
	case KindNumeric:
		return "numeric"
	case KindUnknown:
	}
	return "unknown"
}

// ValidationError is returned for malformed or missing waypoint, constraint or robot fields.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError returns a ValidationError for the named field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// WrapValidation wraps an aggregated set of problems (usually a multierr) as one ValidationError.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Reason: "invalid input", Err: err}
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "validation error: " + msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Kind returns KindValidation.
func (e *ValidationError) Kind() Kind { return KindValidation }

// DegeneratePathError is returned when a path has effectively zero length.
type DegeneratePathError struct {
	Reason string
}

// NewDegeneratePathError returns a DegeneratePathError.
func NewDegeneratePathError(format string, args ...interface{}) *DegeneratePathError {
	return &DegeneratePathError{Reason: fmt.Sprintf(format, args...)}
}

func (e *DegeneratePathError) Error() string {
	return "no meaningful trajectory: " + e.Reason
}

// Kind returns KindDegeneratePath.
func (e *DegeneratePathError) Kind() Kind { return KindDegeneratePath }

// InfeasibleError is returned when no translation and rotation budget satisfies the constraints,
// or when a motion profile has no real solution.
type InfeasibleError struct {
	Reason string
	// Attempts is the number of generation attempts made before giving up, zero when not
	// applicable.
	Attempts int
}

// NewInfeasibleError returns an InfeasibleError.
func NewInfeasibleError(format string, args ...interface{}) *InfeasibleError {
	return &InfeasibleError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InfeasibleError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("infeasible path after %d attempts: %s", e.Attempts, e.Reason)
	}
	return "infeasible path: " + e.Reason
}

// Kind returns KindInfeasible.
func (e *InfeasibleError) Kind() Kind { return KindInfeasible }

// NumericError is returned when integration produces a NaN or infinity.
type NumericError struct {
	Reason string
	Index  int
}

// NewNumericError returns a NumericError located at a sample index.
func NewNumericError(index int, format string, args ...interface{}) *NumericError {
	return &NumericError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric error at sample %d: %s", e.Index, e.Reason)
}

// Kind returns KindNumeric.
func (e *NumericError) Kind() Kind { return KindNumeric }

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the first taxonomy error in err's chain.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// Is reports whether err's chain holds an error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
