package scriptverify

import (
	"fmt"
	"time"
)

// stepKind discriminates the closed set of script step variants.
type stepKind uint8

const (
	stepExpectNextEqual stepKind = iota
	stepExpectNextPredicate
	stepExpectNextConsume
	stepExpectNextCount
	stepExpectComplete
	stepExpectError
	stepThenRequest
	stepThenCancel
	stepThenRun
	stepAdvanceTimeBy
	stepAdvanceTimeTo
	stepAdvanceTime
)

// errorKind discriminates the ExpectError(kind) variants.
type errorKind uint8

const (
	errorAny errorKind = iota
	errorOfType
	errorMessage
	errorPredicate
	errorConsume
)

// step is one element of a [Script]. It's a closed tagged variant: which
// fields are meaningful is determined entirely by kind, rather than an
// interface-per-variant hierarchy, since every variant here is a plain
// bundle of data plus at most one callback.
type step[T any] struct {
	kind stepKind

	// stepExpectNextEqual
	values []T

	// stepExpectNextPredicate
	predicate func(T) bool

	// stepExpectNextConsume
	consume func(T) error

	// stepExpectNextCount
	count uint64

	// stepExpectError
	errKind       errorKind
	errClassifier func(error) bool
	errMessage    string
	errPredicate  func(error) bool
	errConsume    func(error) error

	// stepThenRequest
	n uint64

	// stepThenRun
	task func()

	// stepAdvanceTimeBy
	duration time.Duration

	// stepAdvanceTimeTo
	at VirtualTime

	// diagnostics
	label string
}

// isTerminal reports whether this step closes the script: it matches a
// termination signal, or is ThenCancel.
func (s step[T]) isTerminal() bool {
	switch s.kind {
	case stepExpectComplete, stepExpectError, stepThenCancel:
		return true
	default:
		return false
	}
}

// isControl reports whether this step is a control action (executed
// without consuming a signal) rather than an expectation.
func (s step[T]) isControl() bool {
	switch s.kind {
	case stepThenRequest, stepThenCancel, stepThenRun,
		stepAdvanceTimeBy, stepAdvanceTimeTo, stepAdvanceTime:
		return true
	default:
		return false
	}
}

func (s step[T]) String() string {
	if s.label != "" {
		return s.label
	}
	return fmt.Sprintf("step(kind=%d)", s.kind)
}
