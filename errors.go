package scriptverify

import (
	"errors"
	"fmt"
	"strings"
)

// UsageError reports misuse of a [Verifier] or its [Script]: double
// subscription, double verification, verifying without a subscription,
// invalid demand, or a virtual-time action attempted while virtual time is
// disabled. Usage errors are raised synchronously and are never aggregated
// alongside script failures.
type UsageError struct {
	// Op names the operation that was misused, e.g. "Verify", "ThenRequest".
	Op string
	// Message describes the misuse.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *UsageError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *UsageError) Unwrap() error { return e.Cause }

// AssertionError is the aggregated failure raised by Verify/VerifyPublisher
// when the script did not fully match. Its Error() message begins with the
// exact prefix "Expectation failure(s):\n - ", which is part of this
// package's observable contract.
type AssertionError struct {
	Failures []string
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	b.WriteString("Expectation failure(s):")
	for _, f := range e.Failures {
		b.WriteString("\n - ")
		b.WriteString(f)
	}
	return b.String()
}

// Unwrap exposes each recorded failure as an independent error carrying
// that failure's message, so that individual step failures can be
// inspected without parsing the aggregated message. Each call creates new
// error values, so errors.Is never matches one of them against an error
// held by the caller.
func (e *AssertionError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = errors.New(f)
	}
	return errs
}
