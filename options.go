package scriptverify

import (
	"context"
	"time"

	"github.com/google/go-cmp/cmp"
)

// ScriptOption configures a [ScriptBuilder] at construction.
type ScriptOption[T any] func(*Script[T])

// WithInitialDemand sets the demand requested from the upstream
// subscription immediately on Subscribed. Defaults to 0, meaning the
// publisher delivers nothing until a ThenRequest step runs.
func WithInitialDemand[T any](n uint64) ScriptOption[T] {
	return func(s *Script[T]) {
		s.initialDemand = n
	}
}

// WithEquality overrides the comparator ExpectNextEqual uses to match
// observed values against expected ones. Absent this option, structural
// equality (via [cmp.Equal]) is used.
func WithEquality[T any](equal func(a, b T) bool) ScriptOption[T] {
	return func(s *Script[T]) {
		s.equal = equal
	}
}

// WithVirtualTime opts this script's [Verifier] into virtual time: control
// steps AdvanceTimeBy/AdvanceTimeTo/AdvanceTime delegate to the global
// [VirtualScheduler] rather than being usage errors. It does not itself
// call [EnableVirtualTime]; callers must do that (and [DisableVirtualTime]
// on teardown) so the flag's lifecycle stays explicit.
func WithVirtualTime[T any]() ScriptOption[T] {
	return func(s *Script[T]) {
		s.virtualTime = true
	}
}

// WithScriptLogger attaches diagnostics to every [Verifier] built from this
// script. Unset, logging is a no-op.
func WithScriptLogger[T any](logger *Logger) ScriptOption[T] {
	return func(s *Script[T]) {
		s.logger = logger
	}
}

func defaultEqual[T any](a, b T) bool {
	return cmp.Equal(a, b)
}

// VerifyOption configures a single call to [Verifier.Verify] or
// [Verifier.VerifyPublisher].
type VerifyOption func(*verifyConfig)

type verifyConfig struct {
	timeout time.Duration
	ctx     context.Context
}

// WithTimeout bounds the verification; on expiry a timeout failure is
// recorded, the upstream subscription is cancelled, and an aggregated
// [AssertionError] is raised.
func WithTimeout(d time.Duration) VerifyOption {
	return func(c *verifyConfig) {
		c.timeout = d
	}
}

// WithContext bounds the verification by ctx in addition to any
// [WithTimeout]; cancellation behaves like a timeout.
func WithContext(ctx context.Context) VerifyOption {
	return func(c *verifyConfig) {
		c.ctx = ctx
	}
}
