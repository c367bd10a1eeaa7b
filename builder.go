package scriptverify

import "time"

// NewScript starts the sequence phase of a script for a publisher of T.
// The returned [ScriptBuilder] exposes every non-terminal step; supplying
// a terminal step (ExpectComplete, ExpectError*, or ThenCancel) returns a
// [Verifier] instead, which exposes only Verify/VerifyPublisher.
func NewScript[T any](opts ...ScriptOption[T]) *ScriptBuilder[T] {
	s := &Script[T]{equal: defaultEqual[T]}
	for _, opt := range opts {
		opt(s)
	}
	return &ScriptBuilder[T]{script: s}
}

// ScriptBuilder is the sequence phase of a [Script]. Every method either
// returns *ScriptBuilder[T] (the script is still open) or *Verifier[T]
// (the script is now closed; no further steps may be added).
type ScriptBuilder[T any] struct {
	script *Script[T]
	// err records the first builder-time misuse (e.g. ThenRequest(0)), so
	// it can be raised as a [UsageError] when Verify runs, rather than
	// panicking mid-chain.
	err error
}

func (b *ScriptBuilder[T]) add(st step[T]) *ScriptBuilder[T] {
	b.script.steps = append(b.script.steps, st)
	return b
}

func (b *ScriptBuilder[T]) fail(op, msg string) *ScriptBuilder[T] {
	if b.err == nil {
		b.err = &UsageError{Op: op, Message: msg}
	}
	return b
}

// ExpectNext matches the next len(vs) signals as Next with equal payloads
// in order. A zero-length call is a no-op.
func (b *ScriptBuilder[T]) ExpectNext(vs ...T) *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepExpectNextEqual, values: vs})
}

// ExpectNextMatching matches one Next whose value satisfies predicate.
func (b *ScriptBuilder[T]) ExpectNextMatching(predicate func(T) bool) *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepExpectNextPredicate, predicate: predicate})
}

// ExpectNextConsume matches one Next and invokes consume with it; an error
// returned from consume is recorded as a failure at this step.
func (b *ScriptBuilder[T]) ExpectNextConsume(consume func(T) error) *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepExpectNextConsume, consume: consume})
}

// ExpectNextCount matches n Next signals without inspecting their values
//. ExpectNextCount(0) matches immediately.
func (b *ScriptBuilder[T]) ExpectNextCount(n uint64) *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepExpectNextCount, count: n})
}

// ThenRequest adds n to outstanding demand and forwards request(n) to the
// upstream subscription; n must be >= 1.
func (b *ScriptBuilder[T]) ThenRequest(n uint64) *ScriptBuilder[T] {
	if n < 1 {
		return b.fail("ThenRequest", "n must be >= 1")
	}
	return b.add(step[T]{kind: stepThenRequest, n: n})
}

// ThenRun executes an opaque side-effecting task on the driver thread,
// e.g. to trigger an upstream gating event. A panic raised
// by task is recorded as a failure but does not terminate the script.
func (b *ScriptBuilder[T]) ThenRun(task func()) *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepThenRun, task: task})
}

// AdvanceTimeBy advances the virtual clock by d. d
// must be non-negative; it is a usage error to call this with virtual
// time disabled for this script.
func (b *ScriptBuilder[T]) AdvanceTimeBy(d time.Duration) *ScriptBuilder[T] {
	if d < 0 {
		return b.fail("AdvanceTimeBy", "d must be non-negative")
	}
	return b.add(step[T]{kind: stepAdvanceTimeBy, duration: d})
}

// AdvanceTimeTo advances the virtual clock to instant t.
func (b *ScriptBuilder[T]) AdvanceTimeTo(t VirtualTime) *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepAdvanceTimeTo, at: t})
}

// AdvanceTime advances the virtual clock to the earliest pending
// scheduled instant strictly after now. If nothing is scheduled, it is a
// no-op.
func (b *ScriptBuilder[T]) AdvanceTime() *ScriptBuilder[T] {
	return b.add(step[T]{kind: stepAdvanceTime})
}

// ExpectComplete matches one Complete signal and closes the script.
func (b *ScriptBuilder[T]) ExpectComplete() *Verifier[T] {
	return b.build(step[T]{kind: stepExpectComplete})
}

// ExpectError matches any Error signal, with no further constraint on its
// cause.
func (b *ScriptBuilder[T]) ExpectError() *Verifier[T] {
	return b.build(step[T]{kind: stepExpectError, errKind: errorAny})
}

// ExpectErrorOfType matches an Error signal whose cause satisfies
// classifier, e.g. errors.As against a concrete type.
func (b *ScriptBuilder[T]) ExpectErrorOfType(classifier func(error) bool) *Verifier[T] {
	return b.build(step[T]{kind: stepExpectError, errKind: errorOfType, errClassifier: classifier})
}

// ExpectErrorMessage matches an Error signal whose Error() equals msg
// exactly.
func (b *ScriptBuilder[T]) ExpectErrorMessage(msg string) *Verifier[T] {
	return b.build(step[T]{kind: stepExpectError, errKind: errorMessage, errMessage: msg})
}

// ExpectErrorMatching matches an Error signal whose cause satisfies
// predicate.
func (b *ScriptBuilder[T]) ExpectErrorMatching(predicate func(error) bool) *Verifier[T] {
	return b.build(step[T]{kind: stepExpectError, errKind: errorPredicate, errPredicate: predicate})
}

// ExpectErrorConsume matches an Error signal and invokes consume with its
// cause; a non-nil return is recorded as a failure formatted using that
// error's message.
func (b *ScriptBuilder[T]) ExpectErrorConsume(consume func(error) error) *Verifier[T] {
	return b.build(step[T]{kind: stepExpectError, errKind: errorConsume, errConsume: consume})
}

// ThenCancel cancels the subscription and closes the script; it may
// appear only as the final step, which this method's return type
// enforces.
func (b *ScriptBuilder[T]) ThenCancel() *Verifier[T] {
	return b.build(step[T]{kind: stepThenCancel})
}

func (b *ScriptBuilder[T]) build(terminal step[T]) *Verifier[T] {
	b.add(terminal)
	script := *b.script
	script.steps = append([]step[T](nil), b.script.steps...)
	return newVerifier(&script, b.err)
}
