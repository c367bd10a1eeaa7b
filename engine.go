package scriptverify

import (
	"fmt"
	"sync"
	"time"
)

type engineStatus uint8

const (
	statusBuilt engineStatus = iota
	statusSubscribed
	statusTerminated
)

// Verifier is the built phase of a [Script]: a reactive-streams
// [Subscriber] that drives the script's steps against the signals a
// publisher delivers. It is returned by a [ScriptBuilder]'s terminal
// methods and exposes only [Verifier.Verify] / [Verifier.VerifyPublisher].
type Verifier[T any] struct {
	script   *Script[T]
	buildErr error

	mu                sync.Mutex
	status            engineStatus
	subscription      Subscription
	cursor            int
	demandOutstanding uint64
	failures          []string

	queue           *signalQueue[T]
	log             logDiagnostics
	pendingUsageErr error

	verified bool
}

func newVerifier[T any](script *Script[T], buildErr error) *Verifier[T] {
	return &Verifier[T]{
		script:   script,
		buildErr: buildErr,
		queue:    newSignalQueue[T](),
		log:      logDiagnostics{logger: script.logger},
	}
}

// OnSubscribe implements [Subscriber]. A second call (this engine already
// holding a subscription) is recorded as a script failure and the new
// subscription is cancelled; it never blocks.
func (v *Verifier[T]) OnSubscribe(sub Subscription) {
	v.mu.Lock()
	if v.status != statusBuilt {
		v.mu.Unlock()
		v.recordFailure("received a second subscription")
		sub.Cancel()
		return
	}
	v.subscription = sub
	v.status = statusSubscribed
	demand := v.script.initialDemand
	v.mu.Unlock()

	v.log.subscribed()
	v.queue.push(subscribedSignal[T](sub))
	if demand > 0 {
		sub.Request(demand)
	}
}

// OnNext implements [Subscriber]: enqueue, never block.
func (v *Verifier[T]) OnNext(val T) { v.queue.push(nextSignal(val)) }

// OnError implements [Subscriber]: enqueue, never block.
func (v *Verifier[T]) OnError(err error) { v.queue.push(errorSignal[T](err)) }

// OnComplete implements [Subscriber]: enqueue, never block.
func (v *Verifier[T]) OnComplete() { v.queue.push(completeSignal[T]()) }

// run executes the driver loop until the script terminates, the
// deadline elapses, or cancel fires. A zero deadline means wait forever.
func (v *Verifier[T]) run(deadline time.Time, cancel <-chan struct{}) {
	for {
		v.mu.Lock()
		status := v.status
		cursor := v.cursor
		v.mu.Unlock()

		if status == statusTerminated || v.pendingUsageErr != nil {
			return
		}
		if cursor >= len(v.script.steps) {
			return
		}
		st := v.script.steps[cursor]
		v.log.step(st.kind, cursor)

		if st.isControl() {
			if !v.executeControl(st) {
				return
			}
			continue
		}

		switch st.kind {
		case stepExpectNextEqual:
			if !v.consumeExpectNextEqual(st, deadline, cancel) {
				return
			}
		case stepExpectNextPredicate:
			if !v.consumeExpectNextPredicate(st, deadline, cancel) {
				return
			}
		case stepExpectNextConsume:
			if !v.consumeExpectNextConsume(st, deadline, cancel) {
				return
			}
		case stepExpectNextCount:
			if !v.consumeExpectNextCount(st, deadline, cancel) {
				return
			}
		case stepExpectComplete, stepExpectError:
			sig, ok := v.dequeue(deadline, cancel)
			if !ok {
				v.handleTimeout()
				return
			}
			if st.kind == stepExpectComplete {
				v.evalExpectComplete(st, sig)
			} else {
				v.evalExpectError(st, sig)
			}
		}
	}
}

// dequeue pops the next signal meaningful to script evaluation,
// transparently skipping the one-time Subscribed signal (its effect on
// engine state is already applied synchronously in OnSubscribe).
func (v *Verifier[T]) dequeue(deadline time.Time, cancel <-chan struct{}) (signal[T], bool) {
	for {
		sig, ok := v.queue.pop(deadline, cancel)
		if !ok {
			return signal[T]{}, false
		}
		if sig.kind == signalSubscribed {
			continue
		}
		return sig, true
	}
}

func (v *Verifier[T]) consumeExpectNextEqual(st step[T], deadline time.Time, cancel <-chan struct{}) bool {
	for _, want := range st.values {
		sig, ok := v.dequeue(deadline, cancel)
		if !ok {
			v.handleTimeout()
			return false
		}
		if sig.isTerminal() {
			v.recordFailure(fmt.Sprintf("missing value: expected %s, got %s", v.describeStep(st), describeSignal(sig)))
			v.advanceCursor()
			v.matchTerminalSignal(sig)
			return true
		}
		if v.script.equal(sig.value, want) {
			v.consumeDemand()
		} else {
			v.recordFailure(fmt.Sprintf("expected next value %v, got %v", want, sig.value))
			v.consumeDemand()
		}
	}
	v.advanceCursor()
	return true
}

func (v *Verifier[T]) consumeExpectNextPredicate(st step[T], deadline time.Time, cancel <-chan struct{}) bool {
	sig, ok := v.dequeue(deadline, cancel)
	if !ok {
		v.handleTimeout()
		return false
	}
	if sig.isTerminal() {
		v.recordFailure(fmt.Sprintf("missing value: expected %s, got %s", v.describeStep(st), describeSignal(sig)))
		v.advanceCursor()
		v.matchTerminalSignal(sig)
		return true
	}
	if st.predicate(sig.value) {
		v.consumeDemand()
	} else {
		v.recordFailure(fmt.Sprintf("next value %v did not match predicate", sig.value))
		v.consumeDemand()
	}
	v.advanceCursor()
	return true
}

func (v *Verifier[T]) consumeExpectNextConsume(st step[T], deadline time.Time, cancel <-chan struct{}) bool {
	sig, ok := v.dequeue(deadline, cancel)
	if !ok {
		v.handleTimeout()
		return false
	}
	if sig.isTerminal() {
		v.recordFailure(fmt.Sprintf("missing value: expected %s, got %s", v.describeStep(st), describeSignal(sig)))
		v.advanceCursor()
		v.matchTerminalSignal(sig)
		return true
	}
	v.consumeDemand()
	func() {
		defer func() {
			if r := recover(); r != nil {
				v.recordFailure(fmt.Sprintf("next value consumer panicked: %v", asError(r)))
			}
		}()
		if err := st.consume(sig.value); err != nil {
			v.recordFailure(err.Error())
		}
	}()
	v.advanceCursor()
	return true
}

func (v *Verifier[T]) consumeExpectNextCount(st step[T], deadline time.Time, cancel <-chan struct{}) bool {
	if st.count == 0 {
		v.advanceCursor()
		return true
	}
	var n uint64
	for n < st.count {
		sig, ok := v.dequeue(deadline, cancel)
		if !ok {
			v.handleTimeout()
			return false
		}
		if sig.isTerminal() {
			v.recordFailure(fmt.Sprintf("missing value: expected %d more next value(s), got %s", st.count-n, describeSignal(sig)))
			v.advanceCursor()
			v.matchTerminalSignal(sig)
			return true
		}
		v.consumeDemand()
		n++
	}
	v.advanceCursor()
	return true
}

func (v *Verifier[T]) evalExpectComplete(st step[T], sig signal[T]) {
	if sig.kind != signalComplete {
		v.recordFailure(fmt.Sprintf("expected completion, got %s", describeSignal(sig)))
	}
	v.advanceCursor()
	v.terminate()
}

func (v *Verifier[T]) evalExpectError(st step[T], sig signal[T]) {
	if sig.kind != signalError {
		v.recordFailure(fmt.Sprintf("expected an error, got %s", describeSignal(sig)))
		v.advanceCursor()
		v.terminate()
		return
	}
	err := sig.err
	switch st.errKind {
	case errorOfType:
		if !st.errClassifier(err) {
			v.recordFailure(fmt.Sprintf("error %v did not match expected type", err))
		}
	case errorMessage:
		if err == nil || err.Error() != st.errMessage {
			v.recordFailure(fmt.Sprintf("expected error message %q, got %q", st.errMessage, errMessage(err)))
		}
	case errorPredicate:
		if !st.errPredicate(err) {
			v.recordFailure(fmt.Sprintf("error %v did not match predicate", err))
		}
	case errorConsume:
		if consumeErr := st.errConsume(err); consumeErr != nil {
			v.recordFailure(consumeErr.Error())
		}
	}
	v.advanceCursor()
	v.terminate()
}

// matchTerminalSignal handles the early-termination edge case: a
// Complete/Error signal arrived while the script still expected
// non-terminal steps. The caller has already recorded a missing-value
// failure for the step it was waiting on; this skips any further
// non-terminal steps (recording a missing-value failure for each
// expectation step; control steps are skipped silently) and attempts the
// match against whatever terminal step the script ends with.
func (v *Verifier[T]) matchTerminalSignal(sig signal[T]) {
	st := v.skipToTerminalStep()
	switch st.kind {
	case stepExpectComplete:
		v.evalExpectComplete(st, sig)
	case stepExpectError:
		v.evalExpectError(st, sig)
	default: // stepThenCancel
		v.recordFailure(fmt.Sprintf("unexpected %s signal: script expected cancellation", sig.kind))
		v.terminate()
	}
}

func (v *Verifier[T]) skipToTerminalStep() step[T] {
	v.mu.Lock()
	i := v.cursor
	for i < len(v.script.steps)-1 {
		st := v.script.steps[i]
		if st.kind == stepExpectComplete || st.kind == stepExpectError || st.kind == stepThenCancel {
			break
		}
		if !st.isControl() {
			v.failures = append(v.failures, fmt.Sprintf("missing value: expected %s", v.describeStep(st)))
		}
		i++
	}
	v.cursor = i
	st := v.script.steps[i]
	v.mu.Unlock()
	return st
}

func (v *Verifier[T]) executeControl(st step[T]) bool {
	switch st.kind {
	case stepThenRequest:
		v.mu.Lock()
		v.demandOutstanding += st.n
		sub := v.subscription
		v.mu.Unlock()
		if sub != nil {
			sub.Request(st.n)
		}
		v.advanceCursor()
		return true

	case stepThenCancel:
		v.mu.Lock()
		sub := v.subscription
		v.mu.Unlock()
		v.advanceCursor()
		v.terminate()
		if sub != nil {
			sub.Cancel()
		}
		return true

	case stepThenRun:
		func() {
			defer func() {
				if r := recover(); r != nil {
					v.recordFailure(fmt.Sprintf("task panicked: %v", asError(r)))
				}
			}()
			st.task()
		}()
		v.advanceCursor()
		return true

	case stepAdvanceTimeBy:
		return v.advanceVirtual("AdvanceTimeBy", func() VirtualTime { return VirtualNow().Add(st.duration) })

	case stepAdvanceTimeTo:
		return v.advanceVirtual("AdvanceTimeTo", func() VirtualTime { return st.at })

	case stepAdvanceTime:
		return v.advanceVirtual("AdvanceTime", func() VirtualTime {
			at, ok := globalVirtualTime.earliestFutureDue()
			if !ok {
				return VirtualNow()
			}
			return at
		})
	}
	return true
}

func (v *Verifier[T]) advanceVirtual(op string, target func() VirtualTime) bool {
	if !v.script.virtualTime {
		v.pendingUsageErr = &UsageError{Op: op, Message: "virtual time is not enabled for this script"}
		return false
	}
	if !VirtualTimeEnabled() {
		v.pendingUsageErr = &UsageError{Op: op, Message: "virtual time is disabled"}
		return false
	}
	panics := globalVirtualTime.advanceTo(target())
	for _, p := range panics {
		v.recordFailure(p.Error())
	}
	v.advanceCursor()
	return true
}

func (v *Verifier[T]) handleTimeout() {
	v.mu.Lock()
	sub := v.subscription
	v.mu.Unlock()
	v.recordFailure("timed out waiting for a signal")
	if sub != nil {
		sub.Cancel()
	}
	v.terminate()
}

func (v *Verifier[T]) advanceCursor() {
	v.mu.Lock()
	v.cursor++
	v.mu.Unlock()
}

func (v *Verifier[T]) consumeDemand() {
	v.mu.Lock()
	if v.demandOutstanding > 0 {
		v.demandOutstanding--
	}
	v.mu.Unlock()
}

func (v *Verifier[T]) terminate() {
	v.mu.Lock()
	v.status = statusTerminated
	v.mu.Unlock()
	v.queue.drain()
}

func (v *Verifier[T]) recordFailure(msg string) {
	v.mu.Lock()
	v.failures = append(v.failures, msg)
	v.mu.Unlock()
	v.log.failure(msg)
}

func (v *Verifier[T]) describeStep(st step[T]) string {
	switch st.kind {
	case stepExpectNextEqual:
		return fmt.Sprintf("next value(s) %v", st.values)
	case stepExpectNextPredicate:
		return "a next value matching a predicate"
	case stepExpectNextConsume:
		return "a next value"
	case stepExpectNextCount:
		return fmt.Sprintf("%d next value(s)", st.count)
	case stepExpectComplete:
		return "completion"
	case stepExpectError:
		return "an error"
	default:
		return st.String()
	}
}

func describeSignal[T any](sig signal[T]) string {
	switch sig.kind {
	case signalNext:
		return fmt.Sprintf("next(%v)", sig.value)
	case signalComplete:
		return "complete"
	case signalError:
		return fmt.Sprintf("error(%v)", sig.err)
	default:
		return sig.kind.String()
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
