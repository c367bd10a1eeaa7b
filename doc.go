// Package scriptverify provides a scripted verifier for reactive-streams
// publishers: a test harness that lets an author declare, in advance, the
// exact sequence of values, errors, completions, and control actions a
// publisher is expected to produce, then subscribes to the publisher and
// asserts that reality matches the script.
//
// # Architecture
//
// A [Script] is built with [NewScript], which returns a [ScriptBuilder] in
// its sequence phase: every Expect*/Then*/AdvanceTime* method stays in that
// phase except the terminal ones ([ScriptBuilder.ExpectComplete],
// [ScriptBuilder.ExpectError] and its variants, [ScriptBuilder.ThenCancel]),
// which commit the script and return a [Verifier]. A [Verifier] is both the
// reactive-streams subscriber (consuming onSubscribe/onNext/onError/
// onComplete) and the component that drives the script against received
// signals, matching expectations, tracking backpressure, and accumulating
// failures.
//
// # Virtual time
//
// [EnableVirtualTime] installs a process-wide deterministic clock; scripts
// built with [WithVirtualTime] may use [ScriptBuilder.AdvanceTimeBy],
// [ScriptBuilder.AdvanceTimeTo], and [ScriptBuilder.AdvanceTime] to drive
// time-dependent publishers without wall-clock sleeps. [DisableVirtualTime]
// uninstalls it; tests that enable it must disable it on teardown.
//
// # Usage
//
//	verifier := scriptverify.NewScript[string]().
//	    ExpectNext("foo").
//	    ExpectNext("bar").
//	    ExpectComplete()
//
//	elapsed, err := verifier.VerifyPublisher(myPublisher)
//	if err != nil {
//	    t.Fatal(err)
//	}
//
// # Error types
//
// [AssertionError] reports aggregated expectation and timeout failures,
// raised by Verify/VerifyPublisher on termination with outstanding
// failures. [UsageError] reports misuse of the engine (double subscribe,
// double verify, invalid demand, a virtual-time action while disabled),
// raised synchronously and never aggregated. Both implement the standard
// [error] interface and support errors.Is/errors.As.
package scriptverify
