package scriptverify

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured-logging handle a [Verifier] uses for
// diagnostics: subscribe, each step transition, each recorded failure, and
// termination. It's a type alias for a concrete
// logiface logger bound to stumpy's JSON event implementation, rather than
// re-exposing the full generic logiface surface.
type Logger = logiface.Logger[*stumpy.Event]

// NewDefaultLogger returns a Logger writing JSON lines at the given
// minimum level, using stumpy as the writer backend.
func NewDefaultLogger(level logiface.Level) *Logger {
	return logiface.New[*stumpy.Event](
		stumpy.WithStumpy(),
		logiface.WithLevel[*stumpy.Event](level),
	)
}

// logDiagnostics is the no-op-safe wrapper a [Verifier] holds internally;
// every call is a nil check away from being free when no logger is set.
type logDiagnostics struct {
	logger *Logger
}

func (d logDiagnostics) subscribed() {
	if d.logger == nil {
		return
	}
	d.logger.Debug().Log("subscribed")
}

func (d logDiagnostics) step(kind stepKind, cursor int) {
	if d.logger == nil {
		return
	}
	d.logger.Debug().Int("cursor", cursor).Int("kind", int(kind)).Log("evaluating step")
}

func (d logDiagnostics) failure(msg string) {
	if d.logger == nil {
		return
	}
	d.logger.Warning().Str("failure", msg).Log("recorded expectation failure")
}

func (d logDiagnostics) terminated(elapsedFailures int) {
	if d.logger == nil {
		return
	}
	d.logger.Info().Int("failures", elapsedFailures).Log("verification terminated")
}
