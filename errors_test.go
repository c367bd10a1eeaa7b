package scriptverify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageError_Error_WithOp(t *testing.T) {
	err := &UsageError{Op: "ThenRequest", Message: "n must be >= 1"}
	assert.Equal(t, "ThenRequest: n must be >= 1", err.Error())
}

func TestUsageError_Error_WithoutOp(t *testing.T) {
	err := &UsageError{Message: "virtual time is disabled"}
	assert.Equal(t, "virtual time is disabled", err.Error())
}

func TestUsageError_Unwrap_ExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := &UsageError{Op: "AdvanceTime", Message: "scheduled task panicked", Cause: cause}
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestAssertionError_Error_ExactFormat(t *testing.T) {
	err := &AssertionError{Failures: []string{"expected next value foo, got bar", "expected completion, got error(boom)"}}
	assert.Equal(t, "Expectation failure(s):\n - expected next value foo, got bar\n - expected completion, got error(boom)", err.Error())
}

func TestAssertionError_Unwrap_ExposesEachFailure(t *testing.T) {
	err := &AssertionError{Failures: []string{"one", "two"}}
	unwrapped := err.Unwrap()
	require := assert.New(t)
	require.Len(unwrapped, 2)
	require.EqualError(unwrapped[0], "one")
	require.EqualError(unwrapped[1], "two")
}
