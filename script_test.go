package scriptverify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScript_LastStep_ReturnsTerminalStep(t *testing.T) {
	s := &Script[int]{
		steps: []step[int]{
			{kind: stepExpectNextEqual, values: []int{1}},
			{kind: stepExpectComplete},
		},
	}
	assert.Equal(t, stepExpectComplete, s.lastStep().kind)
}

func TestDefaultEqual_ComparesStructurally(t *testing.T) {
	type point struct{ X, Y int }
	assert.True(t, defaultEqual(point{1, 2}, point{1, 2}))
	assert.False(t, defaultEqual(point{1, 2}, point{1, 3}))
}
