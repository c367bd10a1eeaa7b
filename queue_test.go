package scriptverify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalQueue_PushPop_PreservesOrder(t *testing.T) {
	q := newSignalQueue[int]()
	q.push(nextSignal(1))
	q.push(nextSignal(2))
	q.push(completeSignal[int]())

	sig, ok := q.pop(time.Time{}, nil)
	require.True(t, ok)
	assert.Equal(t, signalNext, sig.kind)
	assert.Equal(t, 1, sig.value)

	sig, ok = q.pop(time.Time{}, nil)
	require.True(t, ok)
	assert.Equal(t, 2, sig.value)

	sig, ok = q.pop(time.Time{}, nil)
	require.True(t, ok)
	assert.Equal(t, signalComplete, sig.kind)
}

func TestSignalQueue_Pop_TimesOutOnEmpty(t *testing.T) {
	q := newSignalQueue[int]()
	_, ok := q.pop(time.Now().Add(10*time.Millisecond), nil)
	assert.False(t, ok)
}

func TestSignalQueue_Pop_UnblocksOnCancel(t *testing.T) {
	q := newSignalQueue[int]()
	cancel := make(chan struct{})
	close(cancel)
	_, ok := q.pop(time.Time{}, cancel)
	assert.False(t, ok)
}

func TestSignalQueue_Pop_BlocksUntilPush(t *testing.T) {
	q := newSignalQueue[int]()
	done := make(chan signal[int], 1)
	go func() {
		sig, _ := q.pop(time.Time{}, nil)
		done <- sig
	}()

	time.Sleep(10 * time.Millisecond)
	q.push(nextSignal(42))

	select {
	case sig := <-done:
		assert.Equal(t, 42, sig.value)
	case <-time.After(time.Second):
		t.Fatal("pop did not unblock after push")
	}
}

func TestSignalQueue_Drain_RemovesQueuedSignals(t *testing.T) {
	q := newSignalQueue[int]()
	q.push(nextSignal(1))
	q.push(nextSignal(2))
	q.drain()

	_, ok := q.pop(time.Now().Add(10*time.Millisecond), nil)
	assert.False(t, ok)
}
