package scriptverify_test

import (
	"sync"
	"time"

	sv "github.com/joeycumines/go-scriptverify"
)

// fakePublisher is a minimal, deterministic reactive-streams publisher for
// exercising a scriptverify.Verifier without a real reactive library. It
// replays a fixed sequence of values, then a terminal signal, delivering
// as many values as outstanding demand allows on each Request call.
type fakePublisher[T any] struct {
	values []T
	err    error // nil means complete on exhaustion

	mu        sync.Mutex
	sub       *fakeSubscription[T]
	cursor    int
	cancelled bool
}

func newFakePublisher[T any](values []T) *fakePublisher[T] {
	return &fakePublisher[T]{values: values}
}

func newFakeErrorPublisher[T any](values []T, err error) *fakePublisher[T] {
	return &fakePublisher[T]{values: values, err: err}
}

func (p *fakePublisher[T]) Subscribe(sub sv.Subscriber[T]) {
	p.mu.Lock()
	p.sub = &fakeSubscription[T]{publisher: p, subscriber: sub}
	p.mu.Unlock()
	sub.OnSubscribe(p.sub)
}

func (p *fakePublisher[T]) deliver(demand uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled {
		return
	}
	sub := p.sub.subscriber
	for demand > 0 && p.cursor < len(p.values) {
		v := p.values[p.cursor]
		p.cursor++
		demand--
		p.mu.Unlock()
		sub.OnNext(v)
		p.mu.Lock()
		if p.cancelled {
			return
		}
	}
	if p.cursor >= len(p.values) {
		p.mu.Unlock()
		if p.err != nil {
			sub.OnError(p.err)
		} else {
			sub.OnComplete()
		}
		p.mu.Lock()
	}
}

type fakeSubscription[T any] struct {
	publisher  *fakePublisher[T]
	subscriber sv.Subscriber[T]
}

func (s *fakeSubscription[T]) Request(n uint64) {
	if n == 0 {
		return
	}
	s.publisher.deliver(n)
}

func (s *fakeSubscription[T]) Cancel() {
	s.publisher.mu.Lock()
	s.publisher.cancelled = true
	s.publisher.mu.Unlock()
}

// delayedPublisher emits a single value after a virtual delay, then
// completes, scheduled via scriptverify's virtual scheduler.
type delayedPublisher[T any] struct {
	delay time.Duration
	value T
}

func (p *delayedPublisher[T]) Subscribe(sub sv.Subscriber[T]) {
	subscription := sv.SubscriptionFunc{}
	sub.OnSubscribe(subscription)
	_, _ = sv.ScheduleVirtual(p.delay, func() {
		sub.OnNext(p.value)
		sub.OnComplete()
	})
}

// intervalPublisher emits values at a fixed virtual interval until
// cancelled, formatting each tick with format.
type intervalPublisher struct {
	period time.Duration
	format func(i int) string

	mu        sync.Mutex
	cancelled bool
	tick      int
	sub       sv.Subscriber[string]
	cancelFn  func()
}

func (p *intervalPublisher) Subscribe(sub sv.Subscriber[string]) {
	p.sub = sub
	sub.OnSubscribe(sv.SubscriptionFunc{CancelFunc: p.cancel})
	p.scheduleNext()
}

func (p *intervalPublisher) scheduleNext() {
	cancel, _ := sv.ScheduleVirtual(p.period, p.onTick)
	p.mu.Lock()
	p.cancelFn = cancel
	p.mu.Unlock()
}

func (p *intervalPublisher) onTick() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	i := p.tick
	p.tick++
	p.mu.Unlock()

	p.sub.OnNext(p.format(i))
	p.scheduleNext()
}

func (p *intervalPublisher) cancel() {
	p.mu.Lock()
	p.cancelled = true
	cancel := p.cancelFn
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
