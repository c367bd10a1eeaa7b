package scriptverify

// Subscription is the handle a [Publisher] gives a [Subscriber] on
// OnSubscribe, granting it the ability to request more values or cancel.
//
// Implementations must be safe to call from any goroutine; a [Verifier]
// calls Request and Cancel from its own driver goroutine, which may differ
// from whatever goroutine delivered OnSubscribe.
type Subscription interface {
	// Request adds n to the publisher's outstanding demand. n must be >= 1;
	// publishers are free to treat n == 0 as a no-op.
	Request(n uint64)
	// Cancel tells the publisher to stop delivering signals. Idempotent:
	// calling it more than once has no additional effect.
	Cancel()
}

// Subscriber is the reactive-streams callback contract a [Verifier]
// implements in order to observe a [Publisher]. A publisher must deliver:
//
//  1. At most one OnSubscribe, first.
//  2. After OnSubscribe, zero or more OnNext, up to cumulative demand.
//  3. Optionally, exactly one of OnComplete or OnError, terminating the
//     stream.
//
// After Subscription.Cancel is called, the publisher may still deliver
// already-in-flight signals; a [Verifier] ignores them.
type Subscriber[T any] interface {
	OnSubscribe(sub Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Publisher produces a potentially asynchronous sequence of typed values,
// terminated by completion or error, observed through the [Subscriber]
// callback contract. This is the only seam through which a [Verifier]
// interacts with the system under test; the publisher's own implementation
// and operators are outside the scope of this package.
type Publisher[T any] interface {
	Subscribe(sub Subscriber[T])
}

// SubscriptionFunc adapts two functions to the [Subscription] interface,
// for publishers implemented as test doubles.
type SubscriptionFunc struct {
	RequestFunc func(n uint64)
	CancelFunc  func()
}

func (f SubscriptionFunc) Request(n uint64) {
	if f.RequestFunc != nil {
		f.RequestFunc(n)
	}
}

func (f SubscriptionFunc) Cancel() {
	if f.CancelFunc != nil {
		f.CancelFunc()
	}
}
