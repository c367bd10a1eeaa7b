package scriptverify

import "time"

// Verify runs the driver loop against a publisher that must already have
// subscribed this engine externally, prior to the call. It blocks until
// the script terminates, the configured deadline elapses, or a usage
// error is detected, and returns the wall-clock elapsed time.
func (v *Verifier[T]) Verify(opts ...VerifyOption) (time.Duration, error) {
	return v.doVerify(nil, opts)
}

// VerifyPublisher subscribes this engine to pub and then runs the driver
// loop.
func (v *Verifier[T]) VerifyPublisher(pub Publisher[T], opts ...VerifyOption) (time.Duration, error) {
	return v.doVerify(pub, opts)
}

func (v *Verifier[T]) doVerify(pub Publisher[T], opts []VerifyOption) (time.Duration, error) {
	if v.buildErr != nil {
		return 0, v.buildErr
	}

	v.mu.Lock()
	if v.verified {
		v.mu.Unlock()
		return 0, &UsageError{Op: "Verify", Message: "this engine has already been verified"}
	}
	v.verified = true
	alreadySubscribed := v.status != statusBuilt
	v.mu.Unlock()

	if pub != nil {
		if alreadySubscribed {
			return 0, &UsageError{Op: "VerifyPublisher", Message: "this engine has already been subscribed to a publisher"}
		}
		pub.Subscribe(v)
	} else if !alreadySubscribed {
		return 0, &UsageError{Op: "Verify", Message: "this engine has not been subscribed to a publisher"}
	}

	cfg := &verifyConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	deadline, cancel := v.resolveDeadline(cfg)

	start := time.Now()
	v.run(deadline, cancel)
	elapsed := time.Since(start)

	if v.pendingUsageErr != nil {
		return elapsed, v.pendingUsageErr
	}

	v.mu.Lock()
	failures := append([]string(nil), v.failures...)
	v.mu.Unlock()
	v.log.terminated(len(failures))

	if len(failures) > 0 {
		return elapsed, &AssertionError{Failures: failures}
	}
	return elapsed, nil
}

// resolveDeadline combines an explicit timeout with a context's deadline,
// taking the earlier of the two, and returns a channel that closes when
// the context is done, so that cancellation without an explicit deadline
// still unblocks the driver's dequeue.
func (v *Verifier[T]) resolveDeadline(cfg *verifyConfig) (time.Time, <-chan struct{}) {
	var deadline time.Time
	if cfg.timeout > 0 {
		deadline = time.Now().Add(cfg.timeout)
	}
	var cancel <-chan struct{}
	if cfg.ctx != nil {
		cancel = cfg.ctx.Done()
		if d, ok := cfg.ctx.Deadline(); ok {
			if deadline.IsZero() || d.Before(deadline) {
				deadline = d
			}
		}
	}
	return deadline, cancel
}
