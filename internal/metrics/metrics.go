package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Payment-core counters. Outcomes mirror the reconciler's tri-state
// result so operators can spot a gateway misconfiguration (rejected
// spikes) without grepping logs.
var (
	PaymentInitiated Counter
	WebhookApplied   Counter
	WebhookIgnored   Counter
	WebhookRejected  Counter
)
