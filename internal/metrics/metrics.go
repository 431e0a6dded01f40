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

// Registry groups the process-wide counters exposed on /healthz.
type Registry struct {
	started time.Time

	RequestsTotal  Counter
	RequestsFailed Counter
	EmailsSent     Counter
	EmailsFailed   Counter
}

func NewRegistry() *Registry {
	return &Registry{started: time.Now()}
}

func (r *Registry) Uptime() time.Duration {
	return time.Since(r.started)
}

// Snapshot returns the counters in a JSON-friendly shape.
func (r *Registry) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds":  int64(r.Uptime().Seconds()),
		"requests_total":  r.RequestsTotal.Load(),
		"requests_failed": r.RequestsFailed.Load(),
		"emails_sent":     r.EmailsSent.Load(),
		"emails_failed":   r.EmailsFailed.Load(),
	}
}
