// Package pacer provides an adaptive rate limit for bursts of API calls. The
// rate climbs while calls succeed and drops when the remote side reports it
// is overloaded.
//
// Example usage:
//
//	p := pacer.New(40, 1, 40, 1, 0.5)
//	for _, job := range jobs {
//	    if err := p.Wait(ctx); err != nil {
//	        return err
//	    }
//	    p.Observe(call(job))
//	}
package pacer

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldown is how long after a throttling error the rate stays put before
// it may climb again.
const Cooldown = 10 * time.Second

// Pacer is an adaptive rate limiter. It is safe for concurrent use.
type Pacer struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	now       func() time.Time
}

// New creates a Pacer.
//
// Parameters:
//   - initial: starting calls per second
//   - min, max: bounds of the rate
//   - stepUp: increment after a success
//   - stepDown: multiplier applied after throttling (e.g. 0.5 halves)
func New(initial, min, max, stepUp rate.Limit, stepDown float64) *Pacer {
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	initial = clamp(initial, min, max)
	return &Pacer{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		now:      time.Now,
	}
}

// Wait blocks until a call may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Success raises the rate unless throttling was seen within Cooldown.
func (p *Pacer) Success() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.now().Sub(p.lastError) > Cooldown {
		p.setLimit(p.limiter.Limit() + p.stepUp)
	}
}

// Throttled lowers the rate.
func (p *Pacer) Throttled() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastError = p.now()
	p.setLimit(rate.Limit(float64(p.limiter.Limit()) * p.stepDown))
}

// Observe feeds the outcome of one call: nil is a success, an overload
// error throttles, other errors leave the rate alone.
func (p *Pacer) Observe(err error) {
	switch {
	case err == nil:
		p.Success()
	case IsOverload(err):
		p.Throttled()
	}
}

// Limit returns the current calls per second.
func (p *Pacer) Limit() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return float64(p.limiter.Limit())
}

func (p *Pacer) setLimit(l rate.Limit) {
	l = clamp(l, p.minLimit, p.maxLimit)
	if l != p.limiter.Limit() {
		p.limiter.SetLimit(l)
		p.limiter.SetBurst(burstFor(l))
	}
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// IsOverload reports whether err, or an error it wraps, carries a 429 or
// 5xx status.
func IsOverload(err error) bool {
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return false
	}
	code := sc.StatusCode()
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

func clamp(l, min, max rate.Limit) rate.Limit {
	if l < min {
		return min
	}
	if l > max {
		return max
	}
	return l
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}
