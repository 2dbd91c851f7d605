package live

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultReconnectDelay is the pause between an unexpected close and the
// next dial under the default policy.
const DefaultReconnectDelay = time.Second

// ReconnectPolicy decides how long to wait before redialing. attempt counts
// consecutive failures since the last successful handshake, starting at 1.
type ReconnectPolicy interface {
	Delay(attempt int) time.Duration
}

// FixedDelay waits the same amount of time before every reconnect and
// never gives up.
type FixedDelay time.Duration

// Delay implements ReconnectPolicy.
func (d FixedDelay) Delay(int) time.Duration {
	return time.Duration(d)
}

// ExponentialBackoff doubles the delay on each consecutive failure, capped
// at Max. A zero Max leaves it uncapped up to the largest time.Duration. Jitter in [0,1] spreads each delay randomly over
// [d*(1-Jitter), d].
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// Delay implements ReconnectPolicy.
func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = DefaultReconnectDelay
	}
	if attempt < 1 {
		attempt = 1
	}

	d := float64(base) * math.Pow(2, float64(attempt-1))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	// Uncapped growth saturates instead of wrapping negative.
	d = min(d, float64(math.MaxInt64))

	jitter := min(max(b.Jitter, 0), 1)
	if jitter > 0 {
		d -= d * jitter * rand.Float64()
	}
	if d >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// PolicyByName maps the configuration value of live.backoff to a policy.
// Unknown names fall back to FixedDelay(delay).
func PolicyByName(name string, delay, maxDelay time.Duration) ReconnectPolicy {
	if name == "exponential" {
		return ExponentialBackoff{Base: delay, Max: maxDelay, Jitter: 0.2}
	}
	return FixedDelay(delay)
}
