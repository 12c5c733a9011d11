package retry

import (
	"math"
	"time"
)

// NextDelay computes the delay that would follow the given attempt under the
// policy, capped at MaxInterval. Used for log reporting only; the actual
// schedule comes from the backoff implementation.
func NextDelay(attempt int, policy Policy) time.Duration {
	duration := float64(policy.InitialInterval) * math.Pow(policy.Multiplier, float64(attempt))
	if duration > float64(policy.MaxInterval) {
		return policy.MaxInterval
	}
	return time.Duration(duration)
}
