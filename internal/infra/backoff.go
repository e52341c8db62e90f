package infra

import (
	"time"
)

const (
	reconnectBase = 1 * time.Second
	reconnectCap  = 60 * time.Second
)

// ReconnectDelay returns how long a stream worker waits before its next
// connection attempt: reconnectBase doubled per failed attempt, capped
// at reconnectCap. Negative attempts are treated as the first.
func ReconnectDelay(attempt int) time.Duration {
	if attempt < 0 {
		return reconnectBase
	}

	// Past attempt 30 the shift would overflow; the cap applies long
	// before that anyway.
	if attempt > 30 {
		return reconnectCap
	}

	delay := reconnectBase * time.Duration(1<<attempt)
	if delay > reconnectCap {
		return reconnectCap
	}
	return delay
}
