package utils

import (
	"math/rand"
	"time"
)

const maxBackoff = 30 * time.Second

// Backoff doubles base for every attempt, caps at 30s and adds up to 25% jitter either way.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int63n(half)) - d/4
	}
	return d
}
