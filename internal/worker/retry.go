package worker

import (
	"math"
	"time"
)

// RetryPolicy параметры экспоненциального повтора отправки.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay пауза перед попыткой attempt (нумерация с единицы).
// Некорректные параметры заменяются безопасными, итог ограничен MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	backoff := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	delay := time.Duration(backoff)
	if r.MaxDelay > 0 && delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	if delay <= 0 {
		delay = time.Second
	}
	return delay
}
