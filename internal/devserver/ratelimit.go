package devserver

import (
	"time"

	"golang.org/x/time/rate"
)

// newSayLimiter returns nil when limiting is disabled.
func newSayLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func allow(l *rate.Limiter, now time.Time) bool {
	if l == nil {
		return true
	}
	return l.AllowN(now, 1)
}
