package server

import (
	"golang.org/x/time/rate"

	"github.com/mvasek/keva-go/pkg/cmap"
)

// ipLimiter applies a per-client-IP token bucket to incoming
// connections. Limiters are created on first sight of an IP and kept
// for the server's lifetime; the sharded map keeps lookups cheap under
// concurrent accepts.
type ipLimiter struct {
	limiters *cmap.Map[*rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: cmap.New[*rate.Limiter](),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether a connection from ip may proceed now.
func (l *ipLimiter) Allow(ip string) bool {
	lim, ok := l.limiters.Get(ip)
	if !ok {
		lim, _ = l.limiters.GetOrSet(ip, rate.NewLimiter(l.rate, l.burst))
	}
	return lim.Allow()
}
