package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IPRateLimiter stores a rate limiter for each IP address. Limiters of IPs
// that go quiet expire from the table.
type IPRateLimiter struct {
	ips *cache.Cache
	mu  sync.Mutex
	r   rate.Limit
	b   int
	ttl time.Duration
}

// NewIPRateLimiter creates a new IPRateLimiter. A limiter is dropped after
// idle without requests.
func NewIPRateLimiter(r rate.Limit, b int, idle time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips: cache.New(idle, 2*idle),
		r:   r,
		b:   b,
		ttl: idle,
	}
}

// GetLimiter returns the rate limiter for an IP address, creating it on
// first use. Every call pushes the expiry out again.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, found := i.ips.Get(ip); found {
		limiter := v.(*rate.Limiter)
		i.ips.Set(ip, limiter, i.ttl)
		return limiter
	}
	limiter := rate.NewLimiter(i.r, i.b)
	i.ips.Set(ip, limiter, i.ttl)
	return limiter
}

// Len reports how many IPs currently hold a limiter.
func (i *IPRateLimiter) Len() int {
	return i.ips.ItemCount()
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Request was throttled."})
			return
		}
		c.Next()
	}
}
