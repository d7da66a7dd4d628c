package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// Idle is how long a client's bucket is kept after its last request.
	Idle time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	cfg     RateLimiterConfig
	clients *gocache.Cache
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Idle <= 0 {
		cfg.Idle = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		clients: gocache.New(cfg.Idle, cfg.Idle),
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if v, found := rl.clients.Get(ip); found {
		rl.clients.SetDefault(ip, v)
		return v.(*rate.Limiter)
	}

	l := rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst)
	if err := rl.clients.Add(ip, l, gocache.DefaultExpiration); err != nil {
		// lost the race; use the stored one
		if v, found := rl.clients.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.cfg.Rate <= 0 {
			c.Next()
			return
		}
		if !rl.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			httperr.Write(c, http.StatusTooManyRequests, "rate_limited", httperr.Message("rate_limited"))
			c.Abort()
			return
		}
		c.Next()
	}
}
