package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// clientLimiter tracks one client's limiter and when it was last used.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterData holds per-client limiters. The public booking
// endpoint is open to the internet, so limiting is keyed by client IP
// rather than shared globally.
type rateLimiterData struct {
	config  RateLimiterConfig
	clients map[string]*clientLimiter
	mu      sync.Mutex
}

// NewRateLimiterMiddleware creates a new per-client rate limiter middleware.
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	data := &rateLimiterData{
		config:  config,
		clients: make(map[string]*clientLimiter),
	}
	go data.cleanup()

	return func(c *gin.Context) {
		if !data.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

func (d *rateLimiterData) allow(ip string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	client, ok := d.clients[ip]
	if !ok {
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst),
		}
		d.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

// cleanup drops limiters idle for more than ten minutes.
func (d *rateLimiterData) cleanup() {
	for {
		time.Sleep(time.Minute)
		d.mu.Lock()
		for ip, client := range d.clients {
			if time.Since(client.lastSeen) > 10*time.Minute {
				delete(d.clients, ip)
			}
		}
		d.mu.Unlock()
	}
}
