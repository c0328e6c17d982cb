package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"natours-api/internal/apperror"
)

const RateLimitMessage = "Too many requests from this IP, please try again in an hour!"

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	Max             int           // Requests allowed per client per window
	Window          time.Duration // Window length, starting at the client's first request
	CleanupInterval time.Duration // How often expired windows are purged
	PathPrefix      string        // Only requests under this prefix are counted
}

// DefaultRateLimitConfig allows 100 requests per hour under /api.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Max:             100,
		Window:          time.Hour,
		CleanupInterval: 10 * time.Minute,
		PathPrefix:      "/api",
	}
}

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests per client in memory. State is per process.
type RateLimiter struct {
	config   *RateLimitConfig
	clients  map[string]*window
	mu       sync.Mutex
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	rl := &RateLimiter{
		config:   config,
		clients:  make(map[string]*window),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Allow records a hit for clientID and reports whether it is within the
// limit, how many requests remain and when the window resets.
func (rl *RateLimiter) Allow(clientID string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[clientID]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rl.config.Window)}
		rl.clients[clientID] = w
	}

	w.count++
	remaining := rl.config.Max - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= rl.config.Max, remaining, w.resetAt
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for id, w := range rl.clients {
		if !now.Before(w.resetAt) {
			delete(rl.clients, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Rate limiter cleanup: removed %d expired clients", removed)
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// ClientIP identifies a client by the remote address of the connection.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// underPrefix matches prefix as a whole path segment: "/api" covers "/api"
// and "/api/v1" but not "/apiary".
func underPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return prefix == "" || path == prefix || strings.HasPrefix(path, prefix+"/")
}

// RateLimit counts requests under the configured path prefix and rejects
// them with 429 once a client exceeds its window.
func RateLimit(limiter *RateLimiter, errs ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !underPrefix(r.URL.Path, limiter.config.PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			clientID := ClientIP(r)
			ok, remaining, resetAt := limiter.Allow(clientID)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.config.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				log.Printf("Rate limit exceeded for client: %s (path: %s)", clientID, r.URL.Path)
				retry := int(resetAt.Sub(limiter.now()).Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				errs.Respond(w, r, apperror.TooManyRequests(RateLimitMessage))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
