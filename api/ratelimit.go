package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rpupo63/portfolio-cms-backend/errs"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter hands every client address its own token bucket. A bucket
// holds `requests` tokens and refills completely over `window`.
type ipRateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	requests    int
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
	responder   Responder
}

func newIPRateLimiter(requests int, window time.Duration) *ipRateLimiter {
	logger := log.With().Str("handlerName", "rateLimiter").Logger()
	return &ipRateLimiter{
		visitors:  make(map[string]*visitor),
		requests:  requests,
		window:    window,
		now:       time.Now,
		responder: NewResponder(logger),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// A visitor idle for a whole window has a full bucket again, so dropping
	// it changes nothing but memory.
	if now.Sub(l.lastCleanup) > l.window {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, key)
			}
		}
		l.lastCleanup = now
	}

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.requests)), l.requests),
		}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			l.responder.WriteError(w, errs.NewRateLimitError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. Proxy headers are already folded
// into RemoteAddr by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
