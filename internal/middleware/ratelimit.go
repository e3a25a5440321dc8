// Package middleware — per-client admission control.
package middleware

import (
	"hash/fnv"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Rate limit defaults: at most 60 requests per client address per 60-second
// window, tracking at most 10000 client addresses.
const (
	DefaultRateLimit  = 60
	DefaultRateWindow = 60 * time.Second
	DefaultMaxClients = 10000

	// Counters are sharded by client key so distinct clients don't
	// contend on one lock.
	rateLimitShards = 32
)

// RateLimiter is a fixed-window request counter keyed by client address.
//
// State machine per key: untracked → tracked(count, windowExpiry). The
// first request in a window (or any request after the previous window
// expired) starts a fresh window with count 1; later requests in the same
// window increment the count. Once the count exceeds the limit the request
// is rejected with 429 and never reaches a handler — including register and
// login, since admission control runs before authentication.
//
// Memory is bounded: each shard holds at most maxClients/rateLimitShards
// entries, and inserting into a full shard evicts the entry whose window
// expires soonest.
type RateLimiter struct {
	limit    int
	window   time.Duration
	perShard int
	shards   [rateLimitShards]rateShard
	logger   *slog.Logger
}

type rateShard struct {
	mu      sync.Mutex
	clients map[string]*rateEntry
}

type rateEntry struct {
	count  int
	expiry time.Time
}

// NewRateLimiter creates a RateLimiter. Zero or negative arguments fall
// back to the defaults.
func NewRateLimiter(limit int, window time.Duration, maxClients int, logger *slog.Logger) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}

	perShard := maxClients / rateLimitShards
	if perShard < 1 {
		perShard = 1
	}

	rl := &RateLimiter{
		limit:    limit,
		window:   window,
		perShard: perShard,
		logger:   logger,
	}
	for i := range rl.shards {
		rl.shards[i].clients = make(map[string]*rateEntry)
	}
	return rl
}

// Middleware rejects over-quota requests with 429 before they reach any
// handler. The 429 body is plain text, not JSON.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.allowAt(key, time.Now()) {
			rl.logger.Warn("request rate limited",
				slog.String("client", key),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow records a request for key and reports whether it is within quota.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.allowAt(key, time.Now())
}

// allowAt is Allow with an explicit clock, so tests can cross window
// boundaries without sleeping.
func (rl *RateLimiter) allowAt(key string, now time.Time) bool {
	shard := &rl.shards[shardIndex(key)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, ok := shard.clients[key]
	if !ok || now.After(entry.expiry) {
		if !ok && len(shard.clients) >= rl.perShard {
			shard.evictOldest(now)
		}
		shard.clients[key] = &rateEntry{count: 1, expiry: now.Add(rl.window)}
		return true
	}

	entry.count++
	return entry.count <= rl.limit
}

// evictOldest drops expired entries, and if none were expired, the entry
// whose window ends soonest. Called with the shard lock held.
func (s *rateShard) evictOldest(now time.Time) {
	var oldestKey string
	var oldestExpiry time.Time

	for key, entry := range s.clients {
		if now.After(entry.expiry) {
			delete(s.clients, key)
			continue
		}
		if oldestKey == "" || entry.expiry.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiry
		}
	}

	if len(s.clients) > 0 && oldestKey != "" {
		delete(s.clients, oldestKey)
	}
}

func shardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % rateLimitShards)
}

// clientKey extracts the client network address. chi's RealIP middleware
// runs earlier in the chain and rewrites RemoteAddr from proxy headers, so
// this sees the real client behind a reverse proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
